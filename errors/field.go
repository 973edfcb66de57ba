package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attaches the name of the offending attribute to err, for example
// Owner or Threshold. Nested attributes use dot notation, as in Owners.2.
// A nil err gives nil.
func Field(name string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) != 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{name: name, desc: description, cause: err}
}

type fieldError struct {
	name  string
	desc  string
	cause error
}

func (e *fieldError) Error() string {
	msg := fmt.Sprintf("field %q: ", e.name)
	if e.desc != "" {
		msg += e.desc + ": "
	}
	return msg + e.cause.Error()
}

func (e *fieldError) Cause() error { return e.cause }

func (e *fieldError) Field() string { return e.name }

// FieldErrors returns the outermost error attached to given field within
// the chain of err, or nothing.
func FieldErrors(err error, name string) []error {
	for !isNilErr(err) {
		if f, ok := err.(interface{ Field() string }); ok && f.Field() == name {
			return []error{err}
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return nil
}
