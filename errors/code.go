package errors

// coder is implemented by the registered root errors.
type coder interface {
	Code() uint32
}

// internalCode is returned for errors that do not wrap any registered root
// error, ie. errors coming from the standard library.
const internalCode uint32 = 1

// Code returns the code of the root error that err wraps. Zero is
// returned for nil and internalCode for errors without a registered root.
func Code(err error) uint32 {
	if isNilErr(err) {
		return 0
	}
	for {
		if c, ok := err.(coder); ok {
			return c.Code()
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return internalCode
		}
	}
}

// Redact replaces the message of errors that may leak system details with
// a generic one. Panics and errors without a registered root are redacted.
// Registered errors are returned unchanged, as their messages are part of
// the public API.
func Redact(err error) error {
	if isNilErr(err) {
		return nil
	}
	if ErrPanic.Is(err) {
		return ErrPanic
	}
	if Code(err) == internalCode {
		return errInternal
	}
	return err
}

var errInternal = &Error{code: internalCode, desc: "internal error"}
