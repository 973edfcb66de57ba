package errors

import (
	stdlib "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestCause(t *testing.T) {
	std := stdlib.New("this is a stdlib error")

	cases := map[string]struct {
		err  error
		root error
	}{
		"Errors are self-causing": {
			err:  ErrNotFound,
			root: ErrNotFound,
		},
		"Wrap reveals root cause": {
			err:  Wrap(ErrNotFound, "foo"),
			root: ErrNotFound,
		},
		"Cause works for stderr as root": {
			err:  Wrap(std, "Some helpful text"),
			root: std,
		},
		"Field reveals root cause": {
			err:  Field("Owner", ErrEmpty, "required"),
			root: ErrEmpty,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := errors.Cause(tc.err); got != tc.root {
				t.Fatal("unexpected result")
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	cases := map[string]struct {
		a      *Error
		b      error
		wantIs bool
	}{
		"instance of the same error": {
			a:      ErrNotFound,
			b:      ErrNotFound,
			wantIs: true,
		},
		"two different coded errors": {
			a:      ErrNotFound,
			b:      ErrModel,
			wantIs: false,
		},
		"successful comparison to a wrapped error": {
			a:      ErrNotFound,
			b:      errors.Wrap(ErrNotFound, "gone"),
			wantIs: true,
		},
		"successful comparison to a double wrapped error": {
			a:      ErrNotFound,
			b:      Wrap(Wrapf(ErrNotFound, "id %d", 4), "load"),
			wantIs: true,
		},
		"unsuccessful comparison to a wrapped error": {
			a:      ErrNotFound,
			b:      errors.Wrap(ErrOverflow, "too big"),
			wantIs: false,
		},
		"not equal to stdlib error": {
			a:      ErrNotFound,
			b:      fmt.Errorf("stdlib error"),
			wantIs: false,
		},
		"not equal to a wrapped stdlib error": {
			a:      ErrNotFound,
			b:      errors.Wrap(fmt.Errorf("stdlib error"), "wrapped"),
			wantIs: false,
		},
		"nil is nil": {
			a:      nil,
			b:      nil,
			wantIs: true,
		},
		"nil is any error nil": {
			a:      nil,
			b:      (*customError)(nil),
			wantIs: true,
		},
		"nil is not not-nil": {
			a:      nil,
			b:      ErrNotFound,
			wantIs: false,
		},
		"not-nil is not nil": {
			a:      ErrNotFound,
			b:      nil,
			wantIs: false,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.a.Is(tc.b); got != tc.wantIs {
				t.Fatalf("unexpected result - got:%v want: %v", got, tc.wantIs)
			}
		})
	}
}

type customError struct {
}

func (customError) Error() string {
	return "custom error"
}

func TestWrapEmpty(t *testing.T) {
	if err := Wrap(nil, "wrapping <nil>"); err != nil {
		t.Fatal(err)
	}
}

func TestWrapMessage(t *testing.T) {
	err := Wrapf(ErrNotFound, "owner %s", "A1")
	if got, want := err.Error(), "owner A1: not found"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestStackTrace(t *testing.T) {
	err := Wrap(Wrap(ErrState, "inner"), "outer")
	msg := fmt.Sprintf("%+v", err)
	if !strings.Contains(msg, "outer: inner: invalid state") {
		t.Fatalf("missing message: %s", msg)
	}
	if !strings.Contains(msg, "github.com/cerberus-vault/cerberus/errors.TestStackTrace") {
		t.Fatalf("missing stack trace: %s", msg)
	}
	if got := fmt.Sprintf("%v", err); strings.Contains(got, "\n") {
		t.Fatalf("plain format must not contain a stack: %s", got)
	}
}

func TestCode(t *testing.T) {
	cases := map[string]struct {
		err  error
		want uint32
	}{
		"nil":             {err: nil, want: 0},
		"root":            {err: ErrNotFound, want: 3},
		"wrapped":         {err: Wrap(ErrAmount, "zero"), want: 13},
		"field":           {err: Field("Value", ErrInput, "bad"), want: 14},
		"stdlib":          {err: fmt.Errorf("boom"), want: internalCode},
		"wrapped stdlib":  {err: Wrap(fmt.Errorf("boom"), "ctx"), want: internalCode},
		"panic recovered": {err: recovered(), want: 111222},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := Code(tc.err); got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}

func recovered() (err error) {
	defer Recover(&err)
	panic("oh no")
}

func TestRedact(t *testing.T) {
	if err := Redact(nil); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
	if err := Redact(recovered()); err != ErrPanic {
		t.Fatalf("panic details must be redacted, got %v", err)
	}
	if err := Redact(fmt.Errorf("/etc/passwd missing")); err.Error() != "internal error" {
		t.Fatalf("stdlib error must be redacted, got %v", err)
	}
	wrapped := Wrap(ErrDuplicate, "owner")
	if err := Redact(wrapped); err != wrapped {
		t.Fatalf("registered error must be kept, got %v", err)
	}
}

func TestRegisterTwicePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic")
		}
	}()
	Register(ErrNotFound.Code(), "again")
}

func TestFieldErrors(t *testing.T) {
	err := Wrap(Field("Owners.1", ErrDuplicate, "owner %d", 1), "genesis")
	if got := FieldErrors(err, "Owners.1"); len(got) != 1 {
		t.Fatalf("want one error, got %d", len(got))
	}
	if got := FieldErrors(err, "Threshold"); len(got) != 0 {
		t.Fatalf("want no error, got %d", len(got))
	}
	if !ErrDuplicate.Is(err) {
		t.Fatal("field error must keep its root")
	}
}
