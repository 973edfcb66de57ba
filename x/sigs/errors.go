package sigs

import (
	"github.com/cerberus-vault/cerberus/errors"
)

// ErrInvalidSequence is returned when a signature was made with a sequence
// other than the next one expected for its public key. Replayed requests
// fail with this error.
var ErrInvalidSequence = errors.Register(120, "invalid sequence number")
