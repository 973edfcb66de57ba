package vault

import (
	"github.com/cerberus-vault/cerberus/errors"
)

// Vault errors take codes 1100-1119.
var (
	// ErrUnauthorized is returned when the caller is not a current owner.
	ErrUnauthorized = errors.ErrUnauthorized

	ErrInvalidPrincipal          = errors.Register(1100, "invalid principal")
	ErrAlreadyExists             = errors.Register(1101, "already exists")
	ErrNotFound                  = errors.Register(1102, "not found")
	ErrSamePrincipal             = errors.Register(1103, "same principal")
	ErrTooFewOwners              = errors.Register(1104, "too few owners")
	ErrThresholdViolation        = errors.Register(1105, "threshold violation")
	ErrZeroThreshold             = errors.Register(1106, "zero threshold")
	ErrBelowMinimum              = errors.Register(1107, "threshold below minimum")
	ErrAboveOwnerCount           = errors.Register(1108, "threshold above owner count")
	ErrUnchanged                 = errors.Register(1109, "unchanged")
	ErrInvalidNonce              = errors.Register(1110, "invalid nonce")
	ErrAlreadyExecuted           = errors.Register(1111, "already executed")
	ErrAlreadyConfirmed          = errors.Register(1112, "already confirmed")
	ErrNotConfirmed              = errors.Register(1113, "not confirmed")
	ErrInsufficientConfirmations = errors.Register(1114, "insufficient confirmations")
	ErrTransferFailed            = errors.Register(1115, "transfer failed")
)
