/*
Package sigs provides basic authentication
middleware to verify the signatures on the transaction,
and maintain nonces for replay protection.
*/
package sigs

import (
	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/errors"
)

// Decorator verifies the signatures and adds them to the context
type Decorator struct {
	allowMissingSigs bool
}

var _ cerberus.Decorator = Decorator{}

// NewDecorator returns a default authentication decorator,
// which appends the vault id before checking the signature,
// and requires at least one signature to be present
func NewDecorator() Decorator {
	return Decorator{
		allowMissingSigs: false,
	}
}

// AllowMissingSigs allows us to pass along items with no signatures
func (d Decorator) AllowMissingSigs() Decorator {
	d.allowMissingSigs = true
	return d
}

// Deliver verifies signatures before calling down the stack. Requests
// that are not signed envelopes are passed along untouched.
func (d Decorator) Deliver(ctx cerberus.Context, store cerberus.KVStore, tx cerberus.Tx, next cerberus.Handler) (*cerberus.DeliverResult, error) {
	stx, ok := tx.(SignedTx)
	if !ok {
		return next.Deliver(ctx, store, tx)
	}

	vaultID, ok := cerberus.GetVaultID(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "vault id not set")
	}
	signers, err := VerifyTxSignatures(store, stx, vaultID)
	if err != nil {
		return nil, errors.Wrap(err, "cannot verify signatures")
	}
	if len(signers) == 0 && !d.allowMissingSigs {
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}

	ctx = withSigners(ctx, signers)
	return next.Deliver(ctx, store, tx)
}
