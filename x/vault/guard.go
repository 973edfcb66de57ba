package vault

import (
	"context"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/cerberus-vault/cerberus/x"
)

type contextKey int

const contextKeyOwner contextKey = iota

// Guard is a decorator that lets a request through only if its caller is
// a current owner. The caller is the main signer of the request.
//
// Owners are read from the same store the wrapped handler writes to, so a
// removed owner loses its authority with the very next request.
type Guard struct {
	auth     x.Authenticator
	registry *OwnerRegistry
}

var _ cerberus.Decorator = Guard{}

// NewGuard returns a guard authenticating callers with auth.
func NewGuard(auth x.Authenticator, registry *OwnerRegistry) Guard {
	return Guard{auth: auth, registry: registry}
}

// RequireOwner returns the caller if it is a current owner.
func (g Guard) RequireOwner(ctx cerberus.Context, db cerberus.ReadOnlyKVStore) (cerberus.Address, error) {
	caller := x.MainSigner(ctx, g.auth)
	if caller == nil {
		return nil, errors.Wrap(ErrUnauthorized, "OwnerManager: only owner can perform this action")
	}
	ok, err := g.registry.IsOwner(db, caller)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrap(ErrUnauthorized, "OwnerManager: only owner can perform this action")
	}
	return caller, nil
}

// Deliver calls the next handler with the authorized owner in the context.
func (g Guard) Deliver(ctx cerberus.Context, db cerberus.KVStore, tx cerberus.Tx, next cerberus.Handler) (*cerberus.DeliverResult, error) {
	owner, err := g.RequireOwner(ctx, db)
	if err != nil {
		return nil, err
	}
	ctx = context.WithValue(ctx, contextKeyOwner, owner)
	return next.Deliver(ctx, db, tx)
}

// CurrentOwner returns the owner authorized by the Guard for the request.
func CurrentOwner(ctx cerberus.Context) (cerberus.Address, bool) {
	owner, ok := ctx.Value(contextKeyOwner).(cerberus.Address)
	return owner, ok
}

// currentOwner is used by the guarded handlers.
func currentOwner(ctx cerberus.Context) (cerberus.Address, error) {
	owner, ok := CurrentOwner(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "handler not guarded")
	}
	return owner, nil
}
