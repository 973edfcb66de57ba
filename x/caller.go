package x

import (
	"context"

	"github.com/cerberus-vault/cerberus"
)

type contextKey int

const contextKeyCaller contextKey = iota

// WithCaller returns a context that carries the identity of a caller that
// was authenticated outside of the vault, for example by the service
// embedding it. Zero addresses are ignored.
func WithCaller(ctx cerberus.Context, caller cerberus.Address) cerberus.Context {
	if caller.IsZero() {
		return ctx
	}
	return context.WithValue(ctx, contextKeyCaller, caller.Clone())
}

// CallerAuth authenticates the caller set with WithCaller.
type CallerAuth struct{}

var _ Authenticator = CallerAuth{}

func (CallerAuth) GetAddresses(ctx cerberus.Context) []cerberus.Address {
	caller, ok := ctx.Value(contextKeyCaller).(cerberus.Address)
	if !ok {
		return nil
	}
	return []cerberus.Address{caller}
}

func (a CallerAuth) HasAddress(ctx cerberus.Context, addr cerberus.Address) bool {
	for _, c := range a.GetAddresses(ctx) {
		if c.Equals(addr) {
			return true
		}
	}
	return false
}
