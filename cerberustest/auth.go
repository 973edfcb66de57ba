package cerberustest

import (
	"context"
	"fmt"

	"github.com/cerberus-vault/cerberus"
)

// Auth is a mock implementing x.Authenticator interface.
//
// This structure authenticates any of referenced addresses. Signer, if
// set, is always reported first.
type Auth struct {
	// Signer represents an authentication of a single signer.
	Signer cerberus.Address

	// Signers represents an authentication of multiple signers.
	Signers []cerberus.Address
}

func (a *Auth) GetAddresses(cerberus.Context) []cerberus.Address {
	if a.Signer == nil {
		return a.Signers
	}
	return append([]cerberus.Address{a.Signer}, a.Signers...)
}

func (a *Auth) HasAddress(ctx cerberus.Context, addr cerberus.Address) bool {
	for _, s := range a.GetAddresses(ctx) {
		if addr.Equals(s) {
			return true
		}
	}
	return false
}

// CtxAuth is a mock implementing x.Authenticator interface.
//
// This implementation is using context to store and retrieve addresses.
type CtxAuth struct {
	// Key used to set and retrieve addresses from the context. For
	// convenience only string type keys are allowed.
	Key string
}

func (a *CtxAuth) SetAddresses(ctx cerberus.Context, addrs ...cerberus.Address) cerberus.Context {
	return context.WithValue(ctx, a.Key, addrs)
}

func (a *CtxAuth) GetAddresses(ctx cerberus.Context) []cerberus.Address {
	val := ctx.Value(a.Key)
	if val == nil {
		return nil
	}
	addrs, ok := val.([]cerberus.Address)
	if !ok {
		panic(fmt.Sprintf("instead of []cerberus.Address got %T", val))
	}
	return addrs
}

func (a *CtxAuth) HasAddress(ctx cerberus.Context, addr cerberus.Address) bool {
	for _, s := range a.GetAddresses(ctx) {
		if addr.Equals(s) {
			return true
		}
	}
	return false
}
