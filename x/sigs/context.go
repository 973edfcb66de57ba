package sigs

import (
	"context"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/x"
)

type contextKey int // local to the sigs module

const (
	contextKeySigners contextKey = iota
)

// withSigners is a private method, as only this module
// can add a signer
func withSigners(ctx cerberus.Context, signers []cerberus.Condition) cerberus.Context {
	addrs := make([]cerberus.Address, len(signers))
	for i, s := range signers {
		addrs[i] = s.Address()
	}
	return context.WithValue(ctx, contextKeySigners, addrs)
}

// Authenticate returns the addresses of all verified signers. The first
// signer of an envelope is reported first.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetAddresses returns who signed the current Context.
// May be empty
func (a Authenticate) GetAddresses(ctx cerberus.Context) []cerberus.Address {
	// (val, ok) form to return nil instead of panic if unset
	val, _ := ctx.Value(contextKeySigners).([]cerberus.Address)
	return val
}

// HasAddress returns true if given address signed the current Context.
func (a Authenticate) HasAddress(ctx cerberus.Context, addr cerberus.Address) bool {
	for _, s := range a.GetAddresses(ctx) {
		if addr.Equals(s) {
			return true
		}
	}
	return false
}
