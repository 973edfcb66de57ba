package x

import (
	"github.com/cerberus-vault/cerberus"
)

// Authenticator is an interface we can use to extract authentication info
// from the context. This should be passed into the constructor of
// handlers, so we can plug in another authentication system,
// rather than hard-coding signature checks for all extensions.
type Authenticator interface {
	// GetAddresses returns all principals that authorized the current
	// request. The main signer, if any, is always the first element.
	GetAddresses(cerberus.Context) []cerberus.Address
	// HasAddress checks if given principal authorized the request.
	HasAddress(cerberus.Context, cerberus.Address) bool
}

// MultiAuth chains together many Authenticators into one
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticator
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetAddresses combines all addresses from all Authenticators, in order
// and without duplicates.
func (m MultiAuth) GetAddresses(ctx cerberus.Context) []cerberus.Address {
	var res []cerberus.Address
	for _, impl := range m.impls {
	next:
		for _, a := range impl.GetAddresses(ctx) {
			for _, seen := range res {
				if seen.Equals(a) {
					continue next
				}
			}
			res = append(res, a)
		}
	}
	return res
}

// HasAddress returns true iff any Authenticator support this
func (m MultiAuth) HasAddress(ctx cerberus.Context, addr cerberus.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first authenticated address if any, otherwise nil
func MainSigner(ctx cerberus.Context, auth Authenticator) cerberus.Address {
	signers := auth.GetAddresses(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}
