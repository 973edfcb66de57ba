package cerberustest

import (
	"testing"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/crypto"
)

// NewKey returns a new, random private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns the condition of a new, random key.
func NewCondition() cerberus.Condition {
	return NewKey().PublicKey().Condition()
}

// NewAddress returns the address of a new, random key.
func NewAddress() cerberus.Address {
	return NewCondition().Address()
}

// SequenceAddress returns a deterministic address for given number. It is
// handy for tests that compare orders of owners.
func SequenceAddress(n byte) cerberus.Address {
	return cerberus.NewCondition("test", "seq", []byte{n}).Address()
}

// ParseAddress takes an address in a human readable format and returns
// its binary representation. The test fails if it cannot be decoded.
func ParseAddress(t testing.TB, encodedAddress string) cerberus.Address {
	t.Helper()

	addr, err := cerberus.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}
