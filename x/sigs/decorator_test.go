package sigs

import (
	"context"
	"testing"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/cerberustest"
	"github.com/cerberus-vault/cerberus/crypto"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/cerberus-vault/cerberus/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecorator(t *testing.T) {
	kv := store.MemStore()
	signers := new(SigCheckHandler)
	d := NewDecorator()
	vaultID := "deco-rate"
	ctx := cerberus.WithVaultID(context.Background(), vaultID)

	priv := crypto.GenPrivKeyEd25519()
	perms := []cerberus.Address{priv.PublicKey().Address()}

	tx := newTx(t, "test/art")
	sig, err := SignTx(priv, tx, vaultID, 0)
	require.NoError(t, err)
	sig1, err := SignTx(priv, tx, vaultID, 1)
	require.NoError(t, err)

	deliver := func(dec cerberus.Decorator, my cerberus.Tx) error {
		_, err := dec.Deliver(ctx, kv, my, signers)
		return err
	}

	// test with no sigs
	tx.Signatures = nil
	assert.True(t, errors.ErrUnauthorized.Is(deliver(d, tx)))

	// test with one
	tx.Signatures = []*StdSignature{sig}
	require.NoError(t, deliver(d, tx))
	assert.Equal(t, perms, signers.Signers)

	// test with replay
	assert.True(t, ErrInvalidSequence.Is(deliver(d, tx)))

	// test allowing none
	ad := d.AllowMissingSigs()
	tx.Signatures = nil
	require.NoError(t, deliver(ad, tx))
	assert.Empty(t, signers.Signers)

	// test allowing, with next sequence
	tx.Signatures = []*StdSignature{sig1}
	require.NoError(t, deliver(ad, tx))
	assert.Equal(t, perms, signers.Signers)

	// not a signed envelope passes untouched
	signers.Signers = nil
	require.NoError(t, deliver(d, &cerberustest.Tx{Msg: &cerberustest.Msg{RoutePath: "test/art"}}))
	assert.Empty(t, signers.Signers)
}

func TestDecoratorRequiresVaultID(t *testing.T) {
	tx := newTx(t, "test/art")
	require.NoError(t, Sign(tx, crypto.GenPrivKeyEd25519(), "some-vault", 0))

	_, err := NewDecorator().Deliver(context.Background(), store.MemStore(), tx, new(SigCheckHandler))
	assert.True(t, errors.ErrHuman.Is(err))
}

// SigCheckHandler stores the seen signers on each call
type SigCheckHandler struct {
	Signers []cerberus.Address
}

var _ cerberus.Handler = (*SigCheckHandler)(nil)

func (s *SigCheckHandler) Deliver(ctx cerberus.Context, store cerberus.KVStore, tx cerberus.Tx) (*cerberus.DeliverResult, error) {
	s.Signers = Authenticate{}.GetAddresses(ctx)
	return &cerberus.DeliverResult{}, nil
}
