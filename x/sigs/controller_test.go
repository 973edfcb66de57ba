package sigs

import (
	"testing"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/cerberustest"
	"github.com/cerberus-vault/cerberus/crypto"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/cerberus-vault/cerberus/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTx(t testing.TB, path string) *Tx {
	t.Helper()
	tx, err := NewTx(&cerberustest.Msg{RoutePath: path})
	require.NoError(t, err)
	return tx
}

func TestSignBytes(t *testing.T) {
	tx := newTx(t, "test/foobar")
	tx2 := newTx(t, "test/blast")

	// make sure the values out are sensible
	tbz, err := tx.GetSignBytes()
	require.NoError(t, err)
	tbz2, err := tx2.GetSignBytes()
	require.NoError(t, err)
	assert.NotEqual(t, tbz, tbz2)

	// signatures are not part of the signed bytes
	tx.Signatures = []*StdSignature{{Sequence: 4}}
	again, err := tx.GetSignBytes()
	require.NoError(t, err)
	assert.Equal(t, tbz, again)

	// make sure sign bytes match tx
	vaultID := "test-sign-bytes"
	c1, err := BuildSignBytesTx(tx, vaultID, 17)
	require.NoError(t, err)
	c1a, err := BuildSignBytes(tbz, vaultID, 17)
	require.NoError(t, err)
	assert.Equal(t, c1, c1a)
	assert.NotEqual(t, tbz, c1)

	// make sure sign bytes change on tx, vault id and seq
	ct, err := BuildSignBytes(tbz2, vaultID, 17)
	require.NoError(t, err)
	assert.NotEqual(t, c1, ct)
	c2, err := BuildSignBytes(tbz, vaultID+"2", 17)
	require.NoError(t, err)
	assert.NotEqual(t, c1, c2)
	c3, err := BuildSignBytes(tbz, vaultID, 18)
	require.NoError(t, err)
	assert.NotEqual(t, c1, c3)

	_, err = BuildSignBytes(tbz, "Not A Vault", 1)
	assert.True(t, errors.ErrInput.Is(err))
	_, err = BuildSignBytes(tbz, vaultID, -1)
	assert.True(t, ErrInvalidSequence.Is(err))
}

func TestVerifySignature(t *testing.T) {
	kv := store.MemStore()
	priv := crypto.GenPrivKeyEd25519()
	perm := priv.PublicKey().Condition()

	vaultID := "emo-music-2345"
	tx := newTx(t, "test/valentine")
	bz, err := tx.GetSignBytes()
	require.NoError(t, err)

	sig0, err := SignTx(priv, tx, vaultID, 0)
	require.NoError(t, err)
	sig1, err := SignTx(priv, tx, vaultID, 1)
	require.NoError(t, err)
	sig2, err := SignTx(priv, tx, vaultID, 2)
	require.NoError(t, err)
	sig13, err := SignTx(priv, tx, vaultID, 13)
	require.NoError(t, err)
	empty := new(StdSignature)

	// signing should be deterministic
	sig2a, err := SignTx(priv, tx, vaultID, 2)
	require.NoError(t, err)
	assert.Equal(t, sig2, sig2a)

	// the first one must have a signature in the store
	_, err = VerifySignature(kv, sig1, bz, vaultID)
	assert.True(t, ErrInvalidSequence.Is(err))

	// empty sig
	_, err = VerifySignature(kv, empty, bz, vaultID)
	assert.True(t, errors.ErrUnauthorized.Is(err))

	// must start with 0
	sign, err := VerifySignature(kv, sig0, bz, vaultID)
	require.NoError(t, err)
	assert.Equal(t, perm, sign)
	// we can advance one (store in kvstore)
	sign, err = VerifySignature(kv, sig1, bz, vaultID)
	require.NoError(t, err)
	assert.Equal(t, perm, sign)

	// jumping and replays are a no-no
	_, err = VerifySignature(kv, sig1, bz, vaultID)
	assert.True(t, ErrInvalidSequence.Is(err))
	_, err = VerifySignature(kv, sig13, bz, vaultID)
	assert.True(t, ErrInvalidSequence.Is(err))

	// different vault doesn't match
	_, err = VerifySignature(kv, sig2, bz, "metal")
	assert.True(t, errors.ErrUnauthorized.Is(err))
	// doesn't match on bad sig
	copy(sig2.Signature.GetEd25519(), []byte{42, 17, 99})
	_, err = VerifySignature(kv, sig2, bz, vaultID)
	assert.True(t, errors.ErrUnauthorized.Is(err))
}

func TestVerifyTxSignatures(t *testing.T) {
	kv := store.MemStore()

	priv := crypto.GenPrivKeyEd25519()
	addr := priv.PublicKey().Condition()
	priv2 := crypto.GenPrivKeyEd25519()
	addr2 := priv2.PublicKey().Condition()

	vaultID := "hot_summer_days"
	tx := newTx(t, "test/icecream")
	tx2 := newTx(t, "test/other")

	// two sigs from the first key
	sig, err := SignTx(priv, tx, vaultID, 0)
	require.NoError(t, err)
	sig1, err := SignTx(priv, tx, vaultID, 1)
	require.NoError(t, err)
	// one from the second
	sig2, err := SignTx(priv2, tx, vaultID, 0)
	require.NoError(t, err)
	// and a signature of wrong info
	badSig, err := SignTx(priv, tx2, vaultID, 0)
	require.NoError(t, err)

	// no signers
	signers, err := VerifyTxSignatures(kv, tx, vaultID)
	require.NoError(t, err)
	assert.Empty(t, signers)

	// bad signers
	tx.Signatures = []*StdSignature{badSig}
	_, err = VerifyTxSignatures(kv, tx, vaultID)
	assert.Error(t, err)

	// some signers
	tx.Signatures = []*StdSignature{sig}
	signers, err = VerifyTxSignatures(kv, tx, vaultID)
	require.NoError(t, err)
	assert.Equal(t, []cerberus.Condition{addr}, signers)

	// one signature as replay is blocked
	tx.Signatures = []*StdSignature{sig, sig2}
	_, err = VerifyTxSignatures(kv, tx, vaultID)
	assert.Error(t, err)

	// now increment seq and it passes
	tx.Signatures = []*StdSignature{sig1, sig2}
	signers, err = VerifyTxSignatures(kv, tx, vaultID)
	require.NoError(t, err)
	assert.Equal(t, []cerberus.Condition{addr, addr2}, signers)
}

func TestTxRoundTrip(t *testing.T) {
	cerberus.RegisterMsg(func() cerberus.Msg { return &cerberustest.Msg{RoutePath: "sigstest/roundtrip"} })

	tx := newTx(t, "sigstest/roundtrip")
	require.NoError(t, Sign(tx, crypto.GenPrivKeyEd25519(), "vault-one", 0))
	require.Len(t, tx.Signatures, 1)

	msg, err := tx.GetMsg()
	require.NoError(t, err)
	assert.Equal(t, "sigstest/roundtrip", msg.Path())

	_, err = (&Tx{}).GetMsg()
	assert.True(t, errors.ErrEmpty.Is(err))
	_, err = (&Tx{Path: "unknown/path"}).GetMsg()
	assert.True(t, errors.ErrMsg.Is(err))
}
