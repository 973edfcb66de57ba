package vault

import (
	"context"
	"testing"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecutor struct {
	actions []Action
	err     error
}

func (e *recordingExecutor) Execute(ctx cerberus.Context, a Action) error {
	if e.err != nil {
		return e.err
	}
	e.actions = append(e.actions, a)
	return nil
}

func newLedger(t testing.TB) (*TransactionLedger, *recordingExecutor, cerberus.CacheableKVStore) {
	t.Helper()
	r, db := newRegistry(t, 2, alice, bob, carol)
	exec := &recordingExecutor{}
	return NewTransactionLedger(r, exec), exec, db
}

func TestLedgerSubmit(t *testing.T) {
	l, _, db := newLedger(t)

	nonce, err := l.Nonce(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), nonce)

	id, err := l.Submit(db, dave, 100, []byte("rent"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
	id, err = l.Submit(db, dave, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id)

	nonce, err = l.Nonce(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), nonce)

	tx, err := l.Transaction(db, 1)
	require.NoError(t, err)
	assert.Equal(t, dave, tx.Target)
	assert.Equal(t, uint64(100), tx.Value)
	assert.Equal(t, []byte("rent"), tx.Data)
	assert.False(t, tx.Executed)
	assert.Equal(t, uint32(0), tx.Confirmations)

	_, err = l.Submit(db, zero, 1, nil)
	assert.True(t, ErrInvalidPrincipal.Is(err))
	nonce, err = l.Nonce(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), nonce)

	for _, id := range []uint64{0, 3, 1 << 40} {
		_, err := l.Transaction(db, id)
		assert.True(t, ErrInvalidNonce.Is(err), "id %d", id)
	}
}

func TestLedgerConfirmRevoke(t *testing.T) {
	l, _, db := newLedger(t)
	id, err := l.Submit(db, dave, 10, nil)
	require.NoError(t, err)

	require.NoError(t, l.Confirm(db, id, alice))
	err = l.Confirm(db, id, alice)
	assert.True(t, ErrAlreadyConfirmed.Is(err))
	require.NoError(t, l.Confirm(db, id, bob))

	n, err := l.ConfirmationCount(db, id)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), n)
	quorum, err := l.HasQuorum(db, id)
	require.NoError(t, err)
	assert.True(t, quorum)

	confirmers, err := l.Confirmers(db, id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []cerberus.Address{alice, bob}, confirmers)

	require.NoError(t, l.Revoke(db, id, alice))
	err = l.Revoke(db, id, alice)
	assert.True(t, ErrNotConfirmed.Is(err))
	err = l.Revoke(db, id, carol)
	assert.True(t, ErrNotConfirmed.Is(err))

	ok, err := l.IsOwnerConfirmed(db, id, alice)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = l.IsOwnerConfirmed(db, id, bob)
	require.NoError(t, err)
	assert.True(t, ok)
	n, err = l.ConfirmationCount(db, id)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), n)

	err = l.Confirm(db, id+1, alice)
	assert.True(t, ErrInvalidNonce.Is(err))
	err = l.Revoke(db, 0, alice)
	assert.True(t, ErrInvalidNonce.Is(err))
}

func TestLedgerConfirmationsArePerTransaction(t *testing.T) {
	l, _, db := newLedger(t)
	first, err := l.Submit(db, dave, 1, nil)
	require.NoError(t, err)
	second, err := l.Submit(db, dave, 2, nil)
	require.NoError(t, err)

	require.NoError(t, l.Confirm(db, first, alice))
	ok, err := l.IsOwnerConfirmed(db, second, alice)
	require.NoError(t, err)
	assert.False(t, ok)
	confirmers, err := l.Confirmers(db, second)
	require.NoError(t, err)
	assert.Empty(t, confirmers)
}

func TestLedgerExecute(t *testing.T) {
	ctx := cerberus.WithVaultID(context.Background(), "ledger-test")

	l, exec, db := newLedger(t)
	id, err := l.Submit(db, dave, 10, []byte("payload"))
	require.NoError(t, err)

	_, err = l.Execute(ctx, db, id)
	assert.True(t, ErrInsufficientConfirmations.Is(err))
	require.NoError(t, l.Confirm(db, id, alice))
	_, err = l.Execute(ctx, db, id)
	assert.True(t, ErrInsufficientConfirmations.Is(err))
	assert.Empty(t, exec.actions)

	require.NoError(t, l.Confirm(db, id, bob))
	_, err = l.Execute(context.Background(), db, id)
	assert.True(t, errors.ErrHuman.Is(err))

	tx, err := l.Execute(ctx, db, id)
	require.NoError(t, err)
	assert.True(t, tx.Executed)
	require.Len(t, exec.actions, 1)
	assert.Equal(t, Action{
		Source: Address("ledger-test"),
		Target: dave,
		Value:  10,
		Data:   []byte("payload"),
	}, exec.actions[0])

	_, err = l.Execute(ctx, db, id)
	assert.True(t, ErrAlreadyExecuted.Is(err))
	err = l.Confirm(db, id, carol)
	assert.True(t, ErrAlreadyExecuted.Is(err))
	err = l.Revoke(db, id, alice)
	assert.True(t, ErrAlreadyExecuted.Is(err))
	assert.Len(t, exec.actions, 1)
}

func TestLedgerExecuteFailure(t *testing.T) {
	ctx := cerberus.WithVaultID(context.Background(), "ledger-test")

	l, exec, db := newLedger(t)
	id, err := l.Submit(db, dave, 10, nil)
	require.NoError(t, err)
	require.NoError(t, l.Confirm(db, id, alice))
	require.NoError(t, l.Confirm(db, id, bob))

	exec.err = errors.Wrap(errors.ErrInsufficientAmount, "empty")
	cache := db.CacheWrap()
	_, err = l.Execute(ctx, cache, id)
	require.True(t, ErrTransferFailed.Is(err))
	assert.Contains(t, err.Error(), "Transaction failed")
	cache.Discard()

	tx, err := l.Transaction(db, id)
	require.NoError(t, err)
	assert.False(t, tx.Executed)

	exec.err = nil
	_, err = l.Execute(ctx, db, id)
	require.NoError(t, err)
}

func TestLedgerThresholdReadAtExecution(t *testing.T) {
	ctx := cerberus.WithVaultID(context.Background(), "ledger-test")

	l, _, db := newLedger(t)
	id, err := l.Submit(db, dave, 0, nil)
	require.NoError(t, err)
	require.NoError(t, l.Confirm(db, id, alice))
	require.NoError(t, l.Confirm(db, id, bob))

	require.NoError(t, l.registry.ChangeThreshold(db, 3))
	quorum, err := l.HasQuorum(db, id)
	require.NoError(t, err)
	assert.False(t, quorum)
	_, err = l.Execute(ctx, db, id)
	assert.True(t, ErrInsufficientConfirmations.Is(err))

	require.NoError(t, l.registry.ChangeThreshold(db, 2))
	_, err = l.Execute(ctx, db, id)
	assert.NoError(t, err)
}
