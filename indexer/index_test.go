package indexer

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/cerberustest"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/cerberus-vault/cerberus/store"
	"github.com/cerberus-vault/cerberus/x/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = cerberustest.SequenceAddress(1)
	bob   = cerberustest.SequenceAddress(2)
	carol = cerberustest.SequenceAddress(3)
	dave  = cerberustest.SequenceAddress(4)
)

func openIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Open(filepath.Join(t.TempDir(), "nested", "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })
	return ix
}

func TestRegisterWallet(t *testing.T) {
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	ctx := cerberus.WithTime(context.Background(), now)
	ix := openIndex(t)

	w, err := ix.RegisterWallet(ctx, "Family", "ethereum", "family", []cerberus.Address{alice, bob}, 2)
	require.NoError(t, err)
	assert.Equal(t, "Family", w.Name)
	assert.Equal(t, "ethereum", w.Network)
	assert.Equal(t, "family", w.VaultID)
	assert.Equal(t, uint32(2), w.Threshold)
	assert.Equal(t, []cerberus.Address{alice, bob}, w.Owners)
	assert.Equal(t, now, w.CreatedAt)
	assert.Equal(t, vault.Address("family"), w.Address)

	id, err := ix.VaultByAddress(ctx, vault.Address("family"))
	require.NoError(t, err)
	assert.Equal(t, "family", id)
	_, err = ix.VaultByAddress(ctx, alice)
	assert.True(t, errors.ErrNotFound.Is(err))

	_, err = ix.RegisterWallet(ctx, "Again", "ethereum", "family", []cerberus.Address{alice, bob}, 2)
	assert.True(t, errors.ErrDuplicate.Is(err))
	_, err = ix.RegisterWallet(ctx, " ", "ethereum", "other", nil, 2)
	assert.True(t, errors.ErrEmpty.Is(err))
	_, err = ix.RegisterWallet(ctx, "Other", "ethereum", "Not Valid", nil, 2)
	assert.True(t, errors.ErrInput.Is(err))

	// addresses are shared between wallets
	_, err = ix.RegisterWallet(ctx, "Work", "sepolia", "work", []cerberus.Address{bob, carol}, 2)
	require.NoError(t, err)

	wallets, err := ix.WalletsByOwner(ctx, bob)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, "family", wallets[0].VaultID)
	assert.Equal(t, "work", wallets[1].VaultID)

	wallets, err = ix.WalletsByOwner(ctx, alice)
	require.NoError(t, err)
	require.Len(t, wallets, 1)

	wallets, err = ix.WalletsByOwner(ctx, dave)
	require.NoError(t, err)
	assert.Empty(t, wallets)
}

func TestRenameWallet(t *testing.T) {
	ctx := context.Background()
	ix := openIndex(t)

	w, err := ix.RegisterWallet(ctx, "Family", "ethereum", "family", []cerberus.Address{alice, bob}, 2)
	require.NoError(t, err)

	renamed, err := ix.RenameWallet(ctx, w.ID, "Savings")
	require.NoError(t, err)
	assert.Equal(t, "Savings", renamed.Name)

	_, err = ix.RenameWallet(ctx, w.ID+1, "Nope")
	assert.True(t, errors.ErrNotFound.Is(err))
	_, err = ix.RenameWallet(ctx, w.ID, "")
	assert.True(t, errors.ErrEmpty.Is(err))
	_, err = ix.Wallet(ctx, 999)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	ix := openIndex(t)
	_, err := ix.RegisterWallet(ctx, "Family", "ethereum", "family", []cerberus.Address{alice, bob}, 2)
	require.NoError(t, err)

	require.NoError(t, ix.Publish(ctx, "family", []cerberus.Event{
		vault.AddOwner{Owner: carol},
		vault.AddOwner{Owner: dave},
		vault.ChangeThreshold{Threshold: 3},
		vault.RemoveOwner{Owner: alice},
		vault.SubmitTransaction{ID: 1, Target: dave, Value: 1 << 63, Data: []byte("x")},
		vault.Confirmation{ID: 1, Owner: bob},
		vault.Confirmation{ID: 1, Owner: carol},
		vault.Revocation{ID: 1, Owner: bob},
		vault.Confirmation{ID: 1, Owner: dave},
		vault.Confirmation{ID: 1, Owner: bob},
		vault.Execution{ID: 1, Target: dave, Value: 1 << 63, Data: []byte("x")},
		vault.Deposit{Sender: alice, Value: 7},
	}))

	owners, err := ix.Owners(ctx, "family")
	require.NoError(t, err)
	assert.Equal(t, []cerberus.Address{bob, carol, dave}, owners)

	wallets, err := ix.WalletsByOwner(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, wallets)

	txs, err := ix.Transactions(ctx, "family")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, uint64(1), txs[0].ID)
	assert.Equal(t, dave, txs[0].Target)
	assert.Equal(t, uint64(1<<63), txs[0].Value)
	assert.True(t, txs[0].Executed)
	assert.Equal(t, uint32(3), txs[0].Confirmations)
	assert.ElementsMatch(t, []cerberus.Address{carol, dave, bob}, txs[0].Confirmers)

	deposits, err := ix.Deposits(ctx, "family")
	require.NoError(t, err)
	require.Len(t, deposits, 1)
	assert.Equal(t, alice, deposits[0].Sender)
	assert.Equal(t, uint64(7), deposits[0].Value)

	w, err := ix.WalletsByOwner(ctx, bob)
	require.NoError(t, err)
	require.Len(t, w, 1)
	assert.Equal(t, uint32(3), w[0].Threshold)
}

func TestPublishIsAtomic(t *testing.T) {
	ctx := context.Background()
	ix := openIndex(t)

	require.NoError(t, ix.Publish(ctx, "unnamed", []cerberus.Event{
		vault.SubmitTransaction{ID: 1, Target: dave, Value: 5},
	}))

	// the same transaction cannot be submitted twice
	err := ix.Publish(ctx, "unnamed", []cerberus.Event{
		vault.SubmitTransaction{ID: 2, Target: dave, Value: 5},
		vault.SubmitTransaction{ID: 1, Target: dave, Value: 5},
	})
	assert.True(t, errors.ErrDatabase.Is(err))

	txs, err := ix.Transactions(ctx, "unnamed")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, uint64(1), txs[0].ID)

	// owner changes of vaults without a wallet are ignored
	require.NoError(t, ix.Publish(ctx, "unnamed", []cerberus.Event{vault.AddOwner{Owner: alice}}))
	owners, err := ix.Owners(ctx, "unnamed")
	require.NoError(t, err)
	assert.Empty(t, owners)
}

func TestIndexFedByVault(t *testing.T) {
	ctx := context.Background()
	ix := openIndex(t)

	owners := []cerberus.Address{alice, bob, carol}
	v, err := vault.Create("indexed", store.MemStore(), owners, 2, vault.WithEventSink(ix))
	require.NoError(t, err)
	_, err = ix.RegisterWallet(ctx, "Indexed", "ethereum", v.ID(), owners, 2)
	require.NoError(t, err)

	id, err := v.SubmitAndConfirm(ctx, alice, dave, 0, []byte("memo"))
	require.NoError(t, err)
	executed, err := v.ConfirmAndExecute(ctx, bob, id)
	require.NoError(t, err)
	require.True(t, executed)
	require.NoError(t, v.SwapOwner(ctx, carol, bob, dave))

	txs, err := ix.Transactions(ctx, v.ID())
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Executed)
	assert.Equal(t, uint32(2), txs[0].Confirmations)

	got, err := ix.Owners(ctx, v.ID())
	require.NoError(t, err)
	assert.Equal(t, []cerberus.Address{alice, dave, carol}, got)

	want, err := v.Owners()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPublishSwapKeepsPosition(t *testing.T) {
	ctx := context.Background()
	ix := openIndex(t)
	_, err := ix.RegisterWallet(ctx, "Swap", "ethereum", "swap", []cerberus.Address{alice, bob, carol}, 2)
	require.NoError(t, err)

	require.NoError(t, ix.Publish(ctx, "swap", []cerberus.Event{
		vault.AddOwner{Owner: dave},
		vault.RemoveOwner{Owner: alice},
	}))
	owners, err := ix.Owners(ctx, "swap")
	require.NoError(t, err)
	assert.Equal(t, []cerberus.Address{dave, bob, carol}, owners)

	// A later addition is still appended.
	require.NoError(t, ix.Publish(ctx, "swap", []cerberus.Event{vault.AddOwner{Owner: alice}}))
	owners, err = ix.Owners(ctx, "swap")
	require.NoError(t, err)
	assert.Equal(t, []cerberus.Address{dave, bob, carol, alice}, owners)
}
