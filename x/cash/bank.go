package cash

import (
	"sync"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/errors"
)

// Bank keeps the balances of all principals and vaults. It is safe for
// concurrent use.
//
// Every change is applied to a cache-wrap of the bank store and written
// only if the whole change succeeded.
type Bank struct {
	mu   sync.Mutex
	db   cerberus.CacheableKVStore
	ctrl Controller
}

// NewBank returns a bank keeping its state in given store.
func NewBank(db cerberus.CacheableKVStore) *Bank {
	return &Bank{
		db:   db,
		ctrl: NewController(NewBucket()),
	}
}

// Transfer moves amount from src to dest. Nothing is changed if the move
// fails.
func (b *Bank) Transfer(ctx cerberus.Context, src, dest cerberus.Address, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.atomic(func(db cerberus.KVStore) error {
		return b.ctrl.MoveCoins(db, src, dest, amount)
	})
	if err != nil {
		cerberus.GetLogger(ctx).Debug("transfer rejected", "src", src, "dest", dest, "amount", amount, "err", err)
		return err
	}
	cerberus.GetLogger(ctx).Info("transfer", "src", src, "dest", dest, "amount", amount)
	return nil
}

// Issue creates amount of new value owned by dest.
func (b *Bank) Issue(ctx cerberus.Context, dest cerberus.Address, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.atomic(func(db cerberus.KVStore) error {
		return b.ctrl.IssueCoins(db, dest, amount)
	})
	if err != nil {
		return err
	}
	cerberus.GetLogger(ctx).Info("issue", "dest", dest, "amount", amount)
	return nil
}

// Balance returns the current balance of given address.
func (b *Bank) Balance(addr cerberus.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ctrl.Balance(b.db, addr)
}

func (b *Bank) atomic(fn func(cerberus.KVStore) error) error {
	cache := b.db.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}
