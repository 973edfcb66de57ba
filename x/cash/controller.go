package cash

import (
	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/cerberus-vault/cerberus/orm"
)

// Controller is the functionality needed by the bank and the genesis
// loader. All methods work directly on the given store, so the caller is
// responsible for cache-wrapping it when a move must be atomic.
type Controller interface {
	Balance(db cerberus.ReadOnlyKVStore, addr cerberus.Address) (uint64, error)
	MoveCoins(db cerberus.KVStore, src, dest cerberus.Address, amount uint64) error
	IssueCoins(db cerberus.KVStore, dest cerberus.Address, amount uint64) error
}

// BaseController is a simple implementation of the Controller interface.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller operating on given bucket.
func NewController(bucket orm.ModelBucket) BaseController {
	return BaseController{bucket: bucket}
}

// Balance returns the balance of given address. An address that never
// received anything has a zero balance.
func (c BaseController) Balance(db cerberus.ReadOnlyKVStore, addr cerberus.Address) (uint64, error) {
	w, err := c.wallet(db, addr)
	if err != nil {
		return 0, err
	}
	return w.Balance, nil
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't exist, or doesn't have sufficient
// coins, it fails.
func (c BaseController) MoveCoins(db cerberus.KVStore, src, dest cerberus.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}
	if err := src.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}

	sender, err := c.wallet(db, src)
	if err != nil {
		return err
	}
	if sender.Balance < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "balance %d, required %d", sender.Balance, amount)
	}
	if src.Equals(dest) {
		return nil
	}

	recipient, err := c.wallet(db, dest)
	if err != nil {
		return err
	}
	if recipient.Balance+amount < recipient.Balance {
		return errors.Wrap(errors.ErrOverflow, "recipient balance")
	}
	sender.Balance -= amount
	recipient.Balance += amount

	if err := c.bucket.Put(db, src, sender); err != nil {
		return errors.Wrap(err, "cannot save sender")
	}
	if err := c.bucket.Put(db, dest, recipient); err != nil {
		return errors.Wrap(err, "cannot save recipient")
	}
	return nil
}

// IssueCoins attempts to add the given amount of coins to
// the destination address. Fails if it overflows the wallet.
func (c BaseController) IssueCoins(db cerberus.KVStore, dest cerberus.Address, amount uint64) error {
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	recipient, err := c.wallet(db, dest)
	if err != nil {
		return err
	}
	if recipient.Balance+amount < recipient.Balance {
		return errors.Wrap(errors.ErrOverflow, "recipient balance")
	}
	recipient.Balance += amount
	return c.bucket.Put(db, dest, recipient)
}

func (c BaseController) wallet(db cerberus.ReadOnlyKVStore, addr cerberus.Address) (*Wallet, error) {
	var w Wallet
	switch err := c.bucket.One(db, addr, &w); {
	case err == nil:
		return &w, nil
	case errors.ErrNotFound.Is(err):
		return &Wallet{}, nil
	default:
		return nil, errors.Wrap(err, "cannot load wallet")
	}
}
