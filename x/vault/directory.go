package vault

import (
	"context"
	"sort"
	"sync"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/errors"
)

// Directory holds independent vaults by their id. Its lock guards only the
// index, vaults serialize their own requests, so different vaults are
// used concurrently.
//
// Value moved through the funds returned by Funds is reported to the
// receiving vault of this directory as a Deposit.
type Directory struct {
	mu        sync.RWMutex
	vaults    map[string]*Vault
	byAddress map[string]*Vault
	load      func(cerberus.Address) (*Vault, error)
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		vaults:    make(map[string]*Vault),
		byAddress: make(map[string]*Vault),
	}
}

// Add registers a vault. Ids are unique.
func (d *Directory) Add(v *Vault) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.vaults[v.ID()]; ok {
		return errors.Wrapf(errors.ErrDuplicate, "vault %q", v.ID())
	}
	d.vaults[v.ID()] = v
	d.byAddress[string(v.Address())] = v
	return nil
}

// Get returns the vault with given id.
func (d *Directory) Get(id string) (*Vault, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.vaults[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "vault %q", id)
	}
	return v, nil
}

// IDs returns the ids of all vaults in ascending order.
func (d *Directory) IDs() []string {
	d.mu.RLock()
	ids := make([]string, 0, len(d.vaults))
	for id := range d.vaults {
		ids = append(ids, id)
	}
	d.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// LoadWith sets the function used to find a vault that was not added yet
// by the address holding its funds. It returns nil for an address that
// belongs to no vault. A loaded vault is added to the directory.
func (d *Directory) LoadWith(fn func(cerberus.Address) (*Vault, error)) {
	d.mu.Lock()
	d.load = fn
	d.mu.Unlock()
}

// ByAddress returns the vault whose funds are held by addr, or nil.
func (d *Directory) ByAddress(addr cerberus.Address) (*Vault, error) {
	d.mu.RLock()
	v, ok := d.byAddress[string(addr)]
	load := d.load
	d.mu.RUnlock()
	if ok || load == nil {
		return v, nil
	}

	v, err := load(addr)
	if err != nil || v == nil {
		return nil, err
	}
	if !v.Address().Equals(addr) {
		return nil, errors.Wrapf(errors.ErrHuman, "loaded vault %q does not hold %s", v.ID(), addr)
	}
	if err := d.Add(v); err != nil {
		if !errors.ErrDuplicate.Is(err) {
			return nil, err
		}
		return d.Get(v.ID())
	}
	return v, nil
}

// Funds returns f reporting every value it moves into a vault of this
// directory to that vault.
func (d *Directory) Funds(f Funds) Funds {
	return &routedFunds{Funds: f, dir: d}
}

type routedFunds struct {
	Funds
	dir *Directory
}

func (r *routedFunds) Transfer(ctx cerberus.Context, src, dest cerberus.Address, amount uint64) error {
	if err := r.Funds.Transfer(ctx, src, dest, amount); err != nil {
		return err
	}
	c := credit{dir: r.dir, sender: src.Clone(), dest: dest.Clone(), value: amount}
	// Within a vault request the credit is reported once that request
	// commits. A deposit handler reports its own vault.
	if pending, ok := ctx.Value(creditsKey).(*credits); ok {
		if id, ok := cerberus.GetVaultID(ctx); ok && dest.Equals(Address(id)) {
			return nil
		}
		pending.add(c)
		return nil
	}
	c.report(ctx)
	return nil
}

type creditsKeyType int

const creditsKey creditsKeyType = 0

// credits are value transfers made by a single request that are reported
// to their receiving vaults after the request committed.
type credits struct {
	mu   sync.Mutex
	list []credit
}

func withCredits(ctx cerberus.Context) (cerberus.Context, *credits) {
	c := &credits{}
	return context.WithValue(ctx, creditsKey, c), c
}

func (c *credits) add(cr credit) {
	c.mu.Lock()
	c.list = append(c.list, cr)
	c.mu.Unlock()
}

func (c *credits) report(ctx cerberus.Context) {
	c.mu.Lock()
	list := c.list
	c.list = nil
	c.mu.Unlock()
	for _, cr := range list {
		cr.report(ctx)
	}
}

type credit struct {
	dir    *Directory
	sender cerberus.Address
	dest   cerberus.Address
	value  uint64
}

func (c credit) report(ctx cerberus.Context) {
	v, err := c.dir.ByAddress(c.dest)
	if err != nil {
		cerberus.GetLogger(ctx).Error("cannot find receiving vault", "address", c.dest, "err", err)
		return
	}
	if v == nil {
		return
	}
	v.received(ctx, c.sender, c.value)
}
