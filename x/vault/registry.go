package vault

import (
	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/cerberus-vault/cerberus/orm"
)

// OwnerRegistry manages the owner set and the threshold of a vault.
//
// The registry does not check who is calling. Every mutation must be
// guarded by RequireOwner before it reaches the registry.
type OwnerRegistry struct {
	bucket orm.ModelBucket
}

// NewOwnerRegistry returns a registry keeping its state in the owners
// bucket.
func NewOwnerRegistry() *OwnerRegistry {
	return &OwnerRegistry{bucket: NewOwnerSetBucket()}
}

// Create initializes the registry with given owners and threshold. Both
// must already satisfy the registry invariants. A registry can be created
// only once.
func (r *OwnerRegistry) Create(db cerberus.KVStore, owners []cerberus.Address, threshold uint32) error {
	switch err := r.bucket.Has(db, ownerSetKey); {
	case err == nil:
		return errors.Wrap(errors.ErrDuplicate, "owner registry already initialized")
	case !errors.ErrNotFound.Is(err):
		return err
	}
	set := &OwnerSet{Threshold: threshold}
	for _, o := range owners {
		set.Owners = append(set.Owners, o.Clone())
	}
	if err := set.Validate(); err != nil {
		return err
	}
	return r.bucket.Put(db, ownerSetKey, set)
}

// Load returns the current owner set.
func (r *OwnerRegistry) Load(db cerberus.ReadOnlyKVStore) (*OwnerSet, error) {
	var set OwnerSet
	if err := r.bucket.One(db, ownerSetKey, &set); err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, errors.Wrap(errors.ErrState, "owner registry not initialized")
		}
		return nil, err
	}
	return &set, nil
}

// IsOwner returns true if p is a current owner.
func (r *OwnerRegistry) IsOwner(db cerberus.ReadOnlyKVStore, p cerberus.Address) (bool, error) {
	set, err := r.Load(db)
	if err != nil {
		return false, err
	}
	return set.Index(p) >= 0, nil
}

// OwnerCount returns the number of current owners.
func (r *OwnerRegistry) OwnerCount(db cerberus.ReadOnlyKVStore) (int, error) {
	set, err := r.Load(db)
	if err != nil {
		return 0, err
	}
	return len(set.Owners), nil
}

// Threshold returns the number of confirmations required to execute a
// transaction.
func (r *OwnerRegistry) Threshold(db cerberus.ReadOnlyKVStore) (uint32, error) {
	set, err := r.Load(db)
	if err != nil {
		return 0, err
	}
	return set.Threshold, nil
}

// AddOwner appends p to the owner set.
func (r *OwnerRegistry) AddOwner(db cerberus.KVStore, p cerberus.Address) error {
	if p.IsZero() {
		return errors.Wrap(ErrInvalidPrincipal, "OwnerManager: cannot be zero address")
	}
	set, err := r.Load(db)
	if err != nil {
		return err
	}
	if set.Index(p) >= 0 {
		return errors.Wrap(ErrAlreadyExists, "OwnerManager: owner already exists")
	}
	if err := validatePrincipal(p); err != nil {
		return err
	}
	set.Owners = append(set.Owners, p.Clone())
	return r.bucket.Put(db, ownerSetKey, set)
}

// RemoveOwner removes p from the owner set. The remaining owners keep
// their order.
func (r *OwnerRegistry) RemoveOwner(db cerberus.KVStore, p cerberus.Address) error {
	if p.IsZero() {
		return errors.Wrap(ErrInvalidPrincipal, "OwnerManager: cannot be zero address")
	}
	set, err := r.Load(db)
	if err != nil {
		return err
	}
	i := set.Index(p)
	if i < 0 {
		return errors.Wrap(ErrNotFound, "OwnerManager: owner not found")
	}
	remaining := len(set.Owners) - 1
	if remaining < MinOwners {
		return errors.Wrap(ErrTooFewOwners, "OwnerManager: new owner count must be at least two")
	}
	if remaining < int(set.Threshold) {
		return errors.Wrap(ErrThresholdViolation, "OwnerManager: new owner count must be greater than or equal to threshold")
	}
	set.Owners = append(set.Owners[:i], set.Owners[i+1:]...)
	return r.bucket.Put(db, ownerSetKey, set)
}

// SwapOwner replaces oldOwner with newOwner, in place.
func (r *OwnerRegistry) SwapOwner(db cerberus.KVStore, oldOwner, newOwner cerberus.Address) error {
	if oldOwner.Equals(newOwner) {
		return errors.Wrap(ErrSamePrincipal, "OwnerManager: old and new owners are the same")
	}
	if oldOwner.IsZero() {
		return errors.Wrap(ErrInvalidPrincipal, "OwnerManager: old owner cannot be zero address")
	}
	if newOwner.IsZero() {
		return errors.Wrap(ErrInvalidPrincipal, "OwnerManager: new owner cannot be zero address")
	}
	set, err := r.Load(db)
	if err != nil {
		return err
	}
	i := set.Index(oldOwner)
	if i < 0 {
		return errors.Wrap(ErrNotFound, "OwnerManager: old owner not found")
	}
	if set.Index(newOwner) >= 0 {
		return errors.Wrap(ErrAlreadyExists, "OwnerManager: new owner already exists")
	}
	if err := validatePrincipal(newOwner); err != nil {
		return err
	}
	set.Owners[i] = newOwner.Clone()
	return r.bucket.Put(db, ownerSetKey, set)
}

// ChangeThreshold sets the number of confirmations required to execute a
// transaction. The new value applies to pending transactions as well.
func (r *OwnerRegistry) ChangeThreshold(db cerberus.KVStore, t uint32) error {
	set, err := r.Load(db)
	if err != nil {
		return err
	}
	if err := validateThreshold(t, len(set.Owners)); err != nil {
		return err
	}
	if t == set.Threshold {
		return errors.Wrap(ErrUnchanged, "OwnerManager: threshold unchanged")
	}
	set.Threshold = t
	return r.bucket.Put(db, ownerSetKey, set)
}
