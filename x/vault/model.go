package vault

import (
	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/cerberus-vault/cerberus/orm"
	"github.com/gogo/protobuf/proto"
)

const (
	// MinOwners is the smallest owner set a vault may have.
	MinOwners = 2
	// MinThreshold is the smallest number of confirmations a vault may
	// require.
	MinThreshold = 2
)

// OwnerSet is the state of the owner registry of a single vault.
type OwnerSet struct {
	Owners    []cerberus.Address `protobuf:"bytes,1,rep,name=owners,proto3" json:"owners"`
	Threshold uint32             `protobuf:"varint,2,opt,name=threshold,proto3" json:"threshold"`
}

func (m *OwnerSet) Reset()         { *m = OwnerSet{} }
func (m *OwnerSet) String() string { return proto.CompactTextString(m) }
func (*OwnerSet) ProtoMessage()    {}

// Validate ensures the registry invariants hold: at least two distinct,
// non null owners and a threshold between two and the owner count.
func (s *OwnerSet) Validate() error {
	seen := make(map[string]struct{}, len(s.Owners))
	for i, o := range s.Owners {
		if err := validatePrincipal(o); err != nil {
			return errors.Field("Owners", err, "owner %d", i)
		}
		if _, ok := seen[string(o)]; ok {
			return errors.Field("Owners", ErrAlreadyExists, "duplicated owner %s", o)
		}
		seen[string(o)] = struct{}{}
	}
	if len(s.Owners) < MinOwners {
		return errors.Field("Owners", ErrTooFewOwners, "owner count must be at least two")
	}
	return errors.Field("Threshold", validateThreshold(s.Threshold, len(s.Owners)), "")
}

// Index returns the position of given principal in the owner list or -1.
func (s *OwnerSet) Index(p cerberus.Address) int {
	for i, o := range s.Owners {
		if o.Equals(p) {
			return i
		}
	}
	return -1
}

// validatePrincipal fails for the null identity and for anything that is
// not a well formed address.
func validatePrincipal(p cerberus.Address) error {
	if p.IsZero() {
		return errors.Wrap(ErrInvalidPrincipal, "null identity")
	}
	if err := p.Validate(); err != nil {
		return errors.Wrap(ErrInvalidPrincipal, err.Error())
	}
	return nil
}

// validateThreshold checks the threshold bounds in the order the registry
// reports them.
func validateThreshold(t uint32, owners int) error {
	switch {
	case t == 0:
		return errors.Wrap(ErrZeroThreshold, "OwnerManager: threshold cannot be zero")
	case t < MinThreshold:
		return errors.Wrap(ErrBelowMinimum, "OwnerManager: threshold must be at least two")
	case int(t) > owners:
		return errors.Wrap(ErrAboveOwnerCount, "OwnerManager: threshold must be less than or equal to ownerCount")
	}
	return nil
}

// Transaction is a proposed, quorum-gated action.
type Transaction struct {
	Target   cerberus.Address `protobuf:"bytes,1,opt,name=target,proto3" json:"target"`
	Value    uint64           `protobuf:"varint,2,opt,name=value,proto3" json:"value"`
	Data     []byte           `protobuf:"bytes,3,opt,name=data,proto3" json:"data,omitempty"`
	Executed bool             `protobuf:"varint,4,opt,name=executed,proto3" json:"executed"`
	// Confirmations is derived from the confirmation records and is
	// updated by confirm and revoke only.
	Confirmations uint32 `protobuf:"varint,5,opt,name=confirmations,proto3" json:"confirmations"`
}

func (m *Transaction) Reset()         { *m = Transaction{} }
func (m *Transaction) String() string { return proto.CompactTextString(m) }
func (*Transaction) ProtoMessage()    {}

func (t *Transaction) Validate() error {
	return errors.Field("Target", validatePrincipal(t.Target), "")
}

const (
	ownersBucket   = "owners"
	txBucket       = "txs"
	confirmsBucket = "confirms"
)

// ownerSetKey is the only key of the owners bucket. Every vault has its
// own store, so it holds a single registry.
var ownerSetKey = []byte("set")

// NewOwnerSetBucket returns a bucket for the owner registry state.
func NewOwnerSetBucket() orm.ModelBucket {
	return orm.NewModelBucket(ownersBucket, &OwnerSet{})
}

// NewTransactionBucket returns a bucket for transactions stored under
// their 8 byte, big endian id.
func NewTransactionBucket() orm.ModelBucket {
	return orm.NewModelBucket(txBucket, &Transaction{})
}

// confirmationKey returns the key of a confirmation record. Records of
// one transaction share the id prefix, so they can be listed with a scan.
func confirmationKey(id uint64, owner cerberus.Address) []byte {
	return append(orm.EncodeSequence(id), owner...)
}
