package sigs

import (
	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/crypto"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/cerberus-vault/cerberus/orm"
	"github.com/gogo/protobuf/proto"
)

// BucketName is where we store the accounts
const BucketName = "sigs"

// maxSequenceValue is limited by the clients. The greatest nonce value a
// javascript client can represent is
//
//	Number.MAX_SAFE_INTEGER = 9007199254740991 = 2^53 - 1
const maxSequenceValue = (1 << 53) - 1

// UserData is the replay protection state of a single public key.
type UserData struct {
	Pubkey   *crypto.PublicKey `protobuf:"bytes,1,opt,name=pubkey,proto3" json:"pubkey,omitempty"`
	Sequence int64             `protobuf:"varint,2,opt,name=sequence,proto3" json:"sequence,omitempty"`
}

func (m *UserData) Reset()         { *m = UserData{} }
func (m *UserData) String() string { return proto.CompactTextString(m) }
func (*UserData) ProtoMessage()    {}

func (u *UserData) Validate() error {
	if u.Pubkey == nil || len(u.Pubkey.Ed25519) == 0 {
		return errors.Field("Pubkey", errors.ErrEmpty, "required")
	}
	if seq := u.Sequence; seq < 0 || seq > maxSequenceValue {
		return errors.Field("Sequence", ErrInvalidSequence, "out of range")
	}
	return nil
}

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
// Before incrementing the sequence, this function is testing for a value
// overflow.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", u.Sequence, expected)
	}
	next := u.Sequence + 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// NewBucket creates the proper bucket for this extension. Users are stored
// under the address of their public key.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &UserData{})
}

// loadUser returns the user stored for given public key, or a new user
// with a zero sequence if the key was never used.
func loadUser(b orm.ModelBucket, db cerberus.ReadOnlyKVStore, pubkey *crypto.PublicKey) (*UserData, error) {
	var u UserData
	switch err := b.One(db, pubkey.Address(), &u); {
	case err == nil:
		return &u, nil
	case errors.ErrNotFound.Is(err):
		return &UserData{Pubkey: pubkey}, nil
	default:
		return nil, err
	}
}
