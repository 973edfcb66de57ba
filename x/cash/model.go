package cash

import (
	"github.com/cerberus-vault/cerberus/orm"
	"github.com/gogo/protobuf/proto"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Wallet is the balance of a single principal. It is stored under the
// principal address.
type Wallet struct {
	Balance uint64 `protobuf:"varint,1,opt,name=balance,proto3" json:"balance,omitempty"`
}

func (m *Wallet) Reset()         { *m = Wallet{} }
func (m *Wallet) String() string { return proto.CompactTextString(m) }
func (*Wallet) ProtoMessage()    {}

// Validate accepts any balance. Overflow is checked when coins are moved.
func (*Wallet) Validate() error {
	return nil
}

// NewBucket returns a bucket for storing wallets.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Wallet{})
}
