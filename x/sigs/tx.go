package sigs

import (
	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/crypto"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/gogo/protobuf/proto"
)

// SignedTx represents a transaction that contains signatures,
// which can be verified by the Decorator
type SignedTx interface {
	cerberus.Tx

	// GetSignBytes returns the canonical byte representation of the Msg.
	GetSignBytes() ([]byte, error)

	// Signatures returns the signature of signers who signed the Msg.
	GetSignatures() []*StdSignature
}

// StdSignature is a signature of a Tx together with the public key and
// the sequence it was made with.
type StdSignature struct {
	Pubkey    *crypto.PublicKey `protobuf:"bytes,1,opt,name=pubkey,proto3" json:"pubkey,omitempty"`
	Signature *crypto.Signature `protobuf:"bytes,2,opt,name=signature,proto3" json:"signature,omitempty"`
	Sequence  int64             `protobuf:"varint,3,opt,name=sequence,proto3" json:"sequence,omitempty"`
}

func (m *StdSignature) Reset()         { *m = StdSignature{} }
func (m *StdSignature) String() string { return proto.CompactTextString(m) }
func (*StdSignature) ProtoMessage()    {}

// Validate ensures the StdSignature meets basic standards
func (s *StdSignature) Validate() error {
	if s.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if s.Pubkey == nil || len(s.Pubkey.Ed25519) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "missing public key")
	}
	if len(s.Signature.GetEd25519()) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return nil
}

// Tx is a signed envelope carrying a single vault message in its
// serialized form.
type Tx struct {
	Path       string          `protobuf:"bytes,1,opt,name=path,proto3" json:"path,omitempty"`
	Msg        []byte          `protobuf:"bytes,2,opt,name=msg,proto3" json:"msg,omitempty"`
	Signatures []*StdSignature `protobuf:"bytes,3,rep,name=signatures,proto3" json:"signatures,omitempty"`
}

func (m *Tx) Reset()         { *m = Tx{} }
func (m *Tx) String() string { return proto.CompactTextString(m) }
func (*Tx) ProtoMessage()    {}

var _ SignedTx = (*Tx)(nil)

// NewTx returns an unsigned envelope for given message.
func NewTx(msg cerberus.Msg) (*Tx, error) {
	if msg == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "message")
	}
	raw, err := proto.Marshal(msg)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrMsg, "cannot serialize: %s", err)
	}
	return &Tx{Path: msg.Path(), Msg: raw}, nil
}

// GetMsg decodes the carried message using the type registered for its
// path.
func (tx *Tx) GetMsg() (cerberus.Msg, error) {
	if tx.Path == "" {
		return nil, errors.Wrap(errors.ErrEmpty, "message path")
	}
	return cerberus.UnpackMsg(tx.Path, tx.Msg)
}

func (tx *Tx) GetSignatures() []*StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the serialized envelope without the signatures.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	raw, err := proto.Marshal(&Tx{Path: tx.Path, Msg: tx.Msg})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrMsg, "cannot serialize: %s", err)
	}
	return raw, nil
}
