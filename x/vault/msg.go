package vault

import (
	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/gogo/protobuf/proto"
)

const (
	pathAddOwnerMsg          = "vault/add_owner"
	pathRemoveOwnerMsg       = "vault/remove_owner"
	pathSwapOwnerMsg         = "vault/swap_owner"
	pathChangeThresholdMsg   = "vault/change_threshold"
	pathSubmitMsg            = "vault/submit"
	pathSubmitAndConfirmMsg  = "vault/submit_and_confirm"
	pathConfirmMsg           = "vault/confirm"
	pathRevokeMsg            = "vault/revoke"
	pathExecuteMsg           = "vault/execute"
	pathConfirmAndExecuteMsg = "vault/confirm_and_execute"
	pathDepositMsg           = "vault/deposit"

	// maxDataSize limits the payload a transaction may carry.
	maxDataSize = 64 * 1024
)

func init() {
	cerberus.RegisterMsg(func() cerberus.Msg { return &AddOwnerMsg{} })
	cerberus.RegisterMsg(func() cerberus.Msg { return &RemoveOwnerMsg{} })
	cerberus.RegisterMsg(func() cerberus.Msg { return &SwapOwnerMsg{} })
	cerberus.RegisterMsg(func() cerberus.Msg { return &ChangeThresholdMsg{} })
	cerberus.RegisterMsg(func() cerberus.Msg { return &SubmitMsg{} })
	cerberus.RegisterMsg(func() cerberus.Msg { return &SubmitAndConfirmMsg{} })
	cerberus.RegisterMsg(func() cerberus.Msg { return &ConfirmMsg{} })
	cerberus.RegisterMsg(func() cerberus.Msg { return &RevokeMsg{} })
	cerberus.RegisterMsg(func() cerberus.Msg { return &ExecuteMsg{} })
	cerberus.RegisterMsg(func() cerberus.Msg { return &ConfirmAndExecuteMsg{} })
	cerberus.RegisterMsg(func() cerberus.Msg { return &DepositMsg{} })
}

// AddOwnerMsg adds a principal to the owner set.
type AddOwnerMsg struct {
	Owner cerberus.Address `protobuf:"bytes,1,opt,name=owner,proto3" json:"owner"`
}

func (m *AddOwnerMsg) Reset()         { *m = AddOwnerMsg{} }
func (m *AddOwnerMsg) String() string { return proto.CompactTextString(m) }
func (*AddOwnerMsg) ProtoMessage()    {}

// Path fulfills cerberus.Msg interface to allow routing
func (AddOwnerMsg) Path() string {
	return pathAddOwnerMsg
}

// Validate checks the address is well formed. Null identity is rejected
// by the registry, so that it is reported after authorization.
func (m *AddOwnerMsg) Validate() error {
	return validateAddress("Owner", m.Owner)
}

// RemoveOwnerMsg removes a principal from the owner set.
type RemoveOwnerMsg struct {
	Owner cerberus.Address `protobuf:"bytes,1,opt,name=owner,proto3" json:"owner"`
}

func (m *RemoveOwnerMsg) Reset()         { *m = RemoveOwnerMsg{} }
func (m *RemoveOwnerMsg) String() string { return proto.CompactTextString(m) }
func (*RemoveOwnerMsg) ProtoMessage()    {}

// Path fulfills cerberus.Msg interface to allow routing
func (RemoveOwnerMsg) Path() string {
	return pathRemoveOwnerMsg
}

func (m *RemoveOwnerMsg) Validate() error {
	return validateAddress("Owner", m.Owner)
}

// SwapOwnerMsg replaces an owner with a new principal.
type SwapOwnerMsg struct {
	OldOwner cerberus.Address `protobuf:"bytes,1,opt,name=old_owner,json=oldOwner,proto3" json:"old_owner"`
	NewOwner cerberus.Address `protobuf:"bytes,2,opt,name=new_owner,json=newOwner,proto3" json:"new_owner"`
}

func (m *SwapOwnerMsg) Reset()         { *m = SwapOwnerMsg{} }
func (m *SwapOwnerMsg) String() string { return proto.CompactTextString(m) }
func (*SwapOwnerMsg) ProtoMessage()    {}

// Path fulfills cerberus.Msg interface to allow routing
func (SwapOwnerMsg) Path() string {
	return pathSwapOwnerMsg
}

func (m *SwapOwnerMsg) Validate() error {
	if err := validateAddress("OldOwner", m.OldOwner); err != nil {
		return err
	}
	return validateAddress("NewOwner", m.NewOwner)
}

// ChangeThresholdMsg sets the number of confirmations required to execute
// a transaction.
type ChangeThresholdMsg struct {
	Threshold uint32 `protobuf:"varint,1,opt,name=threshold,proto3" json:"threshold"`
}

func (m *ChangeThresholdMsg) Reset()         { *m = ChangeThresholdMsg{} }
func (m *ChangeThresholdMsg) String() string { return proto.CompactTextString(m) }
func (*ChangeThresholdMsg) ProtoMessage()    {}

// Path fulfills cerberus.Msg interface to allow routing
func (ChangeThresholdMsg) Path() string {
	return pathChangeThresholdMsg
}

// Validate accepts any value, bounds depend on the owner count.
func (m *ChangeThresholdMsg) Validate() error {
	return nil
}

// SubmitMsg proposes a new transaction.
type SubmitMsg struct {
	Target cerberus.Address `protobuf:"bytes,1,opt,name=target,proto3" json:"target"`
	Value  uint64           `protobuf:"varint,2,opt,name=value,proto3" json:"value"`
	Data   []byte           `protobuf:"bytes,3,opt,name=data,proto3" json:"data,omitempty"`
}

func (m *SubmitMsg) Reset()         { *m = SubmitMsg{} }
func (m *SubmitMsg) String() string { return proto.CompactTextString(m) }
func (*SubmitMsg) ProtoMessage()    {}

// Path fulfills cerberus.Msg interface to allow routing
func (SubmitMsg) Path() string {
	return pathSubmitMsg
}

func (m *SubmitMsg) Validate() error {
	return validateAction(m.Target, m.Data)
}

// SubmitAndConfirmMsg proposes a new transaction and confirms it on
// behalf of the caller.
type SubmitAndConfirmMsg struct {
	Target cerberus.Address `protobuf:"bytes,1,opt,name=target,proto3" json:"target"`
	Value  uint64           `protobuf:"varint,2,opt,name=value,proto3" json:"value"`
	Data   []byte           `protobuf:"bytes,3,opt,name=data,proto3" json:"data,omitempty"`
}

func (m *SubmitAndConfirmMsg) Reset()         { *m = SubmitAndConfirmMsg{} }
func (m *SubmitAndConfirmMsg) String() string { return proto.CompactTextString(m) }
func (*SubmitAndConfirmMsg) ProtoMessage()    {}

// Path fulfills cerberus.Msg interface to allow routing
func (SubmitAndConfirmMsg) Path() string {
	return pathSubmitAndConfirmMsg
}

func (m *SubmitAndConfirmMsg) Validate() error {
	return validateAction(m.Target, m.Data)
}

// ConfirmMsg confirms a pending transaction.
type ConfirmMsg struct {
	TransactionID uint64 `protobuf:"varint,1,opt,name=transaction_id,json=transactionId,proto3" json:"transaction_id"`
}

func (m *ConfirmMsg) Reset()         { *m = ConfirmMsg{} }
func (m *ConfirmMsg) String() string { return proto.CompactTextString(m) }
func (*ConfirmMsg) ProtoMessage()    {}

// Path fulfills cerberus.Msg interface to allow routing
func (ConfirmMsg) Path() string {
	return pathConfirmMsg
}

// Validate accepts any id. Unknown ids are reported by the ledger.
func (m *ConfirmMsg) Validate() error {
	return nil
}

// RevokeMsg withdraws a confirmation of a pending transaction.
type RevokeMsg struct {
	TransactionID uint64 `protobuf:"varint,1,opt,name=transaction_id,json=transactionId,proto3" json:"transaction_id"`
}

func (m *RevokeMsg) Reset()         { *m = RevokeMsg{} }
func (m *RevokeMsg) String() string { return proto.CompactTextString(m) }
func (*RevokeMsg) ProtoMessage()    {}

// Path fulfills cerberus.Msg interface to allow routing
func (RevokeMsg) Path() string {
	return pathRevokeMsg
}

func (m *RevokeMsg) Validate() error {
	return nil
}

// ExecuteMsg executes a transaction that reached quorum.
type ExecuteMsg struct {
	TransactionID uint64 `protobuf:"varint,1,opt,name=transaction_id,json=transactionId,proto3" json:"transaction_id"`
}

func (m *ExecuteMsg) Reset()         { *m = ExecuteMsg{} }
func (m *ExecuteMsg) String() string { return proto.CompactTextString(m) }
func (*ExecuteMsg) ProtoMessage()    {}

// Path fulfills cerberus.Msg interface to allow routing
func (ExecuteMsg) Path() string {
	return pathExecuteMsg
}

func (m *ExecuteMsg) Validate() error {
	return nil
}

// ConfirmAndExecuteMsg confirms a transaction and executes it if the
// confirmation completed the quorum.
type ConfirmAndExecuteMsg struct {
	TransactionID uint64 `protobuf:"varint,1,opt,name=transaction_id,json=transactionId,proto3" json:"transaction_id"`
}

func (m *ConfirmAndExecuteMsg) Reset()         { *m = ConfirmAndExecuteMsg{} }
func (m *ConfirmAndExecuteMsg) String() string { return proto.CompactTextString(m) }
func (*ConfirmAndExecuteMsg) ProtoMessage()    {}

// Path fulfills cerberus.Msg interface to allow routing
func (ConfirmAndExecuteMsg) Path() string {
	return pathConfirmAndExecuteMsg
}

func (m *ConfirmAndExecuteMsg) Validate() error {
	return nil
}

// DepositMsg sends value of the caller into the vault. Anyone may deposit.
type DepositMsg struct {
	Value uint64 `protobuf:"varint,1,opt,name=value,proto3" json:"value"`
}

func (m *DepositMsg) Reset()         { *m = DepositMsg{} }
func (m *DepositMsg) String() string { return proto.CompactTextString(m) }
func (*DepositMsg) ProtoMessage()    {}

// Path fulfills cerberus.Msg interface to allow routing
func (DepositMsg) Path() string {
	return pathDepositMsg
}

func (m *DepositMsg) Validate() error {
	if m.Value == 0 {
		return errors.Field("Value", errors.ErrAmount, "must be positive")
	}
	return nil
}

// validateAddress accepts an empty address or a well formed one. Empty
// and null principals are reported by the registry.
func validateAddress(field string, a cerberus.Address) error {
	if len(a) == 0 {
		return nil
	}
	if err := a.Validate(); err != nil {
		return errors.Field(field, ErrInvalidPrincipal, "%s", err)
	}
	return nil
}

func validateAction(target cerberus.Address, data []byte) error {
	if err := validateAddress("Target", target); err != nil {
		return err
	}
	if len(data) > maxDataSize {
		return errors.Field("Data", errors.ErrInput, "cannot be longer than %d bytes", maxDataSize)
	}
	return nil
}
