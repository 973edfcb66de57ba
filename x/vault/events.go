package vault

import (
	"github.com/cerberus-vault/cerberus"
)

// AddOwner is emitted when a principal becomes an owner.
type AddOwner struct {
	Owner cerberus.Address `json:"owner"`
}

func (AddOwner) EventName() string { return "AddOwner" }

// RemoveOwner is emitted when a principal stops being an owner.
type RemoveOwner struct {
	Owner cerberus.Address `json:"owner"`
}

func (RemoveOwner) EventName() string { return "RemoveOwner" }

// ChangeThreshold is emitted when the number of required confirmations
// changes.
type ChangeThreshold struct {
	Threshold uint32 `json:"threshold"`
}

func (ChangeThreshold) EventName() string { return "ChangeThreshold" }

// SubmitTransaction is emitted when a new transaction is proposed.
type SubmitTransaction struct {
	ID     uint64           `json:"id"`
	Target cerberus.Address `json:"target"`
	Value  uint64           `json:"value"`
	Data   []byte           `json:"data,omitempty"`
}

func (SubmitTransaction) EventName() string { return "SubmitTransaction" }

// Confirmation is emitted when an owner confirms a transaction.
type Confirmation struct {
	ID    uint64           `json:"id"`
	Owner cerberus.Address `json:"owner"`
}

func (Confirmation) EventName() string { return "Confirmation" }

// Revocation is emitted when an owner withdraws its confirmation.
type Revocation struct {
	ID    uint64           `json:"id"`
	Owner cerberus.Address `json:"owner"`
}

func (Revocation) EventName() string { return "Revocation" }

// Execution is emitted when a transaction is executed.
type Execution struct {
	ID     uint64           `json:"id"`
	Target cerberus.Address `json:"target"`
	Value  uint64           `json:"value"`
	Data   []byte           `json:"data,omitempty"`
}

func (Execution) EventName() string { return "Execution" }

// Deposit is emitted when value is sent into the vault.
type Deposit struct {
	Sender cerberus.Address `json:"sender"`
	Value  uint64           `json:"value"`
}

func (Deposit) EventName() string { return "Deposit" }
