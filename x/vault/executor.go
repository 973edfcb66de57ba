package vault

import (
	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/errors"
)

// Action is the effect of an approved transaction: move Value from the
// vault to Target, carrying an opaque Data payload.
type Action struct {
	Source cerberus.Address
	Target cerberus.Address
	Value  uint64
	Data   []byte
}

// Executor performs the effect of approved transactions. It is called
// only by the ledger, after the transaction reached quorum. An Executor
// must not change the vault state. Any error makes the whole execution
// fail.
type Executor interface {
	Execute(ctx cerberus.Context, a Action) error
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(cerberus.Context, Action) error

func (fn ExecutorFunc) Execute(ctx cerberus.Context, a Action) error {
	return fn(ctx, a)
}

// Funds is where the value held by vaults and principals is kept.
// cash.Bank is the implementation used in production.
type Funds interface {
	Transfer(ctx cerberus.Context, src, dest cerberus.Address, amount uint64) error
	Balance(addr cerberus.Address) (uint64, error)
}

// TransferExecutor executes actions by moving value between accounts of
// the funds. The payload is not interpreted, it is only logged.
type TransferExecutor struct {
	funds Funds
}

var _ Executor = TransferExecutor{}

// NewTransferExecutor returns an executor moving value within given funds.
func NewTransferExecutor(funds Funds) TransferExecutor {
	return TransferExecutor{funds: funds}
}

// Execute transfers the action value. An action without value only
// carries its payload and always succeeds.
func (e TransferExecutor) Execute(ctx cerberus.Context, a Action) error {
	if len(a.Data) != 0 {
		cerberus.GetLogger(ctx).Info("action payload", "target", a.Target, "size", len(a.Data))
	}
	if a.Value == 0 {
		return nil
	}
	return e.funds.Transfer(ctx, a.Source, a.Target, a.Value)
}

// noFunds is the executor of a vault that was created without funds. It
// can execute only actions that move no value.
type noFunds struct{}

func (noFunds) Execute(ctx cerberus.Context, a Action) error {
	if a.Value == 0 {
		return nil
	}
	return errors.Wrap(errors.ErrInsufficientAmount, "vault has no funds")
}

// Address returns the principal holding the funds of the vault with
// given id.
func Address(vaultID string) cerberus.Address {
	return cerberus.NewCondition("vault", "id", []byte(vaultID)).Address()
}
