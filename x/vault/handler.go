package vault

import (
	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/app"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/cerberus-vault/cerberus/orm"
	"github.com/cerberus-vault/cerberus/x"
)

// RegisterRoutes will instantiate and register all handlers in this
// package. Every handler except deposit is guarded, so only a current
// owner can reach it.
func RegisterRoutes(r cerberus.Registry, auth x.Authenticator, registry *OwnerRegistry, ledger *TransactionLedger, funds Funds) {
	guarded := app.ChainDecorators(NewGuard(auth, registry))

	r.Handle(pathAddOwnerMsg, guarded.WithHandler(&AddOwnerHandler{registry: registry}))
	r.Handle(pathRemoveOwnerMsg, guarded.WithHandler(&RemoveOwnerHandler{registry: registry}))
	r.Handle(pathSwapOwnerMsg, guarded.WithHandler(&SwapOwnerHandler{registry: registry}))
	r.Handle(pathChangeThresholdMsg, guarded.WithHandler(&ChangeThresholdHandler{registry: registry}))
	r.Handle(pathSubmitMsg, guarded.WithHandler(&SubmitHandler{ledger: ledger}))
	r.Handle(pathSubmitAndConfirmMsg, guarded.WithHandler(&SubmitHandler{ledger: ledger, confirm: true}))
	r.Handle(pathConfirmMsg, guarded.WithHandler(&ConfirmHandler{ledger: ledger}))
	r.Handle(pathRevokeMsg, guarded.WithHandler(&RevokeHandler{ledger: ledger}))
	r.Handle(pathExecuteMsg, guarded.WithHandler(&ExecuteHandler{registry: registry, ledger: ledger}))
	r.Handle(pathConfirmAndExecuteMsg, guarded.WithHandler(&ExecuteHandler{registry: registry, ledger: ledger, confirm: true}))
	r.Handle(pathDepositMsg, &DepositHandler{auth: auth, funds: funds})
}

type AddOwnerHandler struct {
	registry *OwnerRegistry
}

var _ cerberus.Handler = (*AddOwnerHandler)(nil)

func (h *AddOwnerHandler) Deliver(ctx cerberus.Context, db cerberus.KVStore, tx cerberus.Tx) (*cerberus.DeliverResult, error) {
	var msg AddOwnerMsg
	if err := cerberus.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := h.registry.AddOwner(db, msg.Owner); err != nil {
		return nil, err
	}
	return &cerberus.DeliverResult{
		Events: []cerberus.Event{AddOwner{Owner: msg.Owner}},
	}, nil
}

type RemoveOwnerHandler struct {
	registry *OwnerRegistry
}

var _ cerberus.Handler = (*RemoveOwnerHandler)(nil)

func (h *RemoveOwnerHandler) Deliver(ctx cerberus.Context, db cerberus.KVStore, tx cerberus.Tx) (*cerberus.DeliverResult, error) {
	var msg RemoveOwnerMsg
	if err := cerberus.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := h.registry.RemoveOwner(db, msg.Owner); err != nil {
		return nil, err
	}
	return &cerberus.DeliverResult{
		Events: []cerberus.Event{RemoveOwner{Owner: msg.Owner}},
	}, nil
}

type SwapOwnerHandler struct {
	registry *OwnerRegistry
}

var _ cerberus.Handler = (*SwapOwnerHandler)(nil)

func (h *SwapOwnerHandler) Deliver(ctx cerberus.Context, db cerberus.KVStore, tx cerberus.Tx) (*cerberus.DeliverResult, error) {
	var msg SwapOwnerMsg
	if err := cerberus.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := h.registry.SwapOwner(db, msg.OldOwner, msg.NewOwner); err != nil {
		return nil, err
	}
	return &cerberus.DeliverResult{
		Events: []cerberus.Event{
			AddOwner{Owner: msg.NewOwner},
			RemoveOwner{Owner: msg.OldOwner},
		},
	}, nil
}

type ChangeThresholdHandler struct {
	registry *OwnerRegistry
}

var _ cerberus.Handler = (*ChangeThresholdHandler)(nil)

func (h *ChangeThresholdHandler) Deliver(ctx cerberus.Context, db cerberus.KVStore, tx cerberus.Tx) (*cerberus.DeliverResult, error) {
	var msg ChangeThresholdMsg
	if err := cerberus.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := h.registry.ChangeThreshold(db, msg.Threshold); err != nil {
		return nil, err
	}
	return &cerberus.DeliverResult{
		Events: []cerberus.Event{ChangeThreshold{Threshold: msg.Threshold}},
	}, nil
}

// SubmitHandler handles both submit messages. When confirm is set, the
// new transaction is confirmed by the caller as well.
type SubmitHandler struct {
	ledger  *TransactionLedger
	confirm bool
}

var _ cerberus.Handler = (*SubmitHandler)(nil)

func (h *SubmitHandler) Deliver(ctx cerberus.Context, db cerberus.KVStore, tx cerberus.Tx) (*cerberus.DeliverResult, error) {
	action, err := h.validate(tx)
	if err != nil {
		return nil, err
	}
	id, err := h.ledger.Submit(db, action.Target, action.Value, action.Data)
	if err != nil {
		return nil, err
	}
	res := &cerberus.DeliverResult{
		Data: orm.EncodeSequence(id),
		Events: []cerberus.Event{SubmitTransaction{
			ID:     id,
			Target: action.Target,
			Value:  action.Value,
			Data:   action.Data,
		}},
	}
	if !h.confirm {
		return res, nil
	}

	owner, err := currentOwner(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.ledger.Confirm(db, id, owner); err != nil {
		return nil, err
	}
	res.Events = append(res.Events, Confirmation{ID: id, Owner: owner})
	return res, nil
}

func (h *SubmitHandler) validate(tx cerberus.Tx) (*Action, error) {
	if h.confirm {
		var msg SubmitAndConfirmMsg
		if err := cerberus.LoadMsg(tx, &msg); err != nil {
			return nil, errors.Wrap(err, "load msg")
		}
		return &Action{Target: msg.Target, Value: msg.Value, Data: msg.Data}, nil
	}
	var msg SubmitMsg
	if err := cerberus.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &Action{Target: msg.Target, Value: msg.Value, Data: msg.Data}, nil
}

type ConfirmHandler struct {
	ledger *TransactionLedger
}

var _ cerberus.Handler = (*ConfirmHandler)(nil)

func (h *ConfirmHandler) Deliver(ctx cerberus.Context, db cerberus.KVStore, tx cerberus.Tx) (*cerberus.DeliverResult, error) {
	var msg ConfirmMsg
	if err := cerberus.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	owner, err := currentOwner(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.ledger.Confirm(db, msg.TransactionID, owner); err != nil {
		return nil, err
	}
	return &cerberus.DeliverResult{
		Events: []cerberus.Event{Confirmation{ID: msg.TransactionID, Owner: owner}},
	}, nil
}

type RevokeHandler struct {
	ledger *TransactionLedger
}

var _ cerberus.Handler = (*RevokeHandler)(nil)

func (h *RevokeHandler) Deliver(ctx cerberus.Context, db cerberus.KVStore, tx cerberus.Tx) (*cerberus.DeliverResult, error) {
	var msg RevokeMsg
	if err := cerberus.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	owner, err := currentOwner(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.ledger.Revoke(db, msg.TransactionID, owner); err != nil {
		return nil, err
	}
	return &cerberus.DeliverResult{
		Events: []cerberus.Event{Revocation{ID: msg.TransactionID, Owner: owner}},
	}, nil
}

// ExecuteHandler handles both execute messages. When confirm is set, the
// caller confirms the transaction first and the execution is attempted
// only if that confirmation completed the quorum.
type ExecuteHandler struct {
	registry *OwnerRegistry
	ledger   *TransactionLedger
	confirm  bool
}

var _ cerberus.Handler = (*ExecuteHandler)(nil)

func (h *ExecuteHandler) Deliver(ctx cerberus.Context, db cerberus.KVStore, tx cerberus.Tx) (*cerberus.DeliverResult, error) {
	id, err := h.validate(tx)
	if err != nil {
		return nil, err
	}

	res := &cerberus.DeliverResult{}
	if h.confirm {
		owner, err := currentOwner(ctx)
		if err != nil {
			return nil, err
		}
		if err := h.ledger.Confirm(db, id, owner); err != nil {
			return nil, err
		}
		res.Events = append(res.Events, Confirmation{ID: id, Owner: owner})

		quorum, err := h.ledger.HasQuorum(db, id)
		if err != nil {
			return nil, err
		}
		if !quorum {
			res.Log = "confirmed, waiting for quorum"
			return res, nil
		}
	}

	if stale, err := staleConfirmations(db, h.registry, h.ledger, id); err != nil {
		return nil, err
	} else if stale > 0 {
		cerberus.GetLogger(ctx).Info("executing with confirmations of removed owners",
			"transaction", id, "stale", stale)
	}

	executed, err := h.ledger.Execute(ctx, db, id)
	if err != nil {
		return nil, err
	}
	res.Log = "executed"
	res.Events = append(res.Events, Execution{
		ID:     id,
		Target: executed.Target,
		Value:  executed.Value,
		Data:   executed.Data,
	})
	return res, nil
}

func (h *ExecuteHandler) validate(tx cerberus.Tx) (uint64, error) {
	if h.confirm {
		var msg ConfirmAndExecuteMsg
		if err := cerberus.LoadMsg(tx, &msg); err != nil {
			return 0, errors.Wrap(err, "load msg")
		}
		return msg.TransactionID, nil
	}
	var msg ExecuteMsg
	if err := cerberus.LoadMsg(tx, &msg); err != nil {
		return 0, errors.Wrap(err, "load msg")
	}
	return msg.TransactionID, nil
}

// DepositHandler moves value of the caller into the vault. It is not
// guarded, anyone can deposit.
type DepositHandler struct {
	auth  x.Authenticator
	funds Funds
}

var _ cerberus.Handler = (*DepositHandler)(nil)

func (h *DepositHandler) Deliver(ctx cerberus.Context, db cerberus.KVStore, tx cerberus.Tx) (*cerberus.DeliverResult, error) {
	var msg DepositMsg
	if err := cerberus.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	sender := x.MainSigner(ctx, h.auth)
	if sender == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing sender")
	}
	vaultID, ok := cerberus.GetVaultID(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "vault id not set")
	}
	if h.funds == nil {
		return nil, errors.Wrap(ErrTransferFailed, "vault has no funds")
	}
	if err := h.funds.Transfer(ctx, sender, Address(vaultID), msg.Value); err != nil {
		return nil, errors.Wrapf(ErrTransferFailed, "deposit: %s", err)
	}
	return &cerberus.DeliverResult{
		Events: []cerberus.Event{Deposit{Sender: sender, Value: msg.Value}},
	}, nil
}

// staleConfirmations counts confirmations of given transaction made by
// principals that are no longer owners.
func staleConfirmations(db cerberus.ReadOnlyKVStore, registry *OwnerRegistry, ledger *TransactionLedger, id uint64) (int, error) {
	set, err := registry.Load(db)
	if err != nil {
		return 0, err
	}
	confirmers, err := ledger.Confirmers(db, id)
	if err != nil {
		return 0, err
	}
	var stale int
	for _, c := range confirmers {
		if set.Index(c) < 0 {
			stale++
		}
	}
	return stale, nil
}
