package vault

import (
	"sync"
	"time"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/app"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/cerberus-vault/cerberus/orm"
	"github.com/cerberus-vault/cerberus/x"
	"github.com/cerberus-vault/cerberus/x/sigs"
	"github.com/cerberus-vault/cerberus/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

// Vault is a single multi-owner vault. All requests are serialized by one
// lock, so each of them observes the state left by the previous one. A
// request either commits all of its writes and publishes all of its
// events, or leaves no trace at all.
type Vault struct {
	mu sync.Mutex

	id       string
	db       cerberus.CacheableKVStore
	registry *OwnerRegistry
	ledger   *TransactionLedger
	handler  cerberus.Handler

	auth     x.Authenticator
	funds    Funds
	executor Executor
	sink     cerberus.EventSink
	logger   log.Logger
}

// Option configures a Vault.
type Option func(*Vault)

// WithFunds sets where the vault value is kept. Unless WithExecutor is
// given too, approved transactions move value within these funds.
func WithFunds(f Funds) Option {
	return func(v *Vault) {
		v.funds = f
	}
}

// WithExecutor sets the executor performing approved transactions.
func WithExecutor(e Executor) Option {
	return func(v *Vault) {
		v.executor = e
	}
}

// WithEventSink sets where the events of committed requests go.
func WithEventSink(s cerberus.EventSink) Option {
	return func(v *Vault) {
		v.sink = s
	}
}

// WithLogger sets the logger used when the request context carries none.
func WithLogger(l log.Logger) Option {
	return func(v *Vault) {
		v.logger = l
	}
}

// WithAuthenticator replaces the way callers are identified. By default
// both request signatures and callers set with x.WithCaller are accepted.
func WithAuthenticator(a x.Authenticator) Option {
	return func(v *Vault) {
		v.auth = a
	}
}

// New returns the vault with given id, keeping its state in db. The owner
// set must already exist in db, use Create for a new vault.
func New(id string, db cerberus.CacheableKVStore, opts ...Option) (*Vault, error) {
	if !cerberus.IsValidVaultID(id) {
		return nil, errors.Wrapf(errors.ErrInput, "invalid vault id %q", id)
	}
	v := &Vault{
		id:   id,
		db:   db,
		auth: x.ChainAuth(sigs.Authenticate{}, x.CallerAuth{}),
		sink: cerberus.DiscardEvents,
	}
	for _, fn := range opts {
		fn(v)
	}
	if v.executor == nil {
		if v.funds != nil {
			v.executor = NewTransferExecutor(v.funds)
		} else {
			v.executor = noFunds{}
		}
	}

	v.registry = NewOwnerRegistry()
	v.ledger = NewTransactionLedger(v.registry, v.executor)

	r := app.NewRouter()
	RegisterRoutes(r, v.auth, v.registry, v.ledger, v.funds)
	v.handler = app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewSavepoint().OnDeliver(),
		sigs.NewDecorator(),
	).WithHandler(r)
	return v, nil
}

// Create initializes a new vault with given owners and threshold.
func Create(id string, db cerberus.CacheableKVStore, owners []cerberus.Address, threshold uint32, opts ...Option) (*Vault, error) {
	v, err := New(id, db, opts...)
	if err != nil {
		return nil, err
	}
	cache := db.CacheWrap()
	if err := v.registry.Create(cache, owners, threshold); err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return v, nil
}

// ID returns the vault identifier.
func (v *Vault) ID() string {
	return v.id
}

// Address returns the principal holding the vault funds.
func (v *Vault) Address() cerberus.Address {
	return Address(v.id)
}

// Deliver processes a single request. The request is authenticated with
// the vault authenticator, so the caller must be present in the context
// or proven by the request signatures.
func (v *Vault) Deliver(ctx cerberus.Context, tx cerberus.Tx) (*cerberus.DeliverResult, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	ctx, pending := withCredits(v.context(ctx))
	res, err := v.handler.Deliver(ctx, v.db, tx)
	if err != nil {
		// The full error was logged already, callers get only
		// registered errors.
		return nil, errors.Redact(err)
	}
	if len(res.Events) != 0 {
		// The request is committed, so it cannot be rejected anymore.
		if err := v.sink.Publish(ctx, v.id, res.Events); err != nil {
			cerberus.GetLogger(ctx).Error("cannot publish events", "err", err, "count", len(res.Events))
		}
	}
	pending.report(ctx)
	return res, nil
}

// received publishes a deposit into this vault made by a request of
// another vault. It does not take the vault lock, the sink must be safe
// for concurrent use.
func (v *Vault) received(ctx cerberus.Context, sender cerberus.Address, value uint64) {
	ctx = v.context(ctx)
	events := []cerberus.Event{Deposit{Sender: sender, Value: value}}
	if err := v.sink.Publish(ctx, v.id, events); err != nil {
		cerberus.GetLogger(ctx).Error("cannot publish events", "err", err, "count", len(events))
	}
}

// DeliverSigned processes a request authenticated by its signatures only.
func (v *Vault) DeliverSigned(ctx cerberus.Context, tx *sigs.Tx) (*cerberus.DeliverResult, error) {
	if len(tx.GetSignatures()) == 0 {
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return v.Deliver(ctx, tx)
}

func (v *Vault) context(ctx cerberus.Context) cerberus.Context {
	if v.logger != nil && cerberus.GetLogger(ctx) == cerberus.DefaultLogger {
		ctx = cerberus.WithLogger(ctx, v.logger)
	}
	ctx = cerberus.WithVaultID(ctx, v.id)
	ctx = cerberus.WithLogInfo(ctx, "vault", v.id)
	if _, ok := cerberus.GetTime(ctx); !ok {
		ctx = cerberus.WithTime(ctx, time.Now())
	}
	return ctx
}

func (v *Vault) deliverAs(ctx cerberus.Context, caller cerberus.Address, msg cerberus.Msg) (*cerberus.DeliverResult, error) {
	return v.Deliver(x.WithCaller(ctx, caller), cerberus.MsgTx{Msg: msg})
}

// AddOwner adds a new owner on behalf of caller.
func (v *Vault) AddOwner(ctx cerberus.Context, caller, owner cerberus.Address) error {
	_, err := v.deliverAs(ctx, caller, &AddOwnerMsg{Owner: owner})
	return err
}

// RemoveOwner removes an owner on behalf of caller.
func (v *Vault) RemoveOwner(ctx cerberus.Context, caller, owner cerberus.Address) error {
	_, err := v.deliverAs(ctx, caller, &RemoveOwnerMsg{Owner: owner})
	return err
}

// SwapOwner replaces oldOwner with newOwner on behalf of caller.
func (v *Vault) SwapOwner(ctx cerberus.Context, caller, oldOwner, newOwner cerberus.Address) error {
	_, err := v.deliverAs(ctx, caller, &SwapOwnerMsg{OldOwner: oldOwner, NewOwner: newOwner})
	return err
}

// ChangeThreshold sets a new threshold on behalf of caller.
func (v *Vault) ChangeThreshold(ctx cerberus.Context, caller cerberus.Address, threshold uint32) error {
	_, err := v.deliverAs(ctx, caller, &ChangeThresholdMsg{Threshold: threshold})
	return err
}

// Submit records a new transaction and returns its id.
func (v *Vault) Submit(ctx cerberus.Context, caller, target cerberus.Address, value uint64, data []byte) (uint64, error) {
	res, err := v.deliverAs(ctx, caller, &SubmitMsg{Target: target, Value: value, Data: data})
	if err != nil {
		return 0, err
	}
	return orm.DecodeSequence(res.Data), nil
}

// SubmitAndConfirm records a new transaction confirmed by caller and
// returns its id.
func (v *Vault) SubmitAndConfirm(ctx cerberus.Context, caller, target cerberus.Address, value uint64, data []byte) (uint64, error) {
	res, err := v.deliverAs(ctx, caller, &SubmitAndConfirmMsg{Target: target, Value: value, Data: data})
	if err != nil {
		return 0, err
	}
	return orm.DecodeSequence(res.Data), nil
}

// Confirm records the confirmation of caller.
func (v *Vault) Confirm(ctx cerberus.Context, caller cerberus.Address, id uint64) error {
	_, err := v.deliverAs(ctx, caller, &ConfirmMsg{TransactionID: id})
	return err
}

// Revoke withdraws the confirmation of caller.
func (v *Vault) Revoke(ctx cerberus.Context, caller cerberus.Address, id uint64) error {
	_, err := v.deliverAs(ctx, caller, &RevokeMsg{TransactionID: id})
	return err
}

// Execute performs a transaction that reached the threshold.
func (v *Vault) Execute(ctx cerberus.Context, caller cerberus.Address, id uint64) error {
	_, err := v.deliverAs(ctx, caller, &ExecuteMsg{TransactionID: id})
	return err
}

// ConfirmAndExecute confirms a transaction and executes it if that
// confirmation completed the quorum. It returns whether the transaction
// was executed.
func (v *Vault) ConfirmAndExecute(ctx cerberus.Context, caller cerberus.Address, id uint64) (bool, error) {
	res, err := v.deliverAs(ctx, caller, &ConfirmAndExecuteMsg{TransactionID: id})
	if err != nil {
		return false, err
	}
	for _, e := range res.Events {
		if _, ok := e.(Execution); ok {
			return true, nil
		}
	}
	return false, nil
}

// Deposit moves value from sender into the vault.
func (v *Vault) Deposit(ctx cerberus.Context, sender cerberus.Address, value uint64) error {
	_, err := v.deliverAs(ctx, sender, &DepositMsg{Value: value})
	return err
}

// IsOwner returns true if p is a current owner.
func (v *Vault) IsOwner(p cerberus.Address) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.registry.IsOwner(v.db, p)
}

// Owners returns the current owners in the order they were added.
func (v *Vault) Owners() ([]cerberus.Address, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	set, err := v.registry.Load(v.db)
	if err != nil {
		return nil, err
	}
	owners := make([]cerberus.Address, len(set.Owners))
	for i, o := range set.Owners {
		owners[i] = o.Clone()
	}
	return owners, nil
}

// OwnerCount returns the number of current owners.
func (v *Vault) OwnerCount() (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.registry.OwnerCount(v.db)
}

// Threshold returns the number of confirmations required to execute.
func (v *Vault) Threshold() (uint32, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.registry.Threshold(v.db)
}

// Nonce returns the number of transactions ever submitted.
func (v *Vault) Nonce() (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ledger.Nonce(v.db)
}

// Transaction returns the transaction with given id.
func (v *Vault) Transaction(id uint64) (*Transaction, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ledger.Transaction(v.db, id)
}

// IsOwnerConfirmed returns true if p confirmed given transaction.
func (v *Vault) IsOwnerConfirmed(id uint64, p cerberus.Address) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ledger.IsOwnerConfirmed(v.db, id, p)
}

// ConfirmationCount returns the number of confirmations of given
// transaction, including those of removed owners.
func (v *Vault) ConfirmationCount(id uint64) (uint32, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ledger.ConfirmationCount(v.db, id)
}

// StaleConfirmations returns how many confirmations of given transaction
// were made by principals that are no longer owners. They still count
// toward the threshold.
func (v *Vault) StaleConfirmations(id uint64) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, err := v.ledger.Transaction(v.db, id); err != nil {
		return 0, err
	}
	return staleConfirmations(v.db, v.registry, v.ledger, id)
}

// Balance returns the value held by the vault.
func (v *Vault) Balance() (uint64, error) {
	if v.funds == nil {
		return 0, nil
	}
	return v.funds.Balance(v.Address())
}
