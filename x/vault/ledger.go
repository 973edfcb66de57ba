package vault

import (
	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/cerberus-vault/cerberus/orm"
)

// TransactionLedger keeps the transactions of a vault and their
// confirmations.
//
// Just like the registry, the ledger does not check who is calling.
type TransactionLedger struct {
	registry *OwnerRegistry
	executor Executor
	txs      orm.ModelBucket
	confirms orm.Bucket
	ids      orm.Sequence
}

// NewTransactionLedger returns a ledger reading the threshold from given
// registry and performing approved actions with given executor.
func NewTransactionLedger(registry *OwnerRegistry, executor Executor) *TransactionLedger {
	txs := NewTransactionBucket()
	return &TransactionLedger{
		registry: registry,
		executor: executor,
		txs:      txs,
		confirms: orm.NewBucket(confirmsBucket),
		ids:      txs.Sequence("id"),
	}
}

// Nonce returns the number of transactions ever submitted, which is also
// the id of the most recent one.
func (l *TransactionLedger) Nonce(db cerberus.ReadOnlyKVStore) (uint64, error) {
	return l.ids.Latest(db)
}

// Transaction returns the transaction with given id. Ids that were never
// assigned fail with ErrInvalidNonce.
func (l *TransactionLedger) Transaction(db cerberus.ReadOnlyKVStore, id uint64) (*Transaction, error) {
	nonce, err := l.Nonce(db)
	if err != nil {
		return nil, err
	}
	if id == 0 || id > nonce {
		return nil, errors.Wrapf(ErrInvalidNonce, "Invalid nonce %d", id)
	}
	var tx Transaction
	if err := l.txs.One(db, orm.EncodeSequence(id), &tx); err != nil {
		return nil, errors.Wrapf(err, "transaction %d", id)
	}
	return &tx, nil
}

// Submit stores a new pending transaction and returns its id.
func (l *TransactionLedger) Submit(db cerberus.KVStore, target cerberus.Address, value uint64, data []byte) (uint64, error) {
	if err := validatePrincipal(target); err != nil {
		return 0, errors.Wrap(err, "target cannot be zero address")
	}
	id, err := l.ids.NextInt(db)
	if err != nil {
		return 0, err
	}
	tx := &Transaction{
		Target: target.Clone(),
		Value:  value,
		Data:   append([]byte(nil), data...),
	}
	if err := l.txs.Put(db, orm.EncodeSequence(id), tx); err != nil {
		return 0, err
	}
	return id, nil
}

// Confirm records the confirmation of owner.
func (l *TransactionLedger) Confirm(db cerberus.KVStore, id uint64, owner cerberus.Address) error {
	tx, err := l.pending(db, id)
	if err != nil {
		return err
	}
	confirmed, err := l.IsOwnerConfirmed(db, id, owner)
	if err != nil {
		return err
	}
	if confirmed {
		return errors.Wrap(ErrAlreadyConfirmed, "Transaction already confirmed")
	}
	if err := db.Set(l.confirms.DBKey(confirmationKey(id, owner)), []byte{1}); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	tx.Confirmations++
	return l.txs.Put(db, orm.EncodeSequence(id), tx)
}

// Revoke removes the confirmation of owner.
func (l *TransactionLedger) Revoke(db cerberus.KVStore, id uint64, owner cerberus.Address) error {
	tx, err := l.pending(db, id)
	if err != nil {
		return err
	}
	confirmed, err := l.IsOwnerConfirmed(db, id, owner)
	if err != nil {
		return err
	}
	if !confirmed {
		return errors.Wrap(ErrNotConfirmed, "Transaction not confirmed")
	}
	if err := db.Delete(l.confirms.DBKey(confirmationKey(id, owner))); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	tx.Confirmations--
	return l.txs.Put(db, orm.EncodeSequence(id), tx)
}

// IsOwnerConfirmed returns true if owner confirmed given transaction and
// did not revoke since.
func (l *TransactionLedger) IsOwnerConfirmed(db cerberus.ReadOnlyKVStore, id uint64, owner cerberus.Address) (bool, error) {
	ok, err := db.Has(l.confirms.DBKey(confirmationKey(id, owner)))
	if err != nil {
		return false, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return ok, nil
}

// ConfirmationCount returns the number of confirmations of given
// transaction, including those of principals that are no longer owners.
func (l *TransactionLedger) ConfirmationCount(db cerberus.ReadOnlyKVStore, id uint64) (uint32, error) {
	tx, err := l.Transaction(db, id)
	if err != nil {
		return 0, err
	}
	return tx.Confirmations, nil
}

// Confirmers returns every principal that confirmed given transaction, in
// the byte order of their addresses.
func (l *TransactionLedger) Confirmers(db cerberus.ReadOnlyKVStore, id uint64) ([]cerberus.Address, error) {
	if _, err := l.Transaction(db, id); err != nil {
		return nil, err
	}
	it, err := l.confirms.Scan(db, orm.EncodeSequence(id), false)
	if err != nil {
		return nil, err
	}
	defer it.Release()

	var res []cerberus.Address
	for {
		key, _, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		res = append(res, cerberus.Address(key[8:]).Clone())
	}
}

// HasQuorum returns true if the transaction has at least as many
// confirmations as the current threshold requires.
func (l *TransactionLedger) HasQuorum(db cerberus.ReadOnlyKVStore, id uint64) (bool, error) {
	tx, err := l.Transaction(db, id)
	if err != nil {
		return false, err
	}
	threshold, err := l.registry.Threshold(db)
	if err != nil {
		return false, err
	}
	return tx.Confirmations >= threshold, nil
}

// Execute marks the transaction as executed and performs its action on
// behalf of the vault the context belongs to. Nothing must be written if
// this method fails, so the caller discards all changes made to db.
func (l *TransactionLedger) Execute(ctx cerberus.Context, db cerberus.KVStore, id uint64) (*Transaction, error) {
	tx, err := l.pending(db, id)
	if err != nil {
		return nil, err
	}
	threshold, err := l.registry.Threshold(db)
	if err != nil {
		return nil, err
	}
	if tx.Confirmations < threshold {
		return nil, errors.Wrapf(ErrInsufficientConfirmations, "Not enough confirmations: %d of %d", tx.Confirmations, threshold)
	}

	vaultID, ok := cerberus.GetVaultID(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "vault id not set")
	}

	tx.Executed = true
	if err := l.txs.Put(db, orm.EncodeSequence(id), tx); err != nil {
		return nil, err
	}

	action := Action{
		Source: Address(vaultID),
		Target: tx.Target,
		Value:  tx.Value,
		Data:   tx.Data,
	}
	if err := l.executor.Execute(ctx, action); err != nil {
		return nil, errors.Wrapf(ErrTransferFailed, "Transaction failed: %s", err)
	}
	return tx, nil
}

// pending returns the transaction if it exists and was not executed yet.
func (l *TransactionLedger) pending(db cerberus.ReadOnlyKVStore, id uint64) (*Transaction, error) {
	tx, err := l.Transaction(db, id)
	if err != nil {
		return nil, err
	}
	if tx.Executed {
		return nil, errors.Wrap(ErrAlreadyExecuted, "Transaction already executed")
	}
	return tx, nil
}
