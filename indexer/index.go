package indexer

import (
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/cerberus-vault/cerberus/x/vault"

	_ "modernc.org/sqlite"
)

// Index is the SQLite backed read model of vaults.
type Index struct {
	db *sql.DB
}

var _ cerberus.EventSink = (*Index)(nil)

// Open returns the index stored in the file at path, creating it if
// needed.
func Open(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "create index directory: %s", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open index: %s", err)
	}
	// A single connection serializes writers and keeps the pragmas
	// applied to every statement.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA busy_timeout = 5000`,
		`PRAGMA foreign_keys = ON`,
		schema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, errors.Wrapf(errors.ErrDatabase, "initialize index: %s", err)
		}
	}
	return &Index{db: db}, nil
}

// Close releases the database.
func (ix *Index) Close() error {
	if ix == nil || ix.db == nil {
		return nil
	}
	return ix.db.Close()
}

// Wallet is a named vault as seen by the index.
type Wallet struct {
	ID        int64              `json:"id"`
	VaultID   string             `json:"vault_id"`
	Address   cerberus.Address   `json:"address"`
	Name      string             `json:"name"`
	Network   string             `json:"network"`
	Threshold uint32             `json:"threshold"`
	Owners    []cerberus.Address `json:"owners"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Transaction is a vault transaction as seen by the index.
type Transaction struct {
	VaultID       string             `json:"vault_id"`
	ID            uint64             `json:"id"`
	Target        cerberus.Address   `json:"target"`
	Value         uint64             `json:"value"`
	Data          []byte             `json:"data,omitempty"`
	Executed      bool               `json:"executed"`
	Confirmations uint32             `json:"confirmations"`
	Confirmers    []cerberus.Address `json:"confirmers"`
	SubmittedAt   time.Time          `json:"submitted_at"`
}

// Deposit is value sent into a vault.
type Deposit struct {
	Sender cerberus.Address `json:"sender"`
	Value  uint64           `json:"value"`
	Time   time.Time        `json:"time"`
}

// RegisterWallet names the vault with given id and records its initial
// owners and threshold. A vault can be registered only once.
func (ix *Index) RegisterWallet(ctx cerberus.Context, name, network, vaultID string, owners []cerberus.Address, threshold uint32) (*Wallet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Field("Name", errors.ErrEmpty, "required")
	}
	network = strings.TrimSpace(network)
	if network == "" {
		return nil, errors.Field("Network", errors.ErrEmpty, "required")
	}
	if !cerberus.IsValidVaultID(vaultID) {
		return nil, errors.Field("VaultID", errors.ErrInput, "invalid vault id %q", vaultID)
	}
	now := timestamp(ctx)

	var id int64
	err := ix.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM wallets WHERE vault_id = ?`, vaultID).Scan(&exists)
		if err != nil {
			return err
		}
		if exists != 0 {
			return errors.Wrapf(errors.ErrDuplicate, "vault %q already registered", vaultID)
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO wallets (vault_id, address, name, network, threshold, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			vaultID, vault.Address(vaultID).String(), name, network, threshold, now, now)
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		for _, o := range owners {
			if err := addOwner(ctx, tx, id, o); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ix.Wallet(ctx, id)
}

// Wallet returns the wallet with given id.
func (ix *Index) Wallet(ctx cerberus.Context, id int64) (*Wallet, error) {
	row := ix.db.QueryRowContext(ctx,
		`SELECT id, vault_id, address, name, network, threshold, created_at, updated_at FROM wallets WHERE id = ?`, id)
	w, err := scanWallet(row)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "Wallet not found: %d", id)
	}
	if err != nil {
		return nil, dbErr(err)
	}
	if w.Owners, err = ix.Owners(ctx, w.VaultID); err != nil {
		return nil, err
	}
	return w, nil
}

// WalletsByOwner returns all wallets that given principal currently owns.
func (ix *Index) WalletsByOwner(ctx cerberus.Context, owner cerberus.Address) ([]*Wallet, error) {
	rows, err := ix.db.QueryContext(ctx, `
		SELECT w.id, w.vault_id, w.address, w.name, w.network, w.threshold, w.created_at, w.updated_at
		FROM wallets w
		JOIN wallet_addresses wa ON wa.wallet_id = w.id
		JOIN addresses a ON a.id = wa.address_id
		WHERE a.address = ?
		ORDER BY w.id`, owner.String())
	if err != nil {
		return nil, dbErr(err)
	}
	var wallets []*Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			rows.Close()
			return nil, dbErr(err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, dbErr(err)
	}
	rows.Close()

	for _, w := range wallets {
		if w.Owners, err = ix.Owners(ctx, w.VaultID); err != nil {
			return nil, err
		}
	}
	return wallets, nil
}

// VaultByAddress returns the id of the registered vault whose funds are
// held by addr.
func (ix *Index) VaultByAddress(ctx cerberus.Context, addr cerberus.Address) (string, error) {
	var id string
	err := ix.db.QueryRowContext(ctx, `SELECT vault_id FROM wallets WHERE address = ?`, addr.String()).Scan(&id)
	if err == sql.ErrNoRows {
		return "", errors.Wrapf(errors.ErrNotFound, "no vault holds %s", addr)
	}
	if err != nil {
		return "", dbErr(err)
	}
	return id, nil
}

// RenameWallet changes the name of a wallet.
func (ix *Index) RenameWallet(ctx cerberus.Context, id int64, name string) (*Wallet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Field("Name", errors.ErrEmpty, "required")
	}
	res, err := ix.db.ExecContext(ctx,
		`UPDATE wallets SET name = ?, updated_at = ? WHERE id = ?`, name, timestamp(ctx), id)
	if err != nil {
		return nil, dbErr(err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, dbErr(err)
	} else if n == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "Wallet not found: %d", id)
	}
	return ix.Wallet(ctx, id)
}

// Owners returns the owners of given vault in the order they were added.
func (ix *Index) Owners(ctx cerberus.Context, vaultID string) ([]cerberus.Address, error) {
	rows, err := ix.db.QueryContext(ctx, `
		SELECT a.address
		FROM wallet_addresses wa
		JOIN wallets w ON w.id = wa.wallet_id
		JOIN addresses a ON a.id = wa.address_id
		WHERE w.vault_id = ?
		ORDER BY wa.position`, vaultID)
	if err != nil {
		return nil, dbErr(err)
	}
	defer rows.Close()
	return scanAddresses(rows)
}

// Transactions returns all transactions of given vault ordered by id.
func (ix *Index) Transactions(ctx cerberus.Context, vaultID string) ([]*Transaction, error) {
	rows, err := ix.db.QueryContext(ctx, `
		SELECT id, target, value, data, executed, confirmations, submitted_at
		FROM transactions WHERE vault_id = ? ORDER BY id`, vaultID)
	if err != nil {
		return nil, dbErr(err)
	}
	var txs []*Transaction
	for rows.Next() {
		var (
			t         = Transaction{VaultID: vaultID}
			target    string
			value     string
			executed  int
			submitted string
		)
		if err := rows.Scan(&t.ID, &target, &value, &t.Data, &executed, &t.Confirmations, &submitted); err != nil {
			rows.Close()
			return nil, dbErr(err)
		}
		if t.Target, err = cerberus.ParseAddress(target); err != nil {
			rows.Close()
			return nil, err
		}
		if t.Value, err = strconv.ParseUint(value, 10, 64); err != nil {
			rows.Close()
			return nil, dbErr(err)
		}
		t.Executed = executed != 0
		t.SubmittedAt = parseTime(submitted)
		txs = append(txs, &t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, dbErr(err)
	}
	rows.Close()

	for _, t := range txs {
		if t.Confirmers, err = ix.confirmers(ctx, vaultID, t.ID); err != nil {
			return nil, err
		}
	}
	return txs, nil
}

// Deposits returns all deposits into given vault in the order they were
// made.
func (ix *Index) Deposits(ctx cerberus.Context, vaultID string) ([]*Deposit, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT sender, value, deposited_at FROM deposits WHERE vault_id = ? ORDER BY id`, vaultID)
	if err != nil {
		return nil, dbErr(err)
	}
	defer rows.Close()

	var deposits []*Deposit
	for rows.Next() {
		var sender, value, at string
		if err := rows.Scan(&sender, &value, &at); err != nil {
			return nil, dbErr(err)
		}
		d := &Deposit{Time: parseTime(at)}
		if d.Sender, err = cerberus.ParseAddress(sender); err != nil {
			return nil, err
		}
		if d.Value, err = strconv.ParseUint(value, 10, 64); err != nil {
			return nil, dbErr(err)
		}
		deposits = append(deposits, d)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr(err)
	}
	return deposits, nil
}

// Publish applies the events of a single vault request. Either all of
// them are applied or none.
func (ix *Index) Publish(ctx cerberus.Context, vaultID string, events []cerberus.Event) error {
	now := timestamp(ctx)
	return ix.inTx(ctx, func(tx *sql.Tx) error {
		walletID, err := walletOf(ctx, tx, vaultID)
		if err != nil {
			return err
		}
		for i := 0; i < len(events); i++ {
			// An owner swap is reported as an addition directly followed
			// by a removal. The new owner takes the position of the old one.
			if add, rm, ok := swapOf(events, i); ok {
				if walletID != 0 {
					if err := swapOwner(ctx, tx, walletID, rm.Owner, add.Owner); err != nil {
						return errors.Wrapf(dbErr(err), "event %d swap owner", i)
					}
				}
				i++
				continue
			}
			if err := apply(ctx, tx, vaultID, walletID, now, events[i]); err != nil {
				return errors.Wrapf(err, "event %d %s", i, events[i].EventName())
			}
		}
		return nil
	})
}

func swapOf(events []cerberus.Event, i int) (vault.AddOwner, vault.RemoveOwner, bool) {
	if i+1 >= len(events) {
		return vault.AddOwner{}, vault.RemoveOwner{}, false
	}
	add, ok := events[i].(vault.AddOwner)
	if !ok {
		return vault.AddOwner{}, vault.RemoveOwner{}, false
	}
	rm, ok := events[i+1].(vault.RemoveOwner)
	return add, rm, ok
}

func apply(ctx cerberus.Context, tx *sql.Tx, vaultID string, walletID int64, now string, e cerberus.Event) error {
	var err error
	switch e := e.(type) {
	case vault.AddOwner:
		if walletID != 0 {
			err = addOwner(ctx, tx, walletID, e.Owner)
		}
	case vault.RemoveOwner:
		if walletID != 0 {
			_, err = tx.ExecContext(ctx, `
				DELETE FROM wallet_addresses
				WHERE wallet_id = ? AND address_id = (SELECT id FROM addresses WHERE address = ?)`,
				walletID, e.Owner.String())
		}
	case vault.ChangeThreshold:
		_, err = tx.ExecContext(ctx,
			`UPDATE wallets SET threshold = ?, updated_at = ? WHERE vault_id = ?`, e.Threshold, now, vaultID)
	case vault.SubmitTransaction:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transactions (vault_id, id, target, value, data, submitted_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			vaultID, int64(e.ID), e.Target.String(), strconv.FormatUint(e.Value, 10), e.Data, now)
	case vault.Confirmation:
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO confirmations (vault_id, tx_id, owner, confirmed_at) VALUES (?, ?, ?, ?)`,
			vaultID, int64(e.ID), e.Owner.String(), now); err == nil {
			_, err = tx.ExecContext(ctx,
				`UPDATE transactions SET confirmations = confirmations + 1 WHERE vault_id = ? AND id = ?`,
				vaultID, int64(e.ID))
		}
	case vault.Revocation:
		if _, err = tx.ExecContext(ctx,
			`DELETE FROM confirmations WHERE vault_id = ? AND tx_id = ? AND owner = ?`,
			vaultID, int64(e.ID), e.Owner.String()); err == nil {
			_, err = tx.ExecContext(ctx,
				`UPDATE transactions SET confirmations = confirmations - 1 WHERE vault_id = ? AND id = ?`,
				vaultID, int64(e.ID))
		}
	case vault.Execution:
		_, err = tx.ExecContext(ctx,
			`UPDATE transactions SET executed = 1, executed_at = ? WHERE vault_id = ? AND id = ?`,
			now, vaultID, int64(e.ID))
	case vault.Deposit:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO deposits (vault_id, sender, value, deposited_at) VALUES (?, ?, ?, ?)`,
			vaultID, e.Sender.String(), strconv.FormatUint(e.Value, 10), now)
	}
	return dbErr(err)
}

func (ix *Index) confirmers(ctx cerberus.Context, vaultID string, id uint64) ([]cerberus.Address, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT owner FROM confirmations WHERE vault_id = ? AND tx_id = ? ORDER BY confirmed_at, owner`,
		vaultID, int64(id))
	if err != nil {
		return nil, dbErr(err)
	}
	defer rows.Close()
	return scanAddresses(rows)
}

// inTx runs fn in a database transaction that is committed only if fn
// succeeds.
func (ix *Index) inTx(ctx cerberus.Context, fn func(*sql.Tx) error) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return dbErr(err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return dbErr(err)
	}
	return dbErr(tx.Commit())
}

func walletOf(ctx cerberus.Context, tx *sql.Tx, vaultID string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM wallets WHERE vault_id = ?`, vaultID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return id, err
}

func addOwner(ctx cerberus.Context, tx *sql.Tx, walletID int64, owner cerberus.Address) error {
	addr := owner.String()
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO addresses (address) VALUES (?)`, addr); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO wallet_addresses (wallet_id, address_id, position)
		SELECT ?, id, (SELECT COALESCE(MAX(position), 0) + 1 FROM wallet_addresses WHERE wallet_id = ?)
		FROM addresses WHERE address = ?`,
		walletID, walletID, addr)
	return err
}

// swapOwner replaces oldOwner with newOwner, keeping the position.
func swapOwner(ctx cerberus.Context, tx *sql.Tx, walletID int64, oldOwner, newOwner cerberus.Address) error {
	addr := newOwner.String()
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO addresses (address) VALUES (?)`, addr); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE wallet_addresses
		SET address_id = (SELECT id FROM addresses WHERE address = ?)
		WHERE wallet_id = ? AND address_id = (SELECT id FROM addresses WHERE address = ?)`,
		addr, walletID, oldOwner.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return addOwner(ctx, tx, walletID, newOwner)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanWallet(row scanner) (*Wallet, error) {
	var (
		w                Wallet
		addr             string
		created, updated string
	)
	if err := row.Scan(&w.ID, &w.VaultID, &addr, &w.Name, &w.Network, &w.Threshold, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if w.Address, err = cerberus.ParseAddress(addr); err != nil {
		return nil, err
	}
	w.CreatedAt = parseTime(created)
	w.UpdatedAt = parseTime(updated)
	return &w, nil
}

func scanAddresses(rows *sql.Rows) ([]cerberus.Address, error) {
	var out []cerberus.Address
	for rows.Next() {
		var enc string
		if err := rows.Scan(&enc); err != nil {
			return nil, dbErr(err)
		}
		addr, err := cerberus.ParseAddress(enc)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr(err)
	}
	return out, nil
}

// dbErr wraps driver errors, errors of this module pass unchanged.
func dbErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Code(err) != 1 {
		return err
	}
	return errors.Wrap(errors.ErrDatabase, err.Error())
}

func timestamp(ctx cerberus.Context) string {
	now, ok := cerberus.GetTime(ctx)
	if !ok {
		now = time.Now().UTC()
	}
	return now.Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
