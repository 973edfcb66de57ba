package indexer

const schema = `
CREATE TABLE IF NOT EXISTS wallets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	vault_id TEXT NOT NULL UNIQUE,
	address TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	network TEXT NOT NULL,
	threshold INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS addresses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	address TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS wallet_addresses (
	wallet_id INTEGER NOT NULL REFERENCES wallets(id) ON DELETE CASCADE,
	address_id INTEGER NOT NULL REFERENCES addresses(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	PRIMARY KEY (wallet_id, address_id)
);

CREATE TABLE IF NOT EXISTS transactions (
	vault_id TEXT NOT NULL,
	id INTEGER NOT NULL,
	target TEXT NOT NULL,
	value TEXT NOT NULL,
	data BLOB,
	executed INTEGER NOT NULL DEFAULT 0,
	confirmations INTEGER NOT NULL DEFAULT 0,
	submitted_at TEXT NOT NULL,
	executed_at TEXT,
	PRIMARY KEY (vault_id, id)
);

CREATE TABLE IF NOT EXISTS confirmations (
	vault_id TEXT NOT NULL,
	tx_id INTEGER NOT NULL,
	owner TEXT NOT NULL,
	confirmed_at TEXT NOT NULL,
	PRIMARY KEY (vault_id, tx_id, owner)
);

CREATE TABLE IF NOT EXISTS deposits (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	vault_id TEXT NOT NULL,
	sender TEXT NOT NULL,
	value TEXT NOT NULL,
	deposited_at TEXT NOT NULL
);
`
