/*
Package indexer maintains a queryable read model of vaults in SQLite.

The index is fed with the events published by vaults and answers the
questions the vault itself cannot answer cheaply, like which wallets a
principal owns. It never changes vault state, so it can always be
rebuilt by replaying the events.
*/
package indexer
