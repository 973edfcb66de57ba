package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/cerberus-vault/cerberus/eventlog"
	"github.com/cerberus-vault/cerberus/indexer"
	"github.com/cerberus-vault/cerberus/store"
	"github.com/cerberus-vault/cerberus/store/iavl"
	"github.com/cerberus-vault/cerberus/x/cash"
	"github.com/cerberus-vault/cerberus/x/vault"
	"github.com/tendermint/tendermint/libs/log"
)

// node is the local state of all vaults managed from one home directory.
// The bank and every vault keep their state under their own prefix of a
// single iavl tree, so commit persists all of them in one version.
type node struct {
	cfg    config
	logger log.Logger

	state  *iavl.CommitStore
	bankDB cerberus.CacheableKVStore
	bank   *cash.Bank
	index  *indexer.Index
	// events are all events published since the node was opened.
	events *eventlog.Log

	vaults *vault.Directory
}

func openNode(home string) (*node, error) {
	cfg, err := loadConfig(home)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.logger()
	if err != nil {
		return nil, err
	}
	stateDir := cfg.path(cfg.StateDir)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create state directory: %s", err)
	}

	state, err := iavl.NewCommitStore(stateDir, "state")
	if err != nil {
		return nil, err
	}
	if err := state.LoadLatestVersion(); err != nil {
		state.Close()
		return nil, err
	}
	index, err := indexer.Open(cfg.path(cfg.IndexPath))
	if err != nil {
		state.Close()
		return nil, fmt.Errorf("cannot open index: %s", err)
	}
	bankDB := store.NewPrefixStore(state.Adapter(), []byte("bank/"))
	n := &node{
		cfg:    cfg,
		logger: logger,
		state:  state,
		bankDB: bankDB,
		bank:   cash.NewBank(bankDB),
		index:  index,
		events: eventlog.New(),
		vaults: vault.NewDirectory(),
	}
	n.vaults.LoadWith(n.vaultByAddress)
	return n, nil
}

func (n *node) context() cerberus.Context {
	return cerberus.WithLogger(context.Background(), n.logger)
}

func (n *node) options() []vault.Option {
	return []vault.Option{
		vault.WithFunds(n.vaults.Funds(n.bank)),
		vault.WithEventSink(eventlog.Fanout(n.index, n.events)),
		vault.WithLogger(n.logger),
	}
}

// store returns the state of given vault.
func (n *node) store(id string) (cerberus.CacheableKVStore, error) {
	if !cerberus.IsValidVaultID(id) {
		return nil, fmt.Errorf("invalid vault id %q", id)
	}
	return store.NewPrefixStore(n.state.Adapter(), []byte("vault/"+id+"/")), nil
}

// exists returns true if a vault with given id was created.
func (n *node) exists(id string) (bool, error) {
	v, err := n.open(id)
	if err != nil {
		return false, err
	}
	switch _, err := v.OwnerCount(); {
	case err == nil:
		return true, nil
	case errors.ErrState.Is(err):
		return false, nil
	default:
		return false, err
	}
}

func (n *node) open(id string) (*vault.Vault, error) {
	s, err := n.store(id)
	if err != nil {
		return nil, err
	}
	return vault.New(id, s, n.options()...)
}

// vault returns an existing vault.
func (n *node) vault(id string) (*vault.Vault, error) {
	if v, err := n.vaults.Get(id); err == nil {
		return v, nil
	}
	switch ok, err := n.exists(id); {
	case err != nil:
		return nil, err
	case !ok:
		return nil, fmt.Errorf("vault %q does not exist, use init to create it", id)
	}
	v, err := n.open(id)
	if err != nil {
		return nil, err
	}
	if err := n.vaults.Add(v); err != nil {
		return nil, err
	}
	return v, nil
}

// vaultByAddress finds a registered vault receiving value from another
// vault.
func (n *node) vaultByAddress(addr cerberus.Address) (*vault.Vault, error) {
	id, err := n.index.VaultByAddress(n.context(), addr)
	if errors.ErrNotFound.Is(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return n.open(id)
}

// commit persists the current state of the bank and of all vaults as one
// version.
func (n *node) commit() error {
	if _, err := n.state.Commit(); err != nil {
		return fmt.Errorf("cannot commit state: %s", err)
	}
	return nil
}

func (n *node) Close() error {
	n.state.Close()
	return n.index.Close()
}
