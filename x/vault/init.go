package vault

import (
	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/errors"
)

const optKey = "vault"

// GenesisVault is used to parse the json from genesis file.
type GenesisVault struct {
	ID        string             `json:"id"`
	Owners    []cerberus.Address `json:"owners"`
	Threshold uint32             `json:"threshold"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ cerberus.Initializer = Initializer{}

// FromGenesis creates the owner registry of the vault described in the
// genesis. Genesis without a vault section is a noop.
func (Initializer) FromGenesis(opts cerberus.Options, kv cerberus.KVStore) error {
	var gen GenesisVault
	if err := opts.ReadOptions(optKey, &gen); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if gen.ID == "" && len(gen.Owners) == 0 {
		return nil
	}
	if !cerberus.IsValidVaultID(gen.ID) {
		return errors.Wrapf(errors.ErrInput, "invalid vault id %q", gen.ID)
	}
	return NewOwnerRegistry().Create(kv, gen.Owners, gen.Threshold)
}

// ReadGenesis returns the vault section of given genesis.
func ReadGenesis(opts cerberus.Options) (*GenesisVault, error) {
	var gen GenesisVault
	if err := opts.ReadOptions(optKey, &gen); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return &gen, nil
}
