package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/eventlog"
	"github.com/cerberus-vault/cerberus/orm"
	"github.com/cerberus-vault/cerberus/x/cash"
	"github.com/cerberus-vault/cerberus/x/sigs"
	"github.com/cerberus-vault/cerberus/x/vault"
)

func cmdInit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a new vault and register it in the wallet index.

The vault is described either by flags or by a JSON genesis file. A genesis
file contains a "vault" section with id, owners and threshold. It may also
contain a "cash" section with the initial balances, which is accepted only
before the first vault is created.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl      = fl.String("home", defaultHome(), "Directory holding the configuration and the state. You can use CERBERUS_HOME environment variable to set it.")
		genesisFl   = fl.String("genesis", "", "Path to a JSON genesis file. When set, vault flags are ignored.")
		idFl        = fl.String("id", "", "Identifier of the new vault.")
		ownersFl    = flAddresses(fl, "owners", "Comma separated addresses of the initial owners.")
		thresholdFl = fl.Uint("threshold", 2, "Number of confirmations required to execute a transaction.")
		nameFl      = fl.String("name", "", "Human readable wallet name. Defaults to the vault id.")
		networkFl   = fl.String("network", "", "Network the wallet is registered for. Defaults to the configured network.")
	)
	fl.Parse(args)

	if err := os.MkdirAll(*homeFl, 0755); err != nil {
		return fmt.Errorf("cannot create home directory: %s", err)
	}
	if err := writeConfig(defaultConfig(*homeFl)); err != nil {
		return err
	}

	opts, err := genesisOptions(*genesisFl, *idFl, *ownersFl, uint32(*thresholdFl))
	if err != nil {
		return err
	}
	gen, err := vault.ReadGenesis(opts)
	if err != nil {
		return fmt.Errorf("invalid genesis: %s", err)
	}

	n, err := openNode(*homeFl)
	if err != nil {
		return err
	}
	defer n.Close()

	if ok, err := n.exists(gen.ID); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("vault %q already exists", gen.ID)
	}
	s, err := n.store(gen.ID)
	if err != nil {
		return err
	}
	if err := fromGenesis(vault.Initializer{}, opts, s.CacheWrap()); err != nil {
		return fmt.Errorf("cannot create vault: %s", err)
	}

	if _, ok := opts["cash"]; ok {
		if ver, err := n.state.LatestVersion(); err != nil || ver.Version != 0 {
			return fmt.Errorf("initial balances can be set only before the first vault is created")
		}
		if err := fromGenesis(cash.Initializer{}, opts, n.bankDB.CacheWrap()); err != nil {
			return fmt.Errorf("cannot set initial balances: %s", err)
		}
	}

	name := *nameFl
	if name == "" {
		name = gen.ID
	}
	network := *networkFl
	if network == "" {
		network = n.cfg.Network
	}
	wallet, err := n.index.RegisterWallet(n.context(), name, network, gen.ID, gen.Owners, gen.Threshold)
	if err != nil {
		return fmt.Errorf("cannot register wallet: %s", err)
	}
	if err := n.commit(); err != nil {
		return err
	}
	return writeJSON(output, wallet)
}

func genesisOptions(path, id string, owners []cerberus.Address, threshold uint32) (cerberus.Options, error) {
	var opts cerberus.Options
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read genesis file: %s", err)
		}
		if err := json.Unmarshal(raw, &opts); err != nil {
			return nil, fmt.Errorf("cannot parse genesis file: %s", err)
		}
	} else {
		raw, err := json.Marshal(vault.GenesisVault{
			ID:        id,
			Owners:    owners,
			Threshold: threshold,
		})
		if err != nil {
			return nil, fmt.Errorf("cannot serialize genesis: %s", err)
		}
		opts = cerberus.Options{"vault": raw}
	}
	if _, ok := opts["vault"]; !ok {
		return nil, fmt.Errorf("genesis has no vault section")
	}
	return opts, nil
}

func fromGenesis(init cerberus.Initializer, opts cerberus.Options, cache cerberus.KVCacheWrap) error {
	if err := init.FromGenesis(opts, cache); err != nil {
		cache.Discard()
		return err
	}
	return cache.Write()
}

// requestFlags are the flags of every command that changes a vault.
type requestFlags struct {
	home  *string
	key   *string
	vault *string
}

func addRequestFlags(fl *flag.FlagSet) requestFlags {
	return requestFlags{
		home: fl.String("home", defaultHome(),
			"Directory holding the configuration and the state. You can use CERBERUS_HOME environment variable to set it."),
		key: fl.String("key", defaultKey(),
			"Path to the private key file that the request should be signed with. You can use CERBERUS_PRIV_KEY environment variable to set it."),
		vault: fl.String("vault", "", "Identifier of the vault."),
	}
}

// deliver signs msg with the key of the caller, applies it to the vault
// and persists the new state. The result view lists the published events.
func deliver(rf requestFlags, msg cerberus.Msg) (*cerberus.DeliverResult, *resultView, error) {
	key, err := readKey(*rf.key)
	if err != nil {
		return nil, nil, err
	}
	n, err := openNode(*rf.home)
	if err != nil {
		return nil, nil, err
	}
	defer n.Close()

	v, err := n.vault(*rf.vault)
	if err != nil {
		return nil, nil, err
	}
	s, err := n.store(v.ID())
	if err != nil {
		return nil, nil, err
	}

	tx, err := sigs.NewTx(msg)
	if err != nil {
		return nil, nil, err
	}
	seq, err := sigs.NextNonce(s, key.PublicKey().Address())
	if err != nil {
		return nil, nil, fmt.Errorf("cannot get signer sequence: %s", err)
	}
	if err := sigs.Sign(tx, key, v.ID(), seq); err != nil {
		return nil, nil, fmt.Errorf("cannot sign: %s", err)
	}

	published := n.events.Len()
	res, err := v.DeliverSigned(n.context(), tx)
	if err != nil {
		return nil, nil, err
	}
	if err := n.commit(); err != nil {
		return nil, nil, err
	}
	return res, &resultView{Log: res.Log, Events: n.events.Since(uint64(published))}, nil
}

type resultView struct {
	TransactionID *uint64           `json:"transaction_id,omitempty"`
	Executed      *bool             `json:"executed,omitempty"`
	Log           string            `json:"log,omitempty"`
	Events        []eventlog.Record `json:"events"`
}

func writeJSON(output io.Writer, v interface{}) error {
	enc := json.NewEncoder(output)
	enc.SetIndent("", "\t")
	return enc.Encode(v)
}

func cmdDeposit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Move value from the key holder into the vault. Anyone can deposit.
`)
		fl.PrintDefaults()
	}
	var (
		rf      = addRequestFlags(fl)
		valueFl = fl.Uint64("value", 0, "Value to deposit.")
	)
	fl.Parse(args)

	_, view, err := deliver(rf, &vault.DepositMsg{Value: *valueFl})
	if err != nil {
		return err
	}
	return writeJSON(output, view)
}

func cmdSubmit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Submit a new transaction moving value out of the vault. Only an owner can
submit. The id of the new transaction is printed.
`)
		fl.PrintDefaults()
	}
	var (
		rf        = addRequestFlags(fl)
		targetFl  = flAddress(fl, "target", "", "Address that receives the value.")
		valueFl   = fl.Uint64("value", 0, "Value to transfer.")
		dataFl    = flHex(fl, "data", "", "Optional hex encoded payload.")
		confirmFl = fl.Bool("confirm", false, "Confirm the transaction in the same request.")
	)
	fl.Parse(args)

	var msg cerberus.Msg = &vault.SubmitMsg{Target: *targetFl, Value: *valueFl, Data: *dataFl}
	if *confirmFl {
		msg = &vault.SubmitAndConfirmMsg{Target: *targetFl, Value: *valueFl, Data: *dataFl}
	}
	res, view, err := deliver(rf, msg)
	if err != nil {
		return err
	}
	id := orm.DecodeSequence(res.Data)
	view.TransactionID = &id
	return writeJSON(output, view)
}

// txCommand returns a command delivering a message that addresses a
// single transaction.
func txCommand(help string, build func(id uint64) cerberus.Msg) func(io.Reader, io.Writer, []string) error {
	return func(input io.Reader, output io.Writer, args []string) error {
		fl := flag.NewFlagSet("", flag.ExitOnError)
		fl.Usage = func() {
			fmt.Fprint(flag.CommandLine.Output(), help)
			fl.PrintDefaults()
		}
		var (
			rf   = addRequestFlags(fl)
			txFl = fl.Uint64("tx", 0, "Transaction id.")
		)
		fl.Parse(args)

		msg := build(*txFl)
		res, view, err := deliver(rf, msg)
		if err != nil {
			return err
		}
		if _, ok := msg.(*vault.ConfirmAndExecuteMsg); ok {
			executed := false
			for _, e := range res.Events {
				if _, ok := e.(vault.Execution); ok {
					executed = true
				}
			}
			view.Executed = &executed
		}
		return writeJSON(output, view)
	}
}

var (
	cmdConfirm = txCommand(`
Confirm a transaction as one of the vault owners.
`, func(id uint64) cerberus.Msg { return &vault.ConfirmMsg{TransactionID: id} })

	cmdRevoke = txCommand(`
Withdraw your confirmation of a not yet executed transaction.
`, func(id uint64) cerberus.Msg { return &vault.RevokeMsg{TransactionID: id} })

	cmdExecute = txCommand(`
Execute a transaction that collected enough confirmations.
`, func(id uint64) cerberus.Msg { return &vault.ExecuteMsg{TransactionID: id} })

	cmdConfirmExecute = txCommand(`
Confirm a transaction and execute it if your confirmation completed the
quorum.
`, func(id uint64) cerberus.Msg { return &vault.ConfirmAndExecuteMsg{TransactionID: id} })
)

func cmdAddOwner(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Add a new owner to the vault.
`)
		fl.PrintDefaults()
	}
	var (
		rf      = addRequestFlags(fl)
		ownerFl = flAddress(fl, "owner", "", "Address of the new owner.")
	)
	fl.Parse(args)

	_, view, err := deliver(rf, &vault.AddOwnerMsg{Owner: *ownerFl})
	if err != nil {
		return err
	}
	return writeJSON(output, view)
}

func cmdRemoveOwner(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Remove an owner from the vault. The remaining owners must still satisfy the
threshold.
`)
		fl.PrintDefaults()
	}
	var (
		rf      = addRequestFlags(fl)
		ownerFl = flAddress(fl, "owner", "", "Address of the owner to remove.")
	)
	fl.Parse(args)

	_, view, err := deliver(rf, &vault.RemoveOwnerMsg{Owner: *ownerFl})
	if err != nil {
		return err
	}
	return writeJSON(output, view)
}

func cmdSwapOwner(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Replace an owner with a new one, keeping the owner count.
`)
		fl.PrintDefaults()
	}
	var (
		rf    = addRequestFlags(fl)
		oldFl = flAddress(fl, "old", "", "Address of the owner to replace.")
		newFl = flAddress(fl, "new", "", "Address of the new owner.")
	)
	fl.Parse(args)

	_, view, err := deliver(rf, &vault.SwapOwnerMsg{OldOwner: *oldFl, NewOwner: *newFl})
	if err != nil {
		return err
	}
	return writeJSON(output, view)
}

func cmdChangeThreshold(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Change the number of confirmations required to execute a transaction.
`)
		fl.PrintDefaults()
	}
	var (
		rf          = addRequestFlags(fl)
		thresholdFl = fl.Uint("threshold", 0, "New threshold.")
	)
	fl.Parse(args)

	_, view, err := deliver(rf, &vault.ChangeThresholdMsg{Threshold: uint32(*thresholdFl)})
	if err != nil {
		return err
	}
	return writeJSON(output, view)
}
