package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/x/vault"
)

type vaultView struct {
	ID        string             `json:"id"`
	Address   cerberus.Address   `json:"address"`
	Owners    []cerberus.Address `json:"owners"`
	Threshold uint32             `json:"threshold"`
	Nonce     uint64             `json:"nonce"`
	Balance   uint64             `json:"balance"`
}

type transactionView struct {
	ID uint64 `json:"id"`
	*vault.Transaction
	StaleConfirmations int `json:"stale_confirmations"`
}

func cmdShow(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the state of a vault, or of one of its transactions if the -tx flag
is given.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl  = fl.String("home", defaultHome(), "Directory holding the configuration and the state. You can use CERBERUS_HOME environment variable to set it.")
		vaultFl = fl.String("vault", "", "Identifier of the vault.")
		txFl    = fl.Uint64("tx", 0, "Transaction id. When not set, the vault itself is shown.")
	)
	fl.Parse(args)

	n, err := openNode(*homeFl)
	if err != nil {
		return err
	}
	defer n.Close()

	v, err := n.vault(*vaultFl)
	if err != nil {
		return err
	}

	if *txFl != 0 {
		tx, err := v.Transaction(*txFl)
		if err != nil {
			return err
		}
		stale, err := v.StaleConfirmations(*txFl)
		if err != nil {
			return err
		}
		return writeJSON(output, transactionView{ID: *txFl, Transaction: tx, StaleConfirmations: stale})
	}

	view := vaultView{ID: v.ID(), Address: v.Address()}
	if view.Owners, err = v.Owners(); err != nil {
		return err
	}
	if view.Threshold, err = v.Threshold(); err != nil {
		return err
	}
	if view.Nonce, err = v.Nonce(); err != nil {
		return err
	}
	if view.Balance, err = v.Balance(); err != nil {
		return err
	}
	return writeJSON(output, view)
}

func cmdBalance(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the balance of an address. When no address is given, the balance of
the key holder is printed.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(), "Directory holding the configuration and the state. You can use CERBERUS_HOME environment variable to set it.")
		keyFl  = fl.String("key", defaultKey(), "Path to the private key file. You can use CERBERUS_PRIV_KEY environment variable to set it.")
		addrFl = flAddress(fl, "address", "", "Address to check.")
	)
	fl.Parse(args)

	addr := *addrFl
	if len(addr) == 0 {
		key, err := readKey(*keyFl)
		if err != nil {
			return err
		}
		addr = key.PublicKey().Address()
	}

	n, err := openNode(*homeFl)
	if err != nil {
		return err
	}
	defer n.Close()

	balance, err := n.bank.Balance(addr)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(output, balance)
	return err
}

func cmdWallets(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Query the wallet index.

Without flags all wallets the key holder owns are listed. Use -owner to list
the wallets of another address and -id to show a single wallet together with
its transactions and deposits. Combining -id with -name renames the wallet.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl  = fl.String("home", defaultHome(), "Directory holding the configuration and the state. You can use CERBERUS_HOME environment variable to set it.")
		keyFl   = fl.String("key", defaultKey(), "Path to the private key file. You can use CERBERUS_PRIV_KEY environment variable to set it.")
		ownerFl = flAddress(fl, "owner", "", "List wallets owned by this address.")
		idFl    = fl.Int64("id", 0, "Wallet id.")
		nameFl  = fl.String("name", "", "New wallet name, used together with -id.")
	)
	fl.Parse(args)

	n, err := openNode(*homeFl)
	if err != nil {
		return err
	}
	defer n.Close()
	ctx := n.context()

	if *idFl != 0 {
		wallet, err := n.index.Wallet(ctx, *idFl)
		if err != nil {
			return err
		}
		if *nameFl != "" {
			if wallet, err = n.index.RenameWallet(ctx, wallet.ID, *nameFl); err != nil {
				return err
			}
		}
		txs, err := n.index.Transactions(ctx, wallet.VaultID)
		if err != nil {
			return err
		}
		deposits, err := n.index.Deposits(ctx, wallet.VaultID)
		if err != nil {
			return err
		}
		return writeJSON(output, struct {
			Wallet       interface{} `json:"wallet"`
			Transactions interface{} `json:"transactions"`
			Deposits     interface{} `json:"deposits"`
		}{wallet, txs, deposits})
	}

	owner := *ownerFl
	if len(owner) == 0 {
		key, err := readKey(*keyFl)
		if err != nil {
			return err
		}
		owner = key.PublicKey().Address()
	}
	wallets, err := n.index.WalletsByOwner(ctx, owner)
	if err != nil {
		return err
	}
	return writeJSON(output, wallets)
}
