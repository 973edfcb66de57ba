package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/cerberus-vault/cerberus"
)

// commands is a register of all availables commands that can be executed by
// this program. The name is used to match with the first argument given.
//
// When a cmd function is called it is given stdin, stdout and command line
// arguments except the program name and this command name. It is the
// responsibility of the command function to parse the arguments using the
// flag package. A command function is expected to read and write only to
// provided input and output.
//
// Commands changing a vault sign the request with the key file of the
// caller, apply it to the state kept under the home directory and publish
// the resulting events to the wallet index:
//
//	$ cerberus submit -vault team -target 8A3F... -value 100 -confirm
//	$ cerberus confirm-execute -vault team -tx 1 -key bob.priv.key
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"add-owner":        cmdAddOwner,
	"balance":          cmdBalance,
	"change-threshold": cmdChangeThreshold,
	"confirm":          cmdConfirm,
	"confirm-execute":  cmdConfirmExecute,
	"deposit":          cmdDeposit,
	"execute":          cmdExecute,
	"init":             cmdInit,
	"keyaddr":          cmdKeyaddr,
	"keygen":           cmdKeygen,
	"remove-owner":     cmdRemoveOwner,
	"revoke":           cmdRevoke,
	"show":             cmdShow,
	"submit":           cmdSubmit,
	"swap-owner":       cmdSwapOwner,
	"version":          cmdVersion,
	"wallets":          cmdWallets,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s is a command line client for multi-owner vaults.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	// Skip two first arguments. Second argument is the command name that
	// we just consumed.
	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	fmt.Fprintln(out, cerberus.Version())
	return nil
}
