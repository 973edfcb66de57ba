package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cerberus-vault/cerberus"
)

// flAddress returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flAddress(fl *flag.FlagSet, name, defaultVal, usage string) *cerberus.Address {
	var a cerberus.Address
	if defaultVal != "" {
		var err error
		a, err = cerberus.ParseAddress(defaultVal)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q address flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var((*flagAddress)(&a), name, usage)
	return &a
}

type flagAddress cerberus.Address

func (a flagAddress) String() string {
	if len(a) == 0 {
		return ""
	}
	return cerberus.Address(a).String()
}

func (a *flagAddress) Set(raw string) error {
	val, err := cerberus.ParseAddress(raw)
	if err != nil {
		return err
	}
	*a = flagAddress(val)
	return nil
}

// flAddresses returns a list of addresses given as a comma separated
// flag value.
func flAddresses(fl *flag.FlagSet, name, usage string) *[]cerberus.Address {
	var list []cerberus.Address
	fl.Var((*flagAddresses)(&list), name, usage)
	return &list
}

type flagAddresses []cerberus.Address

func (l flagAddresses) String() string {
	parts := make([]string, len(l))
	for i, a := range l {
		parts[i] = a.String()
	}
	return strings.Join(parts, ",")
}

func (l *flagAddresses) Set(raw string) error {
	var list []cerberus.Address
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		a, err := cerberus.ParseAddress(s)
		if err != nil {
			return fmt.Errorf("%q: %s", s, err)
		}
		list = append(list, a)
	}
	*l = list
	return nil
}

// flHex returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flHex(fl *flag.FlagSet, name, defaultVal, usage string) *[]byte {
	var b []byte
	if defaultVal != "" {
		var err error
		b, err = hex.DecodeString(defaultVal)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q hex encoded flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var((*flagbyte)(&b), name, usage)
	return &b
}

type flagbyte []byte

func (b flagbyte) String() string {
	return hex.EncodeToString(b)
}

func (b *flagbyte) Set(raw string) error {
	val, err := hex.DecodeString(raw)
	if err != nil {
		return err
	}
	*b = val
	return nil
}
