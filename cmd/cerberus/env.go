package main

import (
	"os"
	"path/filepath"
)

// env returns the value of an environment variable if provided (even if
// empty) or a fallback value.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

func defaultHome() string {
	return env("CERBERUS_HOME", filepath.Join(os.Getenv("HOME"), ".cerberus"))
}

func defaultKey() string {
	return env("CERBERUS_PRIV_KEY", filepath.Join(os.Getenv("HOME"), ".cerberus.priv.key"))
}
