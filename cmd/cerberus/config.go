package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tendermint/tendermint/libs/log"
)

const configFile = "cerberus.toml"

// config is the content of cerberus.toml found in the home directory.
type config struct {
	// Home is the directory holding the configuration, the state and the
	// index.
	Home string
	// LogLevel is one of "debug", "info", "error" or "none".
	LogLevel string
	// StateDir is where the vault and bank state is kept. Relative paths
	// are resolved against Home.
	StateDir string
	// IndexPath is the SQLite database of the wallet index. Relative paths
	// are resolved against Home.
	IndexPath string
	// Network names the network new wallets are registered for.
	Network string
}

// cerberus.toml key mapping.
type fileConfig struct {
	LogLevel  string `toml:"log_level"`
	StateDir  string `toml:"state_dir"`
	IndexPath string `toml:"index_path"`
	Network   string `toml:"network"`
}

func defaultConfig(home string) config {
	return config{
		Home:      home,
		LogLevel:  "error",
		StateDir:  "data",
		IndexPath: "index.db",
		Network:   "local",
	}
}

// loadConfig reads home/cerberus.toml overlaying the defaults. A missing
// file means all defaults.
func loadConfig(home string) (config, error) {
	cfg := defaultConfig(home)

	path := filepath.Join(home, configFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load %s: %s", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) != 0 {
		return config{}, fmt.Errorf("load %s: unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("state_dir") {
		cfg.StateDir = strings.TrimSpace(raw.StateDir)
	}
	if meta.IsDefined("index_path") {
		cfg.IndexPath = strings.TrimSpace(raw.IndexPath)
	}
	if meta.IsDefined("network") {
		cfg.Network = strings.TrimSpace(raw.Network)
	}
	if cfg.StateDir == "" || cfg.IndexPath == "" {
		return config{}, fmt.Errorf("load %s: state_dir and index_path must not be empty", path)
	}
	return cfg, nil
}

// writeConfig stores cfg as home/cerberus.toml unless the file exists.
func writeConfig(cfg config) error {
	path := filepath.Join(cfg.Home, configFile)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot create config file: %s", err)
	}
	defer fd.Close()

	raw := fileConfig{
		LogLevel:  cfg.LogLevel,
		StateDir:  cfg.StateDir,
		IndexPath: cfg.IndexPath,
		Network:   cfg.Network,
	}
	if err := toml.NewEncoder(fd).Encode(raw); err != nil {
		return fmt.Errorf("cannot write config file: %s", err)
	}
	return fd.Close()
}

func (c config) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Home, p)
}

// logger returns a stderr logger filtered by the configured level.
func (c config) logger() (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stderr))
	opt, err := log.AllowLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %s", c.LogLevel, err)
	}
	return log.NewFilter(logger, opt), nil
}
