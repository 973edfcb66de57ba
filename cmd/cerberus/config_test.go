package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cases := map[string]struct {
		content string
		want    config
		wantErr bool
	}{
		"missing file gives defaults": {
			want: defaultConfig("HOME"),
		},
		"defined keys override defaults": {
			content: `
log_level = "info"
index_path = "/var/lib/cerberus/wallets.db"
`,
			want: config{
				Home:      "HOME",
				LogLevel:  "info",
				StateDir:  "data",
				IndexPath: "/var/lib/cerberus/wallets.db",
				Network:   "local",
			},
		},
		"unknown key": {
			content: `state_db = "x"`,
			wantErr: true,
		},
		"empty state dir": {
			content: `state_dir = ""`,
			wantErr: true,
		},
		"malformed file": {
			content: `log_level = `,
			wantErr: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			home := t.TempDir()
			if tc.content != "" {
				require.NoError(t, os.WriteFile(filepath.Join(home, configFile), []byte(tc.content), 0644))
			}
			got, err := loadConfig(home)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.want.Home = home
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWriteConfigKeepsExistingFile(t *testing.T) {
	home := t.TempDir()
	cfg := defaultConfig(home)
	cfg.Network = "testnet"
	require.NoError(t, writeConfig(cfg))

	got, err := loadConfig(home)
	require.NoError(t, err)
	assert.Equal(t, "testnet", got.Network)

	require.NoError(t, writeConfig(defaultConfig(home)))
	got, err = loadConfig(home)
	require.NoError(t, err)
	assert.Equal(t, "testnet", got.Network)
}

func TestConfigLogger(t *testing.T) {
	cfg := defaultConfig(t.TempDir())
	_, err := cfg.logger()
	assert.NoError(t, err)

	cfg.LogLevel = "loud"
	_, err = cfg.logger()
	assert.Error(t, err)
}

func TestConfigPath(t *testing.T) {
	cfg := defaultConfig("/srv/cerberus")
	assert.Equal(t, "/srv/cerberus/data", cfg.path(cfg.StateDir))
	assert.Equal(t, "/tmp/index.db", cfg.path("/tmp/index.db"))
}
