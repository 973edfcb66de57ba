package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/cerberus-vault/cerberus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeygenAndKeyaddr(t *testing.T) {
	path := filepath.Join(t.TempDir(), "priv.key")

	generated := mustRun(t, cmdKeygen, "-key", path)
	assert.Len(t, strings.TrimSpace(generated), 40)

	// Never overwrite an existing key.
	_, err := run(t, cmdKeygen, "-key", path)
	assert.Error(t, err)

	assert.Equal(t, generated, mustRun(t, cmdKeyaddr, "-key", path))
}

func TestKeyaddrMissingKey(t *testing.T) {
	_, err := run(t, cmdKeyaddr, "-key", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	assert.Equal(t, cerberus.Version()+"\n", mustRun(t, cmdVersion))
}
