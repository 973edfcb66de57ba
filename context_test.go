package cerberus

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func TestContext(t *testing.T) {
	bg := context.Background()

	// try logger with default
	newLogger := log.NewTMLogger(os.Stdout)
	ctx := WithLogger(bg, newLogger)
	assert.Equal(t, DefaultLogger, GetLogger(bg))
	assert.Equal(t, newLogger, GetLogger(ctx))

	// vault id - uninitialized
	id, ok := GetVaultID(ctx)
	assert.Equal(t, "", id)
	assert.False(t, ok)

	ctx = WithVaultID(ctx, "treasury")
	id, ok = GetVaultID(ctx)
	assert.Equal(t, "treasury", id)
	assert.True(t, ok)
	// a context passed on to another vault takes its id
	other := WithVaultID(ctx, "payroll")
	id, _ = GetVaultID(other)
	assert.Equal(t, "payroll", id)
	id, _ = GetVaultID(ctx)
	assert.Equal(t, "treasury", id)

	// changing the info, should modify the logger, but not the vault
	ctx2 := WithLogInfo(ctx, "foo", "bar")
	assert.NotEqual(t, GetLogger(ctx), GetLogger(ctx2))
	id, _ = GetVaultID(ctx2)
	assert.Equal(t, "treasury", id)
}

func TestContextTime(t *testing.T) {
	ctx := context.Background()
	_, ok := GetTime(ctx)
	assert.False(t, ok)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	ctx = WithTime(ctx, now)
	got, ok := GetTime(ctx)
	assert.True(t, ok)
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, now.Equal(got))
}

func TestVaultID(t *testing.T) {
	cases := []struct {
		id    string
		valid bool
	}{
		{"", false},
		{"ab", false},
		{"abc", true},
		{"team-treasury_01", true},
		{"UPPER", false},
		{"invalid;;chars", false},
		{"this-vault-id-is-way-too-long-to-be-used", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.valid, IsValidVaultID(tc.id), tc.id)
	}
}
