package store

import (
	"testing"

	"github.com/cerberus-vault/cerberus/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prefixStoreSuite() *TestSuite {
	return NewTestSuite(func() (CacheableKVStore, func()) {
		parent := MemStore()
		// Keys around the prefix must never be visible.
		_ = parent.Set([]byte("vault/a"), []byte("before"))
		_ = parent.Set([]byte("vault/c/"), []byte("after"))
		return NewPrefixStore(parent, []byte("vault/b/")), func() {}
	})
}

func TestPrefixStoreGetSet(t *testing.T) {
	prefixStoreSuite().GetSet(t)
}

func TestPrefixStoreCacheConflicts(t *testing.T) {
	prefixStoreSuite().CacheConflicts(t)
}

func TestPrefixStoreIterator(t *testing.T) {
	prefixStoreSuite().IteratorWithConflicts(t)
}

func TestPrefixStoresShareParent(t *testing.T) {
	parent := MemStore()
	bank := NewPrefixStore(parent, []byte("bank/"))
	team := NewPrefixStore(parent, []byte("vault/team/"))

	require.NoError(t, bank.Set([]byte("owners"), []byte("bank")))
	require.NoError(t, team.Set([]byte("owners"), []byte("team")))

	val, err := bank.Get([]byte("owners"))
	require.NoError(t, err)
	assert.Equal(t, []byte("bank"), val)
	val, err = parent.Get([]byte("vault/team/owners"))
	require.NoError(t, err)
	assert.Equal(t, []byte("team"), val)

	// a cache of one view writes only its own keys
	cache := team.CacheWrap()
	require.NoError(t, cache.Delete([]byte("owners")))
	require.NoError(t, cache.Write())
	has, err := team.Has([]byte("owners"))
	require.NoError(t, err)
	assert.False(t, has)
	has, err = bank.Has([]byte("owners"))
	require.NoError(t, err)
	assert.True(t, has)
}

func TestPrefixEnd(t *testing.T) {
	cases := map[string]struct {
		prefix []byte
		want   []byte
	}{
		"simple":        {prefix: []byte("ab"), want: []byte("ac")},
		"trailing 0xff": {prefix: []byte{'a', 0xff}, want: []byte("b")},
		"all 0xff":      {prefix: []byte{0xff, 0xff}, want: nil},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.want, prefixEnd(tc.prefix))
		})
	}
}

func TestPrefixIteratorStopsAtPrefixEnd(t *testing.T) {
	parent := MemStore()
	require.NoError(t, parent.Set([]byte{0xff, 0xff, 1}, []byte("in")))
	require.NoError(t, parent.Set([]byte{0xff, 0xfe}, []byte("out")))
	p := NewPrefixStore(parent, []byte{0xff, 0xff})

	it, err := p.Iterator(nil, nil)
	require.NoError(t, err)
	defer it.Release()
	key, value, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, key)
	assert.Equal(t, []byte("in"), value)
	_, _, err = it.Next()
	assert.True(t, errors.ErrIteratorDone.Is(err))
}
