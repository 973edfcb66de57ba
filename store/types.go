package store

import "github.com/cerberus-vault/cerberus"

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = cerberus.ReadOnlyKVStore
	SetDeleter       = cerberus.SetDeleter
	KVStore          = cerberus.KVStore
	Batch            = cerberus.Batch
	Iterator         = cerberus.Iterator
	CacheableKVStore = cerberus.CacheableKVStore
	KVCacheWrap      = cerberus.KVCacheWrap
	CommitKVStore    = cerberus.CommitKVStore
	CommitID         = cerberus.CommitID
)

// Model groups together key and value to return
type Model struct {
	Key   []byte
	Value []byte
}

// Pair constructs a model from a key-value pair
func Pair(key, value []byte) Model {
	return Model{
		Key:   key,
		Value: value,
	}
}
