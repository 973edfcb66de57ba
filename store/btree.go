package store

import (
	"bytes"

	"github.com/google/btree"
)

// btreeDegree is the branching factor of cache trees.
const btreeDegree = 8

// MemStore returns a store that keeps all data in memory. It is used by
// tests and by vaults that do not persist their state.
func MemStore() CacheableKVStore {
	var e EmptyKVStore
	return NewBTreeCacheWrap(e, e.NewBatch())
}

// ShowOpser lists the operations written so far, in order.
type ShowOpser interface {
	ShowOps() []Op
}

// LogableStore returns an in-memory store together with the log of every
// write made to it.
func LogableStore() (CacheableKVStore, ShowOpser) {
	var e EmptyKVStore
	log := NewNonAtomicBatch(e)
	return NewBTreeCacheWrap(e, log), log
}

// BTreeCacheWrap buffers writes over a read only view of a store. Reads
// see the buffered writes first. Write replays all of them through the
// batch, Discard drops them.
type BTreeCacheWrap struct {
	pending *btree.BTree
	back    ReadOnlyKVStore
	batch   Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap returns a cache over back. All writes must reach back
// through batch.
func NewBTreeCacheWrap(back ReadOnlyKVStore, batch Batch) BTreeCacheWrap {
	return BTreeCacheWrap{
		pending: btree.New(btreeDegree),
		back:    back,
		batch:   batch,
	}
}

// CacheWrap returns a nested cache, written into this one.
func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b.NewBatch())
}

func (b BTreeCacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(b)
}

// Write flushes all buffered writes and empties the cache.
func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard drops all buffered writes.
func (b BTreeCacheWrap) Discard() {
	b.pending.Clear(false)
	if nb, ok := b.batch.(*NonAtomicBatch); ok {
		nb.ops = nil
	}
}

func (b BTreeCacheWrap) Set(key, value []byte) error {
	b.pending.ReplaceOrInsert(entry{key: key, value: value})
	return b.batch.Set(key, value)
}

func (b BTreeCacheWrap) Delete(key []byte) error {
	b.pending.ReplaceOrInsert(entry{key: key, deleted: true})
	return b.batch.Delete(key)
}

func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	if e, ok := b.lookup(key); ok {
		if e.deleted {
			return nil, nil
		}
		return e.value, nil
	}
	return b.back.Get(key)
}

func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	if e, ok := b.lookup(key); ok {
		return !e.deleted, nil
	}
	return b.back.Has(key)
}

func (b BTreeCacheWrap) lookup(key []byte) (entry, bool) {
	item := b.pending.Get(entry{key: key})
	if item == nil {
		return entry{}, false
	}
	return item.(entry), true
}

// Iterator merges buffered writes with the backing store, ascending.
func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return newCacheIterator(collect(b.pending, start, end), parent, false), nil
}

// ReverseIterator merges buffered writes with the backing store,
// descending.
func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	entries := collect(b.pending, start, end)
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return newCacheIterator(entries, parent, true), nil
}

// entry is a buffered write. A deleted entry hides the key of the backing
// store.
type entry struct {
	key     []byte
	value   []byte
	deleted bool
}

func (e entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(entry).key) < 0
}
