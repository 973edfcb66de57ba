package store

import (
	"bytes"

	"github.com/cerberus-vault/cerberus/errors"
)

// PrefixStore keeps all its keys under a common prefix of the parent
// store. Several prefix stores share one parent without seeing each other
// data, so the parent can commit all of them at once.
type PrefixStore struct {
	parent CacheableKVStore
	prefix []byte
}

var _ CacheableKVStore = PrefixStore{}

// NewPrefixStore returns a view of parent limited to keys starting with
// prefix. An empty prefix is not allowed.
func NewPrefixStore(parent CacheableKVStore, prefix []byte) PrefixStore {
	if len(prefix) == 0 {
		panic("empty store prefix")
	}
	return PrefixStore{
		parent: parent,
		prefix: append([]byte(nil), prefix...),
	}
}

func (p PrefixStore) key(k []byte) []byte {
	out := make([]byte, 0, len(p.prefix)+len(k))
	out = append(out, p.prefix...)
	return append(out, k...)
}

func (p PrefixStore) Get(key []byte) ([]byte, error) {
	return p.parent.Get(p.key(key))
}

func (p PrefixStore) Has(key []byte) (bool, error) {
	return p.parent.Has(p.key(key))
}

func (p PrefixStore) Set(key, value []byte) error {
	return p.parent.Set(p.key(key), value)
}

func (p PrefixStore) Delete(key []byte) error {
	return p.parent.Delete(p.key(key))
}

func (p PrefixStore) NewBatch() Batch {
	return NewNonAtomicBatch(p)
}

// CacheWrap returns a cache over this view. Writing it changes only keys
// under the prefix.
func (p PrefixStore) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(p, p.NewBatch())
}

func (p PrefixStore) Iterator(start, end []byte) (Iterator, error) {
	s, e := p.bounds(start, end)
	it, err := p.parent.Iterator(s, e)
	if err != nil {
		return nil, err
	}
	return &prefixIterator{parent: it, prefix: p.prefix}, nil
}

func (p PrefixStore) ReverseIterator(start, end []byte) (Iterator, error) {
	s, e := p.bounds(start, end)
	it, err := p.parent.ReverseIterator(s, e)
	if err != nil {
		return nil, err
	}
	return &prefixIterator{parent: it, prefix: p.prefix}, nil
}

func (p PrefixStore) bounds(start, end []byte) ([]byte, []byte) {
	s := p.key(start)
	if end == nil {
		return s, prefixEnd(p.prefix)
	}
	return s, p.key(end)
}

// prefixEnd returns the smallest key greater than all keys with given
// prefix, or nil if there is none.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

type prefixIterator struct {
	parent Iterator
	prefix []byte
}

func (it *prefixIterator) Next() (key, value []byte, err error) {
	key, value, err = it.parent.Next()
	if err != nil {
		return nil, nil, err
	}
	if !bytes.HasPrefix(key, it.prefix) {
		return nil, nil, errors.Wrap(errors.ErrIteratorDone, "prefix iterator")
	}
	return key[len(it.prefix):], value, nil
}

func (it *prefixIterator) Release() {
	it.parent.Release()
}
