package store

import (
	"bytes"

	"github.com/cerberus-vault/cerberus/errors"
	"github.com/google/btree"
)

// collect returns all cached entries within [start, end) in ascending
// order. A nil bound is open.
func collect(bt *btree.BTree, start, end []byte) []entry {
	var entries []entry
	insert := func(item btree.Item) bool {
		entries = append(entries, item.(entry))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(insert)
	case start == nil:
		bt.AscendLessThan(entry{key: end}, insert)
	case end == nil:
		bt.AscendGreaterOrEqual(entry{key: start}, insert)
	default:
		bt.AscendRange(entry{key: start}, entry{key: end}, insert)
	}
	return entries
}

// cacheIterator combines a snapshot of cached items with the iterator of
// the backing store. Cached values shadow the parent, deleted items hide
// the parent entry with the same key.
type cacheIterator struct {
	items   []entry
	idx     int
	reverse bool

	parent     Iterator
	parentKey  []byte
	parentVal  []byte
	parentPeek bool
	parentDone bool
}

var _ Iterator = (*cacheIterator)(nil)

func newCacheIterator(items []entry, parent Iterator, reverse bool) *cacheIterator {
	return &cacheIterator{
		items:   items,
		parent:  parent,
		reverse: reverse,
	}
}

// peekParent loads the next parent entry, if not loaded yet.
func (it *cacheIterator) peekParent() error {
	if it.parentPeek || it.parentDone {
		return nil
	}
	key, value, err := it.parent.Next()
	switch {
	case errors.ErrIteratorDone.Is(err):
		it.parentDone = true
		return nil
	case err != nil:
		return err
	}
	it.parentKey, it.parentVal, it.parentPeek = key, value, true
	return nil
}

func (it *cacheIterator) Next() (key, value []byte, err error) {
	for {
		if err := it.peekParent(); err != nil {
			return nil, nil, err
		}
		hasOwn := it.idx < len(it.items)
		hasParent := it.parentPeek

		if !hasOwn && !hasParent {
			return nil, nil, errors.Wrap(errors.ErrIteratorDone, "cache iterator")
		}

		if !hasOwn {
			it.parentPeek = false
			return it.parentKey, it.parentVal, nil
		}

		item := it.items[it.idx]
		if hasParent {
			cmp := bytes.Compare(item.key, it.parentKey)
			if it.reverse {
				cmp = -cmp
			}
			if cmp > 0 {
				it.parentPeek = false
				return it.parentKey, it.parentVal, nil
			}
			if cmp == 0 {
				// Cached item overwrites the parent value.
				it.parentPeek = false
			}
		}

		it.idx++
		if !item.deleted {
			return item.key, item.value, nil
		}
	}
}

func (it *cacheIterator) Release() {
	it.items = nil
	it.parent.Release()
}
