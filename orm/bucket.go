/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of model.
* Keys are namespaced by the bucket name, so buckets never collide.
* Sequences provide monotonic counters stored next to the bucket.
*/
package orm

import (
	"fmt"
	"regexp"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/errors"
)

var (
	isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString
)

// Bucket is a prefixed subspace of the DB.
type Bucket struct {
	name   string
	prefix []byte
}

// NewBucket creates a bucket to store data
func NewBucket(name string) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}
	return Bucket{
		name:   name,
		prefix: append([]byte(name), ':'),
	}
}

// Name returns the name of the bucket.
func (b Bucket) Name() string {
	return b.name
}

// DBKey is the full key we store in the db, including prefix
// We copy into a new array rather than use append, as we don't
// want consecutive calls to overwrite the same byte array.
func (b Bucket) DBKey(key []byte) []byte {
	l := len(b.prefix)
	out := make([]byte, l+len(key))
	copy(out, b.prefix)
	copy(out[l:], key)
	return out
}

// Sequence returns a Sequence by name
func (b Bucket) Sequence(name string) Sequence {
	return NewSequence(b.name, name)
}

// Scan returns an iterator over all raw entries whose key starts with
// given prefix. Returned keys are stripped of the bucket prefix.
func (b Bucket) Scan(db cerberus.ReadOnlyKVStore, prefix []byte, reverse bool) (cerberus.Iterator, error) {
	start := b.DBKey(prefix)
	end := prefixEnd(start)

	var (
		it  cerberus.Iterator
		err error
	)
	if reverse {
		it, err = db.ReverseIterator(start, end)
	} else {
		it, err = db.Iterator(start, end)
	}
	if err != nil {
		return nil, errors.Wrap(err, "iterator")
	}
	return &stripIterator{it: it, strip: len(b.prefix)}, nil
}

// prefixEnd returns the smallest key greater than all keys with given
// prefix, or nil if there is no such key.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

type stripIterator struct {
	it    cerberus.Iterator
	strip int
}

func (s *stripIterator) Next() ([]byte, []byte, error) {
	key, value, err := s.it.Next()
	if err != nil {
		return nil, nil, err
	}
	return key[s.strip:], value, nil
}

func (s *stripIterator) Release() {
	s.it.Release()
}
