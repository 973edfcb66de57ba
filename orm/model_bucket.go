package orm

import (
	"reflect"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/errors"
	"github.com/gogo/protobuf/proto"
)

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	proto.Message
	Validate() error
}

// ModelBucket is implemented by buckets that operates on Models rather than
// raw bytes.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity, ErrType
	// is returned.
	One(db cerberus.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given key exists and ErrNotFound
	// otherwise.
	Has(db cerberus.ReadOnlyKVStore, key []byte) error

	// Put saves given model in the database. The model is validated
	// first.
	Put(db cerberus.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db cerberus.KVStore, key []byte) error

	// Scan returns an iterator over all models whose key starts with
	// given prefix.
	Scan(db cerberus.ReadOnlyKVStore, prefix []byte, reverse bool) (ModelIterator, error)

	// Sequence returns a sequence stored next to the bucket data.
	Sequence(name string) Sequence
}

// ModelIterator iterates over the models of a bucket.
type ModelIterator interface {
	// LoadNext loads the next model into dest and returns its key. It
	// returns ErrIteratorDone once the range is exhausted.
	LoadNext(dest Model) ([]byte, error)

	// Release releases the Iterator.
	Release()
}

// NewModelBucket returns a ModelBucket instance storing models of the same
// type as given prototype.
func NewModelBucket(name string, proto Model) ModelBucket {
	return &modelBucket{
		b:     NewBucket(name),
		model: reflect.TypeOf(proto),
	}
}

type modelBucket struct {
	b     Bucket
	model reflect.Type
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) checkType(m Model) error {
	if reflect.TypeOf(m) != mb.model {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %s", m, mb.model)
	}
	return nil
}

func (mb *modelBucket) One(db cerberus.ReadOnlyKVStore, key []byte, dest Model) error {
	if err := mb.checkType(dest); err != nil {
		return err
	}
	raw, err := db.Get(mb.b.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot get from the database")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	if err := proto.Unmarshal(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrModel, "cannot unmarshal %T: %s", dest, err)
	}
	return nil
}

func (mb *modelBucket) Has(db cerberus.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(mb.b.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot query the database")
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s not in the store", mb.model)
	}
	return nil
}

func (mb *modelBucket) Put(db cerberus.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if err := mb.checkType(m); err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := proto.Marshal(m)
	if err != nil {
		return errors.Wrapf(errors.ErrModel, "cannot marshal %T: %s", m, err)
	}
	if err := db.Set(mb.b.DBKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Delete(db cerberus.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	return db.Delete(mb.b.DBKey(key))
}

func (mb *modelBucket) Scan(db cerberus.ReadOnlyKVStore, prefix []byte, reverse bool) (ModelIterator, error) {
	it, err := mb.b.Scan(db, prefix, reverse)
	if err != nil {
		return nil, err
	}
	return &modelIterator{it: it, bucket: mb}, nil
}

func (mb *modelBucket) Sequence(name string) Sequence {
	return mb.b.Sequence(name)
}

type modelIterator struct {
	it     cerberus.Iterator
	bucket *modelBucket
}

func (i *modelIterator) LoadNext(dest Model) ([]byte, error) {
	if err := i.bucket.checkType(dest); err != nil {
		return nil, err
	}
	key, value, err := i.it.Next()
	if err != nil {
		return nil, err
	}
	if err := proto.Unmarshal(value, dest); err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "cannot unmarshal %T: %s", dest, err)
	}
	return key, nil
}

func (i *modelIterator) Release() {
	i.it.Release()
}
