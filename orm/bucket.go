/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of model.
* It has a primary key, and may possess secondary indexes.
* Easy queries for one and iteration.
*/
package orm

import (
	"fmt"
	"reflect"
	"regexp"

	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

var (
	isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString
)

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	tokenswap.Persistent
	Validate() error
}

// ModelBucket is a prefixed subspace of the DB holding models of one type.
type ModelBucket struct {
	name    string
	prefix  []byte
	model   reflect.Type
	indexes map[string]*Index
}

var _ tokenswap.QueryHandler = ModelBucket{}

// NewModelBucket creates a bucket to store models of the same type as
// example. example must be a pointer.
func NewModelBucket(name string, example Model) ModelBucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}
	tp := reflect.TypeOf(example)
	if tp.Kind() != reflect.Ptr {
		panic(fmt.Sprintf("model must be a pointer, got %T", example))
	}
	return ModelBucket{
		name:    name,
		prefix:  append([]byte(name), ':'),
		model:   tp.Elem(),
		indexes: make(map[string]*Index),
	}
}

// WithIndex returns a copy of the bucket that keeps a secondary index
// updated on every write.
func (b ModelBucket) WithIndex(name string, indexer Indexer, unique bool) ModelBucket {
	if _, ok := b.indexes[name]; ok {
		panic(fmt.Sprintf("Index %s registered twice", name))
	}
	indexes := make(map[string]*Index, len(b.indexes)+1)
	for k, v := range b.indexes {
		indexes[k] = v
	}
	indexes[name] = newIndex(b.name+"_"+name, indexer, unique, b.DBKey)
	b.indexes = indexes
	return b
}

// Register registers this bucket and all indexes. You can define a name
// here for queries, which is different than the bucket name used to prefix
// the data.
func (b ModelBucket) Register(name string, r tokenswap.QueryRouter) {
	if name == "" {
		name = b.name
	}
	root := "/" + name
	r.Register(root, b)
	for n, idx := range b.indexes {
		r.Register(root+"/"+n, idx)
	}
}

// DBKey is the full key we store in the db, including prefix.
func (b ModelBucket) DBKey(key []byte) []byte {
	l := len(b.prefix)
	out := make([]byte, l+len(key))
	copy(out, b.prefix)
	copy(out[l:], key)
	return out
}

// One loads a single model stored under key into dest.
// It returns ErrNotFound if the entity does not exist in the database.
// If given model type cannot be used to contain stored entity, ErrType
// is returned.
func (b ModelBucket) One(db tokenswap.ReadOnlyKVStore, key []byte, dest Model) error {
	if reflect.TypeOf(dest) != reflect.PtrTo(b.model) {
		return errors.Wrapf(errors.ErrType, "%s bucket cannot load %T", b.name, dest)
	}
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot read from the database")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrap(err, "cannot unmarshal")
	}
	return nil
}

// Has returns true if an entity is stored under key.
func (b ModelBucket) Has(db tokenswap.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Put saves given model in the database, overwriting any previous value.
func (b ModelBucket) Put(db tokenswap.KVStore, key []byte, m Model) error {
	if reflect.TypeOf(m) != reflect.PtrTo(b.model) {
		return errors.Wrapf(errors.ErrType, "%s bucket cannot store %T", b.name, m)
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrap(err, "cannot marshal")
	}
	if err := b.updateIndexes(db, key, m); err != nil {
		return err
	}
	if err := db.Set(b.DBKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

// Insert saves given model only if nothing is stored under key yet.
// It returns ErrDuplicate otherwise.
func (b ModelBucket) Insert(db tokenswap.KVStore, key []byte, m Model) error {
	switch exists, err := b.Has(db, key); {
	case err != nil:
		return err
	case exists:
		return errors.Wrapf(errors.ErrDuplicate, "%s %X", b.name, key)
	}
	return b.Put(db, key, m)
}

// Delete removes an entity with given primary key from the database.
// It returns ErrNotFound if an entity with given key does not exist.
func (b ModelBucket) Delete(db tokenswap.KVStore, key []byte) error {
	switch exists, err := b.Has(db, key); {
	case err != nil:
		return err
	case !exists:
		return errors.Wrapf(errors.ErrNotFound, "%s %X", b.name, key)
	}
	if err := b.updateIndexes(db, key, nil); err != nil {
		return err
	}
	return db.Delete(b.DBKey(key))
}

func (b ModelBucket) updateIndexes(db tokenswap.KVStore, key []byte, next Model) error {
	if len(b.indexes) == 0 {
		return nil
	}
	var prev Model
	if ok, err := b.Has(db, key); err != nil {
		return err
	} else if ok {
		prev = reflect.New(b.model).Interface().(Model)
		if err := b.One(db, key, prev); err != nil {
			return err
		}
	}
	for name, idx := range b.indexes {
		if err := idx.Update(db, key, prev, next); err != nil {
			return errors.Wrapf(err, "index %s", name)
		}
	}
	return nil
}

// ByIndex loads the primary keys of all models referenced by the index
// under value.
func (b ModelBucket) ByIndex(db tokenswap.ReadOnlyKVStore, index string, value []byte) ([][]byte, error) {
	idx, ok := b.indexes[index]
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "unknown index %s", index)
	}
	return idx.Keys(db, value)
}

// PrefixScan returns the primary keys of all models whose key starts with
// prefix, in ascending order.
func (b ModelBucket) PrefixScan(db tokenswap.ReadOnlyKVStore, prefix []byte) ([][]byte, error) {
	models, err := queryPrefix(db, b.DBKey(prefix))
	if err != nil {
		return nil, err
	}
	keys := make([][]byte, len(models))
	for i, m := range models {
		keys[i] = m.Key[len(b.prefix):]
	}
	return keys, nil
}

// Query handles queries from the QueryRouter
func (b ModelBucket) Query(db tokenswap.ReadOnlyKVStore, mod string, data []byte) ([]tokenswap.Model, error) {
	switch mod {
	case tokenswap.KeyQueryMod:
		key := b.DBKey(data)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		// return nothing on miss
		if value == nil {
			return nil, nil
		}
		return []tokenswap.Model{{Key: key, Value: value}}, nil
	case tokenswap.PrefixQueryMod:
		return queryPrefix(db, b.DBKey(data))
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mod: %s", mod)
	}
}
