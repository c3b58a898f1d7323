package store

import tokenswap "github.com/iov-one/tokenswap"

// Storage types are aliased here for shorter names in this package and its
// children.

// KVStore is a readable and writable key value store.
type KVStore = tokenswap.KVStore

// ReadOnlyKVStore is a store that can only be read from.
type ReadOnlyKVStore = tokenswap.ReadOnlyKVStore

// SetDeleter is the write half of a store.
type SetDeleter = tokenswap.SetDeleter

// Batch collects writes to apply them at once.
type Batch = tokenswap.Batch

// Iterator walks over a range of keys.
type Iterator = tokenswap.Iterator

// CacheableKVStore is a store that can be cache-wrapped.
type CacheableKVStore = tokenswap.CacheableKVStore

// KVCacheWrap is a cache layer that can be written down or discarded.
type KVCacheWrap = tokenswap.KVCacheWrap

// CommitKVStore is the persistent root store.
type CommitKVStore = tokenswap.CommitKVStore

// CommitID identifies a committed version of a store.
type CommitID = tokenswap.CommitID

// Model is a key value pair.
type Model = tokenswap.Model
