package app

import (
	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

// CommitStore handles loading from a KVCommitStore, maintaining different
// CacheWraps for Deliver and Check, and returning useful state info.
type CommitStore struct {
	committed tokenswap.CommitKVStore
	deliver   tokenswap.KVCacheWrap
	check     tokenswap.KVCacheWrap
}

// NewCommitStore loads the latest committed version of the store and sets
// up the deliver and check caches.
func NewCommitStore(store tokenswap.CommitKVStore) (*CommitStore, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	return &CommitStore{
		committed: store,
		deliver:   store.CacheWrap(),
		check:     store.CacheWrap(),
	}, nil
}

// CommitInfo returns the current height and hash
func (cs *CommitStore) CommitInfo() (tokenswap.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit will flush deliver to the underlying store and commit it
// to disk. It then regenerates new deliver/check caches.
//
// The abci server serializes calls on the consensus connection, so no
// locking is needed as long as only that connection commits.
func (cs *CommitStore) Commit() (tokenswap.CommitID, error) {
	// flush deliver to store and discard check
	if err := cs.deliver.Write(); err != nil {
		return tokenswap.CommitID{}, err
	}
	cs.check.Discard()

	// write the store to disk
	res, err := cs.committed.Commit()
	if err != nil {
		return res, err
	}

	// set up new caches
	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
	return res, nil
}

// CheckStore returns a store implementation that must be used during the
// checking phase.
func (cs *CommitStore) CheckStore() tokenswap.CacheableKVStore {
	return cs.check
}

// DeliverStore returns a store implementation that must be used during the
// delivery phase.
func (cs *CommitStore) DeliverStore() tokenswap.CacheableKVStore {
	return cs.deliver
}

//------- storing chainID ---------

// _ts: is a prefix for application internal data
const chainIDKey = "_ts:chainID"

// loadChainID returns the chain id stored if any
func loadChainID(kv tokenswap.ReadOnlyKVStore) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv tokenswap.KVStore, chainID string) error {
	if !tokenswap.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chainId")
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	err = kv.Set(k, []byte(chainID))
	if err != nil {
		return errors.Wrap(err, "save chainId")
	}
	return nil
}
