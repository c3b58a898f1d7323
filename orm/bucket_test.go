package orm

import (
	"testing"

	"github.com/gogo/protobuf/proto"
	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/codec"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	Owner   string `protobuf:"bytes,1,opt,name=owner,proto3"`
	Balance uint64 `protobuf:"varint,2,opt,name=balance,proto3"`
}

type accountMsg account

func (m *accountMsg) Reset()         { *m = accountMsg{} }
func (m *accountMsg) String() string { return proto.CompactTextString(m) }
func (*accountMsg) ProtoMessage()    {}

func (a *account) Marshal() ([]byte, error) {
	return codec.Marshal((*accountMsg)(a))
}

func (a *account) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*accountMsg)(a))
}

func (a *account) Validate() error {
	if a.Owner == "" {
		return errors.Wrap(errors.ErrEmpty, "owner")
	}
	return nil
}

type other struct{ account }

func ownerIndexer(m Model) ([]byte, error) {
	a, ok := m.(*account)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return []byte(a.Owner), nil
}

func TestModelBucketLifecycle(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("accounts", &account{})

	var a account
	err := b.One(db, []byte("one"), &a)
	assert.True(t, errors.ErrNotFound.Is(err))

	require.NoError(t, b.Insert(db, []byte("one"), &account{Owner: "alice", Balance: 10}))
	err = b.Insert(db, []byte("one"), &account{Owner: "bob"})
	assert.True(t, errors.ErrDuplicate.Is(err))

	require.NoError(t, b.One(db, []byte("one"), &a))
	assert.Equal(t, account{Owner: "alice", Balance: 10}, a)

	require.NoError(t, b.Put(db, []byte("one"), &account{Owner: "alice", Balance: 3}))
	require.NoError(t, b.One(db, []byte("one"), &a))
	assert.Equal(t, uint64(3), a.Balance)

	err = b.Put(db, []byte("two"), &account{})
	assert.True(t, errors.ErrEmpty.Is(err))

	err = b.One(db, []byte("one"), &other{})
	assert.True(t, errors.ErrType.Is(err))

	require.NoError(t, b.Delete(db, []byte("one")))
	ok, err := b.Has(db, []byte("one"))
	require.NoError(t, err)
	assert.False(t, ok)

	err = b.Delete(db, []byte("one"))
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestModelBucketIndex(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("accounts", &account{}).WithIndex("owner", ownerIndexer, false)

	require.NoError(t, b.Put(db, []byte("a1"), &account{Owner: "alice"}))
	require.NoError(t, b.Put(db, []byte("a2"), &account{Owner: "alice"}))
	require.NoError(t, b.Put(db, []byte("b1"), &account{Owner: "bob"}))
	// "alic" must not match "alice" references
	require.NoError(t, b.Put(db, []byte("c1"), &account{Owner: "alic"}))

	keys, err := b.ByIndex(db, "owner", []byte("alice"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a1"), []byte("a2")}, keys)

	// moving an account to another owner updates the index
	require.NoError(t, b.Put(db, []byte("a2"), &account{Owner: "bob"}))
	keys, err = b.ByIndex(db, "owner", []byte("bob"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a2"), []byte("b1")}, keys)

	require.NoError(t, b.Delete(db, []byte("a1")))
	keys, err = b.ByIndex(db, "owner", []byte("alice"))
	require.NoError(t, err)
	assert.Len(t, keys, 0)
}

func TestModelBucketUniqueIndex(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("accounts", &account{}).WithIndex("owner", ownerIndexer, true)

	require.NoError(t, b.Put(db, []byte("a1"), &account{Owner: "alice"}))
	require.NoError(t, b.Put(db, []byte("a1"), &account{Owner: "alice", Balance: 1}))
	err := b.Put(db, []byte("a2"), &account{Owner: "alice"})
	assert.True(t, errors.ErrDuplicate.Is(err))
}

func TestModelBucketQuery(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("accounts", &account{}).WithIndex("owner", ownerIndexer, false)
	qr := tokenswap.NewQueryRouter()
	b.Register("", qr)

	require.NoError(t, b.Put(db, []byte("x1"), &account{Owner: "alice"}))
	require.NoError(t, b.Put(db, []byte("x2"), &account{Owner: "bob"}))
	require.NoError(t, b.Put(db, []byte("y1"), &account{Owner: "bob"}))

	res, err := qr.Handler("/accounts").Query(db, tokenswap.KeyQueryMod, []byte("x1"))
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, b.DBKey([]byte("x1")), res[0].Key)

	res, err = qr.Handler("/accounts").Query(db, tokenswap.KeyQueryMod, []byte("missing"))
	require.NoError(t, err)
	assert.Len(t, res, 0)

	res, err = qr.Handler("/accounts").Query(db, tokenswap.PrefixQueryMod, []byte("x"))
	require.NoError(t, err)
	assert.Len(t, res, 2)

	res, err = qr.Handler("/accounts/owner").Query(db, tokenswap.KeyQueryMod, []byte("bob"))
	require.NoError(t, err)
	require.Len(t, res, 2)
	var a account
	require.NoError(t, a.Unmarshal(res[1].Value))
	assert.Equal(t, "bob", a.Owner)

	keys, err := b.PrefixScan(db, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("x1"), []byte("x2")}, keys)
}

func TestCounter(t *testing.T) {
	db := store.MemStore()
	c := NewCounter("offers")
	key := []byte("maker")

	n, err := c.Get(db, key)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	for i := 1; i <= 3; i++ {
		n, err = c.Increment(db, key, 3)
		require.NoError(t, err)
		assert.Equal(t, uint64(i), n)
	}
	_, err = c.Increment(db, key, 3)
	assert.True(t, errors.ErrOverflow.Is(err))

	n, err = c.Decrement(db, key)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	_, _ = c.Decrement(db, key)
	_, _ = c.Decrement(db, key)
	_, err = c.Decrement(db, key)
	assert.True(t, errors.ErrState.Is(err))

	// a counter at zero leaves nothing in the store
	it, err := db.Iterator(nil, nil)
	require.NoError(t, err)
	assert.False(t, it.Valid())
	it.Close()
}

func TestPrefixRange(t *testing.T) {
	assert.Equal(t, []byte("ab"), prefixRange([]byte("aa")))
	assert.Equal(t, []byte{0x02}, prefixRange([]byte{0x01, 0xff}))
	assert.Nil(t, prefixRange([]byte{0xff, 0xff}))
}
