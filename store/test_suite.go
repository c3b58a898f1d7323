package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSuite provides checks that can be run against any CacheableKVStore
// implementation. It removes duplication between the in memory store tests
// and the persistent backends.
type TestSuite struct {
	makeBase TestStoreConstructor
}

// TestStoreConstructor returns a fresh store and a function to release it.
type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

// NewTestSuite returns a suite running against stores built by constructor.
func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{makeBase: constructor}
}

// AssertGetHas checks that Get and Has agree with the expected value.
func AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, want []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	exists, err := kv.Has(key)
	require.NoError(t, err)
	assert.Equal(t, has, exists)
}

// GetSet checks that writes are only visible to the layer they were made on
// until that layer is written.
func (s *TestSuite) GetSet(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	k, v := []byte("french"), []byte("fry")
	AssertGetHas(t, base, k, nil, false)
	require.NoError(t, base.Set(k, v))
	AssertGetHas(t, base, k, v, true)

	cache := base.CacheWrap()
	AssertGetHas(t, cache, k, v, true)

	k2, v2 := []byte("LA"), []byte("Dodgers")
	AssertGetHas(t, cache, k2, nil, false)
	require.NoError(t, cache.Set(k2, v2))
	AssertGetHas(t, cache, k2, v2, true)
	AssertGetHas(t, base, k2, nil, false)

	require.NoError(t, cache.Write())
	AssertGetHas(t, base, k, v, true)
	AssertGetHas(t, base, k2, v2, true)

	k3, v3 := []byte("Bayern"), []byte("Munich")
	c2 := base.CacheWrap()
	require.NoError(t, c2.Set(k3, v3))
	require.NoError(t, c2.Delete(k))
	AssertGetHas(t, c2, k, nil, false)
	c2.Discard()
	AssertGetHas(t, base, k, v, true)
	AssertGetHas(t, base, k3, nil, false)

	c3 := base.CacheWrap()
	require.NoError(t, c3.Delete(k))
	require.NoError(t, c3.Write())
	AssertGetHas(t, base, k, nil, false)
	AssertGetHas(t, base, k2, v2, true)
}

// Iterate checks that ranges combine cached and parent data in order.
func (s *TestSuite) Iterate(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	for _, k := range []string{"a", "b", "c", "d"} {
		require.NoError(t, base.Set([]byte(k), []byte("base-"+k)))
	}

	cache := base.CacheWrap()
	require.NoError(t, cache.Set([]byte("b"), []byte("cache-b")))
	require.NoError(t, cache.Set([]byte("bb"), []byte("cache-bb")))
	require.NoError(t, cache.Delete([]byte("c")))
	require.NoError(t, cache.Set([]byte("e"), []byte("cache-e")))

	cases := map[string]struct {
		start, end []byte
		reverse    bool
		wantKeys   []string
	}{
		"all ascending": {
			wantKeys: []string{"a", "b", "bb", "d", "e"},
		},
		"all descending": {
			reverse:  true,
			wantKeys: []string{"e", "d", "bb", "b", "a"},
		},
		"bounded ascending": {
			start:    []byte("b"),
			end:      []byte("d"),
			wantKeys: []string{"b", "bb"},
		},
		"bounded descending": {
			start:    []byte("b"),
			end:      []byte("e"),
			reverse:  true,
			wantKeys: []string{"d", "bb", "b"},
		},
		"open start": {
			end:      []byte("bb"),
			wantKeys: []string{"a", "b"},
		},
		"open end": {
			start:    []byte("c"),
			wantKeys: []string{"d", "e"},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var (
				it  Iterator
				err error
			)
			if tc.reverse {
				it, err = cache.ReverseIterator(tc.start, tc.end)
			} else {
				it, err = cache.Iterator(tc.start, tc.end)
			}
			require.NoError(t, err)
			models, err := ReadAll(it)
			require.NoError(t, err)
			keys := make([]string, len(models))
			for i, m := range models {
				keys[i] = string(m.Key)
			}
			assert.Equal(t, tc.wantKeys, keys)
		})
	}

	v, err := cache.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("cache-b"), v)
}

// NestedDiscard checks that discarding an inner layer keeps the outer one.
func (s *TestSuite) NestedDiscard(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	outer := base.CacheWrap()
	require.NoError(t, outer.Set([]byte("maker"), []byte("100")))

	inner := outer.CacheWrap()
	require.NoError(t, inner.Set([]byte("maker"), []byte("0")))
	require.NoError(t, inner.Set([]byte("vault"), []byte("100")))
	inner.Discard()

	AssertGetHas(t, outer, []byte("maker"), []byte("100"), true)
	AssertGetHas(t, outer, []byte("vault"), nil, false)

	require.NoError(t, outer.Write())
	AssertGetHas(t, base, []byte("maker"), []byte("100"), true)
}
