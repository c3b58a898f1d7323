package tokenswap

import (
	"bytes"
	"testing"

	"github.com/iov-one/tokenswap/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindDerivationIsDeterministic(t *testing.T) {
	owner := bytes.Repeat([]byte{7}, 20)

	a, err := FindDerivation("offer", owner, []byte("1"))
	require.NoError(t, err)
	b, err := FindDerivation("offer", owner, []byte("1"))
	require.NoError(t, err)
	assert.Equal(t, a.Nonce, b.Nonce)
	assert.Equal(t, a.Address(), b.Address())
	assert.NoError(t, a.Verify())
	assert.True(t, a.Proves(a.Address()))

	other, err := FindDerivation("offer", owner, []byte("2"))
	require.NoError(t, err)
	assert.NotEqual(t, a.Address(), other.Address())
	assert.False(t, other.Proves(a.Address()))

	// seeds are length prefixed, so moving bytes between them changes the
	// address
	split, err := FindDerivation("offer", owner[:10], append(owner[10:], '1'))
	require.NoError(t, err)
	assert.NotEqual(t, a.Address(), split.Address())

	tag, err := FindDerivation("vault", owner, []byte("1"))
	require.NoError(t, err)
	assert.NotEqual(t, a.Address(), tag.Address())
}

func TestDerivationRejectsNonCanonicalNonce(t *testing.T) {
	d, err := FindDerivation("holding", []byte("owner"), []byte("XXX"))
	require.NoError(t, err)

	for n := 0; n < int(d.Nonce); n++ {
		forged := Derivation{Tag: d.Tag, Seeds: d.Seeds, Nonce: uint8(n)}
		err := forged.Verify()
		assert.True(t, errors.ErrUnauthorized.Is(err), "nonce %d: %+v", n, err)
		assert.False(t, forged.Proves(forged.Address()))
	}
	if d.Nonce < 255 {
		forged := Derivation{Tag: d.Tag, Seeds: d.Seeds, Nonce: d.Nonce + 1}
		assert.Error(t, forged.Verify())
	}
}

func TestDerivedAddressCannotBeSigned(t *testing.T) {
	d, err := FindDerivation("offer", []byte("maker"))
	require.NoError(t, err)
	ext, tag, _, err := d.Condition().Parse()
	require.NoError(t, err)
	assert.Equal(t, DerivationExtension, ext)
	assert.Equal(t, "offer", tag)
}

func TestDerivationInput(t *testing.T) {
	cases := map[string]struct {
		tag   string
		seeds [][]byte
	}{
		"invalid tag":    {tag: "o", seeds: [][]byte{[]byte("a")}},
		"no seeds":       {tag: "offer"},
		"too many seeds": {tag: "offer", seeds: make([][]byte, MaxSeeds+1)},
		"seed too long":  {tag: "offer", seeds: [][]byte{make([]byte, MaxSeedLength+1)}},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := FindDerivation(tc.tag, tc.seeds...)
			assert.True(t, errors.ErrInput.Is(err), "got %+v", err)
			err = Derivation{Tag: tc.tag, Seeds: tc.seeds}.Verify()
			assert.True(t, errors.ErrInput.Is(err), "got %+v", err)
		})
	}
}
