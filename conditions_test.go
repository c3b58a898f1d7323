package tokenswap_test

import (
	"encoding/json"
	"fmt"
	"testing"

	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressPrinting(t *testing.T) {
	Convey("test hexademical address printing", t, func() {
		b := []byte("ABCD123456LHB")
		addr := tokenswap.Address(b)

		So(addr.String(), ShouldEqual, fmt.Sprintf("%X", b))
		So(tokenswap.Address(nil).String(), ShouldEqual, "(nil)")
	})

	Convey("test hexademical condition printing", t, func() {
		cond := tokenswap.NewCondition("foo", "bar", []byte("ABCD123456LHB"))

		So(cond.String(), ShouldEqual, fmt.Sprintf("foo/bar/%X", []byte("ABCD123456LHB")))
		So(cond.Validate(), ShouldBeNil)
		So(tokenswap.Condition("foo").Validate(), ShouldNotBeNil)
	})
}

func TestAddressUnmarshalJSON(t *testing.T) {
	addr := tokenswap.Address("twenty-bytes-address")
	enc, err := addr.Bech32("swap")
	require.NoError(t, err)

	cases := map[string]struct {
		json     string
		wantErr  *errors.Error
		wantAddr tokenswap.Address
	}{
		"default decoding": {
			json:     `"7477656e74792d62797465732d61646472657373"`,
			wantAddr: addr,
		},
		"hex decoding": {
			json:     `"hex:7477656e74792d62797465732d61646472657373"`,
			wantAddr: addr,
		},
		"bech32 decoding": {
			json:     `"bech32:` + enc + `"`,
			wantAddr: addr,
		},
		"cond decoding": {
			json:     `"cond:foo/bar/636f6e646974696f6e64617461"`,
			wantAddr: tokenswap.NewCondition("foo", "bar", []byte("conditiondata")).Address(),
		},
		"invalid condition format": {
			json:    `"cond:foo/636f6e646974696f6e64617461"`,
			wantErr: errors.ErrInput,
		},
		"invalid condition data": {
			json:    `"cond:foo/bar/zzzzz"`,
			wantErr: errors.ErrInput,
		},
		"invalid bech32": {
			json:    `"bech32:swap1xxxx"`,
			wantErr: errors.ErrInput,
		},
		"too short": {
			json:    `"6865782d61646472"`,
			wantErr: errors.ErrInput,
		},
		"zero address": {
			json:     `""`,
			wantAddr: nil,
		},
		"zero hex address": {
			json:     `"hex:"`,
			wantAddr: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var a tokenswap.Address
			err := json.Unmarshal([]byte(tc.json), &a)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "got error: %+v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantAddr, a)
		})
	}
}

func TestAddressMarshalJSON(t *testing.T) {
	addr := tokenswap.Address("twenty-bytes-address")
	got, err := json.Marshal(addr)
	require.NoError(t, err)
	assert.Equal(t, `"7477656E74792D62797465732D61646472657373"`, string(got))
}

func TestParseCondition(t *testing.T) {
	cond := tokenswap.NewCondition("foo", "bar", []byte("conditiondata"))
	got, err := tokenswap.ParseCondition(cond.String())
	require.NoError(t, err)
	assert.True(t, cond.Equals(got))

	_, err = tokenswap.ParseCondition("foo/bar")
	assert.True(t, errors.ErrInput.Is(err), "got %+v", err)
}
