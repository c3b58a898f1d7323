package server

import (
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iov-one/tokenswap/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

func genDummy(out io.Writer, args []string) (json.RawMessage, error) {
	if len(args) > 0 {
		return nil, errors.Wrap(errors.ErrInput, "no arguments expected")
	}
	io.WriteString(out, "generated")
	return json.RawMessage(`{"dummy": "x"}`), nil
}

func tempHome(t *testing.T) string {
	t.Helper()
	home, err := ioutil.TempDir("", "swapd-home")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(home) })
	return home
}

func TestInitCreatesGenesis(t *testing.T) {
	home := tempHome(t)
	var out bytes.Buffer

	require.NoError(t, InitCmd(genDummy, log.NewNopLogger(), &out, home, nil))
	assert.Equal(t, "generated", out.String())

	bz, err := ioutil.ReadFile(GenesisFile(home))
	require.NoError(t, err)
	var doc GenesisDoc
	require.NoError(t, json.Unmarshal(bz, &doc))

	var chainID string
	require.NoError(t, json.Unmarshal(doc["chain_id"], &chainID))
	assert.True(t, strings.HasPrefix(chainID, "swap-chain-"), chainID)
	assert.JSONEq(t, `{"dummy": "x"}`, string(doc[appStateKey]))

	// app_state is never overwritten
	err = InitCmd(genDummy, log.NewNopLogger(), &out, home, nil)
	assert.True(t, errors.ErrDuplicate.Is(err), "got %+v", err)
}

func TestInitKeepsExistingGenesis(t *testing.T) {
	home := tempHome(t)
	require.NoError(t, os.MkdirAll(filepath.Join(home, "config"), 0755))
	existing := `{"chain_id": "my-chain", "validators": [{"power": "10"}]}`
	require.NoError(t, ioutil.WriteFile(GenesisFile(home), []byte(existing), 0600))

	require.NoError(t, InitCmd(genDummy, log.NewNopLogger(), ioutil.Discard, home, nil))

	bz, err := ioutil.ReadFile(GenesisFile(home))
	require.NoError(t, err)
	var doc GenesisDoc
	require.NoError(t, json.Unmarshal(bz, &doc))
	assert.JSONEq(t, `"my-chain"`, string(doc["chain_id"]))
	assert.NotEmpty(t, doc["validators"])
	assert.NotEmpty(t, doc[appStateKey])
}

func TestInitGeneratorFailure(t *testing.T) {
	home := tempHome(t)
	err := InitCmd(genDummy, log.NewNopLogger(), ioutil.Discard, home, []string{"unexpected"})
	assert.True(t, errors.ErrInput.Is(err), "got %+v", err)
}
