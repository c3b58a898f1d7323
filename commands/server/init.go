/*
Package server holds the commands shared by daemons built on this module:
creating the genesis file, validating it and serving the ABCI application.
*/
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/iov-one/tokenswap/errors"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
	tmtypes "github.com/tendermint/tendermint/types"
)

const appStateKey = "app_state"

// GenOptions can parse command-line arguments to generate default
// app_state for the genesis file. This is application-specific.
type GenOptions func(out io.Writer, args []string) (json.RawMessage, error)

// GenesisFile returns the path of the genesis file inside home.
func GenesisFile(home string) string {
	return filepath.Join(home, "config", "genesis.json")
}

// InitCmd writes the app_state produced by gen into the genesis file in
// home. A genesis file without validators is created first when none
// exists, so the app can be started before tendermint was initialized.
func InitCmd(gen GenOptions, logger log.Logger, out io.Writer, home string, args []string) error {
	genFile := GenesisFile(home)
	if fileExists(genFile) {
		logger.Info("Found genesis file", "path", genFile)
	} else {
		if err := os.MkdirAll(filepath.Dir(genFile), 0755); err != nil {
			return errors.Wrap(errors.ErrInput, err.Error())
		}
		genDoc := tmtypes.GenesisDoc{
			ChainID:     fmt.Sprintf("swap-chain-%v", cmn.RandStr(6)),
			GenesisTime: time.Now().UTC(),
		}
		if err := genDoc.SaveAs(genFile); err != nil {
			return errors.Wrap(errors.ErrInput, err.Error())
		}
		logger.Info("Generated genesis file", "path", genFile)
	}

	options, err := gen(out, args)
	if err != nil {
		return err
	}
	return addGenesisOptions(genFile, options)
}

func fileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}

// GenesisDoc involves some tendermint-specific structures we don't
// want to parse, so we just grab it into a raw object format,
// so we can add one line.
type GenesisDoc map[string]json.RawMessage

func addGenesisOptions(filename string, options json.RawMessage) error {
	bz, err := ioutil.ReadFile(filename)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	var doc GenesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return errors.Wrap(errors.ErrInput, "cannot parse genesis file")
	}
	if len(doc[appStateKey]) > 0 && string(doc[appStateKey]) != "null" {
		return errors.Wrap(errors.ErrDuplicate, "genesis file already has app_state")
	}

	doc[appStateKey] = options
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return ioutil.WriteFile(filename, out, 0600)
}
