package commands

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

// Example will be written out to a file, .json and .bin
// Filename should have no path and no extension
type Example struct {
	Filename string
	Obj      tokenswap.Marshaller
}

// TestGenCmd generates sample binary and json encodings
// of various objects to test clients against.
func TestGenCmd(examples []Example, args []string) error {
	outdir := "testdata"
	if len(args) > 0 {
		outdir = args[0]
	}
	if err := os.MkdirAll(outdir, 0755); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	for _, ex := range examples {
		js, err := json.MarshalIndent(ex.Obj, "", "  ")
		if err != nil {
			return errors.Wrapf(errors.ErrInput, "%s: %s", ex.Filename, err)
		}
		jsFile := filepath.Join(outdir, ex.Filename+".json")
		if err := ioutil.WriteFile(jsFile, js, 0644); err != nil {
			return errors.Wrap(errors.ErrInput, err.Error())
		}

		bin, err := ex.Obj.Marshal()
		if err != nil {
			return errors.Wrap(err, ex.Filename)
		}
		binFile := filepath.Join(outdir, ex.Filename+".bin")
		if err := ioutil.WriteFile(binFile, bin, 0644); err != nil {
			return errors.Wrap(errors.ErrInput, err.Error())
		}
	}
	return nil
}
