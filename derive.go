package tokenswap

import (
	"crypto/sha256"
	"encoding/binary"
	"regexp"

	"github.com/iov-one/tokenswap/errors"
)

const (
	// DerivationExtension is the condition extension used by all derived
	// addresses. No signature scheme produces conditions in this
	// namespace, so a derived address can never be claimed with a key.
	DerivationExtension = "derive"

	// MaxSeedLength limits the size of a single derivation seed.
	MaxSeedLength = 32

	// MaxSeeds limits the number of seeds of a single derivation.
	MaxSeeds = 8
)

var isDerivationTag = regexp.MustCompile(`^[a-zA-Z0-9_\-]{3,8}$`).MatchString

// Derivation holds everything needed to reproduce a derived address.
//
// A derived address has no private key. Presenting the Derivation that
// produces it is the only way to act with its authority, which is why it
// must only ever be built by code that owns the corresponding records.
type Derivation struct {
	Tag   string
	Seeds [][]byte
	// Nonce (also known as bump) is the canonical nonce found by
	// FindDerivation. Storing it avoids repeating the search.
	Nonce uint8
}

// FindDerivation returns the canonical derivation for given tag and seeds.
// The result is deterministic: the same input always produces the same
// nonce and therefore the same address.
//
// Nonces are tried from 255 downwards and the first one whose seed digest
// has the top bit cleared is canonical.
func FindDerivation(tag string, seeds ...[]byte) (Derivation, error) {
	if err := validateSeeds(tag, seeds); err != nil {
		return Derivation{}, err
	}
	for n := 255; n >= 0; n-- {
		d := Derivation{Tag: tag, Seeds: seeds, Nonce: uint8(n)}
		if d.qualifies() {
			return d, nil
		}
	}
	return Derivation{}, errors.Wrapf(errors.ErrState, "no canonical nonce for %q", tag)
}

// Verify returns an error if the nonce is not the canonical one for the
// seeds. A verified derivation proves that its address was produced by
// FindDerivation and not chosen arbitrarily.
func (d Derivation) Verify() error {
	if err := validateSeeds(d.Tag, d.Seeds); err != nil {
		return err
	}
	if !d.qualifies() {
		return errors.Wrapf(errors.ErrUnauthorized, "nonce %d does not qualify", d.Nonce)
	}
	for n := 255; n > int(d.Nonce); n-- {
		higher := Derivation{Tag: d.Tag, Seeds: d.Seeds, Nonce: uint8(n)}
		if higher.qualifies() {
			return errors.Wrapf(errors.ErrUnauthorized, "nonce %d is not canonical", d.Nonce)
		}
	}
	return nil
}

// Condition returns the condition this derivation represents.
func (d Derivation) Condition() Condition {
	return NewCondition(DerivationExtension, d.Tag, d.material())
}

// Address returns the derived address.
func (d Derivation) Address() Address {
	return d.Condition().Address()
}

// Proves returns true if this derivation is canonical and produces the
// given address.
func (d Derivation) Proves(addr Address) bool {
	if d.Verify() != nil {
		return false
	}
	return d.Address().Equals(addr)
}

func (d Derivation) qualifies() bool {
	digest := sha256.Sum256(d.material())
	return digest[0]&0x80 == 0
}

// material serializes the seeds in a length-prefixed form so that no two
// different seed lists can produce the same bytes.
func (d Derivation) material() []byte {
	var out []byte
	buf := make([]byte, binary.MaxVarintLen64)
	for _, s := range d.Seeds {
		n := binary.PutUvarint(buf, uint64(len(s)))
		out = append(out, buf[:n]...)
		out = append(out, s...)
	}
	return append(out, d.Nonce)
}

func validateSeeds(tag string, seeds [][]byte) error {
	if !isDerivationTag(tag) {
		return errors.Wrapf(errors.ErrInput, "derivation tag %q", tag)
	}
	if len(seeds) == 0 || len(seeds) > MaxSeeds {
		return errors.Wrapf(errors.ErrInput, "derivation requires 1 to %d seeds", MaxSeeds)
	}
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return errors.Wrapf(errors.ErrInput, "seed %d longer than %d bytes", i, MaxSeedLength)
		}
	}
	return nil
}
