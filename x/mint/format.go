package mint

import (
	"math/big"

	"github.com/iov-one/tokenswap/errors"
	"github.com/shopspring/decimal"
)

var maxAmount = new(big.Int).SetUint64(^uint64(0))

// Format returns the human readable representation of an amount expressed
// in the smallest units of a mint with given decimals.
//
//   Format(150, 2) == "1.5"
func Format(amount uint64, decimals uint32) string {
	v := new(big.Int).SetUint64(amount)
	return decimal.NewFromBigInt(v, -int32(decimals)).String()
}

// Parse is the reverse of Format. It fails if the value has more fractional
// digits than the mint supports, is negative or does not fit the amount
// type.
func Parse(value string, decimals uint32) (uint64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInput, "amount %q", value)
	}
	if d.IsNegative() {
		return 0, errors.Wrapf(errors.ErrAmount, "negative amount %q", value)
	}
	units := d.Shift(int32(decimals))
	if !units.Equal(units.Truncate(0)) {
		return 0, errors.Wrapf(errors.ErrAmount, "%q has more than %d decimals", value, decimals)
	}
	n := units.BigInt()
	if n.Cmp(maxAmount) > 0 {
		return 0, errors.Wrapf(errors.ErrOverflow, "amount %q", value)
	}
	return n.Uint64(), nil
}
