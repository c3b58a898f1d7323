package holding

import "github.com/iov-one/tokenswap/errors"

// ErrInvalidTokenDecimals is returned when the precision declared by a mint
// does not match the precision recorded on a holding of that mint.
var ErrInvalidTokenDecimals = errors.Register(131, "invalid token decimals")
