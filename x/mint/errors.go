package mint

import "github.com/iov-one/tokenswap/errors"

// ErrInvalidTokenMint is returned when a mint is unknown or cannot be used
// in the requested way, for example when both sides of a trade name the
// same mint.
var ErrInvalidTokenMint = errors.Register(130, "invalid token mint")
