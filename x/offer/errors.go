package offer

import (
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x/holding"
	"github.com/iov-one/tokenswap/x/mint"
)

var (
	ErrInsufficientMakerBalance = errors.Register(140, "insufficient maker balance")
	ErrInsufficientTakerBalance = errors.Register(141, "insufficient taker balance")
	ErrEmptyVault               = errors.Register(142, "empty vault")
	ErrUnauthorizedRefund       = errors.Register(143, "unauthorized refund")
	// ErrOfferAlreadyTaken is returned together with errors.ErrNotFound
	// when an offer cannot be resolved, because a settled offer is
	// indistinguishable from one that never existed.
	ErrOfferAlreadyTaken = errors.Register(144, "offer already taken")
	ErrTooManyOffers     = errors.Register(145, "too many offers")
)

// Errors of other packages returned by the offer lifecycle.
var (
	ErrInvalidTokenMint     = mint.ErrInvalidTokenMint
	ErrInvalidTokenDecimals = holding.ErrInvalidTokenDecimals
	ErrInvalidAmount        = errors.ErrAmount
)

// errOfferNotFound reports a missing offer as both not found and taken.
func errOfferNotFound(addr interface{}) error {
	return errors.Wrapf(errors.Append(ErrOfferAlreadyTaken, errors.ErrNotFound), "offer %s", addr)
}
