/*
Package mint keeps the registry of asset types that can be held and
traded. A mint is identified by its ticker and declares the unit precision
of all its amounts.
*/
package mint

import (
	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x"
)

const createMintCost = 100

// RegisterQuery will register the mint bucket as "/mints"
func RegisterQuery(qr tokenswap.QueryRouter) {
	NewBucket().Register("mints", qr)
}

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r tokenswap.Registry, auth x.Authenticator) {
	r.Handle(&CreateMintMsg{}, CreateMintHandler{auth: auth, bucket: NewBucket()})
}

// CreateMintHandler registers mints signed by their authority.
type CreateMintHandler struct {
	auth   x.Authenticator
	bucket Bucket
}

var _ tokenswap.Handler = CreateMintHandler{}

func (h CreateMintHandler) Check(ctx tokenswap.Context, db tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tokenswap.CheckResult{GasAllocated: createMintCost}, nil
}

func (h CreateMintHandler) Deliver(ctx tokenswap.Context, db tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	m := &Mint{
		Ticker:    msg.Ticker,
		Name:      msg.Name,
		Decimals:  msg.Decimals,
		Authority: msg.Authority,
	}
	if err := h.bucket.Create(db, m); err != nil {
		return nil, errors.Wrap(err, "cannot store mint")
	}
	tokenswap.GetLogger(ctx).Info("mint created", "ticker", m.Ticker, "decimals", m.Decimals)
	return &tokenswap.DeliverResult{Data: []byte(m.Ticker)}, nil
}

func (h CreateMintHandler) validate(ctx tokenswap.Context, db tokenswap.KVStore, tx tokenswap.Tx) (*CreateMintMsg, error) {
	var msg CreateMintMsg
	if err := tokenswap.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Authority) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "authority signature required")
	}
	// A mint can be registered only once and must not be updated.
	switch exists, err := h.bucket.Has(db, []byte(msg.Ticker)); {
	case err != nil:
		return nil, err
	case exists:
		return nil, errors.Wrapf(errors.ErrDuplicate, "ticker %s", msg.Ticker)
	}
	return &msg, nil
}
