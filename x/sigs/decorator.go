/*
Package sigs provides basic authentication
middleware to verify the signatures on the transaction,
and maintain nonces for replay protection.
*/
package sigs

import (
	"context"

	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x"
)

const signatureVerifyCost = 500

// RegisterQuery will register this bucket as "/auth"
func RegisterQuery(qr tokenswap.QueryRouter) {
	NewBucket().Register("auth", qr)
}

// Decorator verifies the signatures and adds them to the context
type Decorator struct {
	allowMissingSigs bool
}

var _ tokenswap.Decorator = Decorator{}

// NewDecorator returns a default authentication decorator,
// which appends the chainID before checking the signature,
// and requires at least one signature to be present
func NewDecorator() Decorator {
	return Decorator{}
}

// AllowMissingSigs allows us to pass along items with no signatures
func (d Decorator) AllowMissingSigs() Decorator {
	d.allowMissingSigs = true
	return d
}

// Check verifies signatures before calling down the stack.
func (d Decorator) Check(ctx tokenswap.Context, store tokenswap.KVStore, tx tokenswap.Tx, next tokenswap.Checker) (*tokenswap.CheckResult, error) {
	ctx, signers, err := d.authenticate(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	res, err := next.Check(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	// Signature validation is the most expensive part of the check.
	res.GasAllocated += int64(signers * signatureVerifyCost)
	return res, nil
}

// Deliver verifies signatures before calling down the stack.
func (d Decorator) Deliver(ctx tokenswap.Context, store tokenswap.KVStore, tx tokenswap.Tx, next tokenswap.Deliverer) (*tokenswap.DeliverResult, error) {
	ctx, _, err := d.authenticate(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(ctx, store, tx)
}

func (d Decorator) authenticate(ctx tokenswap.Context, store tokenswap.KVStore, tx tokenswap.Tx) (tokenswap.Context, int, error) {
	var signers []tokenswap.Condition
	if stx, ok := tx.(SignedTx); ok {
		var err error
		signers, err = VerifyTxSignatures(store, stx, tokenswap.GetChainID(ctx))
		if err != nil {
			return nil, 0, errors.Wrap(err, "cannot verify signatures")
		}
	}
	if len(signers) == 0 && !d.allowMissingSigs {
		return nil, 0, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return withSigners(ctx, signers), len(signers), nil
}

type contextKey int // local to the sigs module

const (
	contextKeySigners contextKey = iota
)

// withSigners is a private method, as only this module
// can add a signer
func withSigners(ctx tokenswap.Context, signers []tokenswap.Condition) tokenswap.Context {
	return context.WithValue(ctx, contextKeySigners, signers)
}

// Authenticate gets/sets permissions on the given context key
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns who signed the current Context.
// May be empty
func (a Authenticate) GetConditions(ctx tokenswap.Context) []tokenswap.Condition {
	// (val, ok) form to return nil instead of panic if unset
	val, _ := ctx.Value(contextKeySigners).([]tokenswap.Condition)
	return val
}

// HasAddress returns true if the given address had signed in the current
// Context.
func (a Authenticate) HasAddress(ctx tokenswap.Context, addr tokenswap.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
