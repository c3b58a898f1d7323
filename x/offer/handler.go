/*
Package offer implements a two party token swap escrow.

A maker locks an amount of one mint in a vault and asks for an amount of
another mint in exchange. A taker settles the offer atomically, or the
maker withdraws the locked amount before that happens.

An offer is stored under an address derived from its maker and ID. The
vault is a vault holding of the offered mint owned by that address, so no
key can move the locked value and no send can add to it. Only this package
moves it, by presenting the derivation of the offer address.
*/
package offer

import (
	"strings"

	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x"
	cmn "github.com/tendermint/tendermint/libs/common"
)

const (
	makeOfferCost     int64 = 300
	takeOfferCost     int64 = 300
	withdrawOfferCost int64 = 0
)

// OfferTagKey is the tag key holding the address of the offer a
// transaction acted on.
const OfferTagKey = "offer"

// RegisterQuery will register the offers bucket as "/offers" and the
// configuration as "/offerconf".
func RegisterQuery(qr tokenswap.QueryRouter) {
	NewBucket().Register("offers", qr)
	NewConfigurationBucket().Register("offerconf", qr)
}

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r tokenswap.Registry, auth x.Authenticator, ctrl Controller) {
	r.Handle(&MakeOfferMsg{}, MakeOfferHandler{auth: auth, ctrl: ctrl})
	r.Handle(&TakeOfferMsg{}, TakeOfferHandler{auth: auth, ctrl: ctrl})
	r.Handle(&RefundOfferMsg{}, WithdrawOfferHandler{auth: auth, ctrl: ctrl})
	r.Handle(&CancelOfferMsg{}, WithdrawOfferHandler{auth: auth, ctrl: ctrl})
}

// MakeOfferHandler opens offers.
type MakeOfferHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ tokenswap.Handler = MakeOfferHandler{}

// Check runs the whole operation, so that a transaction that would fail
// during delivery is rejected early.
func (h MakeOfferHandler) Check(ctx tokenswap.Context, db tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.CheckResult, error) {
	if _, err := h.make(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tokenswap.CheckResult{GasAllocated: makeOfferCost}, nil
}

func (h MakeOfferHandler) Deliver(ctx tokenswap.Context, db tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.DeliverResult, error) {
	offer, err := h.make(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return result(offer), nil
}

func (h MakeOfferHandler) make(ctx tokenswap.Context, db tokenswap.KVStore, tx tokenswap.Tx) (*Offer, error) {
	var msg MakeOfferMsg
	if err := tokenswap.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	maker, err := signerOr(ctx, h.auth, msg.Maker)
	if err != nil {
		return nil, err
	}
	return h.ctrl.Make(ctx, db, maker, msg.OfferID, msg.MintA, msg.MintB, msg.AmountA, msg.AmountB)
}

// TakeOfferHandler settles offers.
type TakeOfferHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ tokenswap.Handler = TakeOfferHandler{}

func (h TakeOfferHandler) Check(ctx tokenswap.Context, db tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.CheckResult, error) {
	if _, err := h.take(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tokenswap.CheckResult{GasAllocated: takeOfferCost}, nil
}

func (h TakeOfferHandler) Deliver(ctx tokenswap.Context, db tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.DeliverResult, error) {
	offer, err := h.take(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return result(offer), nil
}

func (h TakeOfferHandler) take(ctx tokenswap.Context, db tokenswap.KVStore, tx tokenswap.Tx) (*Offer, error) {
	var msg TakeOfferMsg
	if err := tokenswap.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	taker, err := signerOr(ctx, h.auth, msg.Taker)
	if err != nil {
		return nil, err
	}
	return h.ctrl.Take(ctx, db, taker, msg.Maker, msg.OfferID)
}

// WithdrawOfferHandler handles both refund and cancel requests.
type WithdrawOfferHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ tokenswap.Handler = WithdrawOfferHandler{}

func (h WithdrawOfferHandler) Check(ctx tokenswap.Context, db tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.CheckResult, error) {
	if _, err := h.withdraw(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tokenswap.CheckResult{GasAllocated: withdrawOfferCost}, nil
}

func (h WithdrawOfferHandler) Deliver(ctx tokenswap.Context, db tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.DeliverResult, error) {
	offer, err := h.withdraw(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return result(offer), nil
}

func (h WithdrawOfferHandler) withdraw(ctx tokenswap.Context, db tokenswap.KVStore, tx tokenswap.Tx) (*Offer, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot get transaction message")
	}
	caller := x.MainSigner(ctx, h.auth).Address()
	switch msg := msg.(type) {
	case *RefundOfferMsg:
		if err := msg.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid message")
		}
		return h.ctrl.Refund(ctx, db, caller, msg.Maker, msg.OfferID)
	case *CancelOfferMsg:
		if err := msg.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid message")
		}
		return h.ctrl.Cancel(ctx, db, caller, msg.Maker, msg.OfferID)
	default:
		return nil, errors.WithType(errors.ErrMsg, msg)
	}
}

// signerOr returns addr if set, otherwise the address of the main signer.
func signerOr(ctx tokenswap.Context, auth x.Authenticator, addr tokenswap.Address) (tokenswap.Address, error) {
	if addr != nil {
		return addr, nil
	}
	signer := x.MainSigner(ctx, auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return signer.Address(), nil
}

func result(offer *Offer) *tokenswap.DeliverResult {
	addr := offer.Address()
	return &tokenswap.DeliverResult{
		Data: addr,
		Tags: []cmn.KVPair{{
			Key:   []byte(OfferTagKey),
			Value: []byte(strings.ToLower(addr.String())),
		}},
	}
}
