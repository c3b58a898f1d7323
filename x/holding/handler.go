/*
Package holding implements per owner balances of registered mints and the
transfer engine that moves value between them.

Every holding is stored under an address derived from its owner and mint,
so anyone can locate it. Owners may be signers or derived addresses, for
example an offer vault. A derived owner has no key and can only authorize
a transfer by presenting the derivation that produces its address.
*/
package holding

import (
	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x"
	"github.com/iov-one/tokenswap/x/mint"
)

const (
	issueCost int64 = 50
	sendCost  int64 = 100
	closeCost int64 = 0
)

// RegisterQuery will register the holdings bucket as "/holdings" and its
// owner index as "/holdings/owner".
func RegisterQuery(qr tokenswap.QueryRouter) {
	NewBucket().Register("holdings", qr)
}

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r tokenswap.Registry, auth x.Authenticator, ctrl Controller) {
	mints := mint.NewBucket()
	r.Handle(&IssueMsg{}, IssueHandler{auth: auth, mints: mints, ctrl: ctrl})
	r.Handle(&SendMsg{}, SendHandler{auth: auth, ctrl: ctrl})
	r.Handle(&CloseMsg{}, CloseHandler{auth: auth, ctrl: ctrl})
}

// IssueHandler creates new supply on behalf of a mint authority.
type IssueHandler struct {
	auth  x.Authenticator
	mints mint.Bucket
	ctrl  Controller
}

var _ tokenswap.Handler = IssueHandler{}

func (h IssueHandler) Check(ctx tokenswap.Context, db tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &tokenswap.CheckResult{GasAllocated: issueCost}, nil
}

func (h IssueHandler) Deliver(ctx tokenswap.Context, db tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.Issue(db, msg.Owner, msg.Mint, msg.Amount); err != nil {
		return nil, err
	}
	return &tokenswap.DeliverResult{}, nil
}

func (h IssueHandler) validate(ctx tokenswap.Context, db tokenswap.KVStore, tx tokenswap.Tx) (*IssueMsg, error) {
	var msg IssueMsg
	if err := tokenswap.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	m, err := h.mints.Get(db, msg.Mint)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, m.Authority) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s can only be issued by its authority", m.Ticker)
	}
	return &msg, nil
}

// SendHandler moves value between holdings of two owners.
type SendHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ tokenswap.Handler = SendHandler{}

func (h SendHandler) Check(ctx tokenswap.Context, db tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &tokenswap.CheckResult{GasAllocated: sendCost}, nil
}

func (h SendHandler) Deliver(ctx tokenswap.Context, db tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.ctrl.Open(db, msg.Destination, msg.Mint); err != nil {
		return nil, errors.Wrap(err, "destination")
	}
	from, err := Address(msg.Source, msg.Mint)
	if err != nil {
		return nil, err
	}
	to, err := Address(msg.Destination, msg.Mint)
	if err != nil {
		return nil, err
	}
	err = h.ctrl.Transfer(ctx, db, Transfer{
		From:      from,
		To:        to,
		Amount:    msg.Amount,
		Mint:      msg.Mint,
		Authority: msg.Source,
	})
	if err != nil {
		return nil, err
	}
	return &tokenswap.DeliverResult{}, nil
}

func (h SendHandler) validate(ctx tokenswap.Context, tx tokenswap.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := tokenswap.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "source signature required")
	}
	return &msg, nil
}

// CloseHandler removes an empty holding of the signer.
type CloseHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ tokenswap.Handler = CloseHandler{}

func (h CloseHandler) Check(ctx tokenswap.Context, db tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &tokenswap.CheckResult{GasAllocated: closeCost}, nil
}

func (h CloseHandler) Deliver(ctx tokenswap.Context, db tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	addr, err := Address(msg.Owner, msg.Mint)
	if err != nil {
		return nil, err
	}
	err = h.ctrl.Close(ctx, db, Close{
		Holding:     addr,
		Authority:   msg.Owner,
		Destination: msg.Owner,
	})
	if err != nil {
		return nil, err
	}
	return &tokenswap.DeliverResult{}, nil
}

func (h CloseHandler) validate(ctx tokenswap.Context, tx tokenswap.Tx) (*CloseMsg, error) {
	var msg CloseMsg
	if err := tokenswap.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "owner signature required")
	}
	return &msg, nil
}
