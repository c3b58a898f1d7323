package sigs

import (
	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/weavetest"
)

// StdTx is a signed transaction carrying a mock message.
type StdTx struct {
	weavetest.Tx
	Signatures []*StdSignature
}

var _ SignedTx = (*StdTx)(nil)
var _ tokenswap.Tx = (*StdTx)(nil)

func NewStdTx(payload []byte) *StdTx {
	return &StdTx{Tx: weavetest.Tx{Msg: &weavetest.Msg{Serialized: payload}}}
}

func (tx *StdTx) GetSignatures() []*StdSignature {
	return tx.Signatures
}

func (tx *StdTx) GetSignBytes() ([]byte, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	return msg.Marshal()
}

// SigCheckHandler stores the seen signers on each call
type SigCheckHandler struct {
	Signers []tokenswap.Condition
}

var _ tokenswap.Handler = (*SigCheckHandler)(nil)

func (s *SigCheckHandler) Check(ctx tokenswap.Context, store tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.CheckResult, error) {
	s.Signers = Authenticate{}.GetConditions(ctx)
	return &tokenswap.CheckResult{}, nil
}

func (s *SigCheckHandler) Deliver(ctx tokenswap.Context, store tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.DeliverResult, error) {
	s.Signers = Authenticate{}.GetConditions(ctx)
	return &tokenswap.DeliverResult{}, nil
}
