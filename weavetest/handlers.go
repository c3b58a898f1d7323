package weavetest

import tokenswap "github.com/iov-one/tokenswap"

// Handler is a mock implementation of the tokenswap.Handler interface.
//
// Each call is counted. When Key is set, the handler writes Key and Value to
// the store before returning, which lets tests verify rollbacks.
type Handler struct {
	Key   []byte
	Value []byte

	checkCall   int
	CheckResult tokenswap.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult tokenswap.DeliverResult
	DeliverErr    error

	// Panic if set is raised by every call.
	Panic interface{}
}

var _ tokenswap.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx tokenswap.Context, db tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.CheckResult, error) {
	h.checkCall++
	if err := h.write(db); err != nil {
		return nil, err
	}
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx tokenswap.Context, db tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.DeliverResult, error) {
	h.deliverCall++
	if err := h.write(db); err != nil {
		return nil, err
	}
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) write(db tokenswap.KVStore) error {
	if h.Panic != nil {
		panic(h.Panic)
	}
	if h.Key == nil {
		return nil
	}
	return db.Set(h.Key, h.Value)
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
