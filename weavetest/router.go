package weavetest

import (
	"fmt"

	tokenswap "github.com/iov-one/tokenswap"
)

// Router is a minimal tokenswap.Registry that lets tests reach registered
// handlers by message path.
type Router map[string]tokenswap.Handler

var _ tokenswap.Registry = Router(nil)

// Handle registers h for the path of m.
func (r Router) Handle(m tokenswap.Msg, h tokenswap.Handler) {
	if _, ok := r[m.Path()]; ok {
		panic(fmt.Sprintf("Re-registering route: %s", m.Path()))
	}
	r[m.Path()] = h
}

// Handler returns the handler registered for the path of m. It panics if
// none is registered.
func (r Router) Handler(m tokenswap.Msg) tokenswap.Handler {
	h, ok := r[m.Path()]
	if !ok {
		panic(fmt.Sprintf("no handler for %s", m.Path()))
	}
	return h
}
