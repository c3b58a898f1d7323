package app

import (
	"fmt"
	"regexp"

	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

// isPath is the RegExp to ensure the routes make sense
var isPath = regexp.MustCompile(`^[a-zA-Z0-9_/]+$`).MatchString

// Router allows us to register many handlers with different
// paths and then direct each message to the proper handler.
//
// Minimal interface modeled after net/http.ServeMux
type Router struct {
	routes map[string]tokenswap.Handler
}

var _ tokenswap.Registry = (*Router)(nil)
var _ tokenswap.Handler = (*Router)(nil)

// NewRouter returns a new empty router instance.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]tokenswap.Handler, 10),
	}
}

// Handle adds a new Handler for the given message type. It panics if
// another Handler was already registered for the same path, or if the
// path is not valid.
func (r *Router) Handle(msg tokenswap.Msg, h tokenswap.Handler) {
	path := msg.Path()
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %s", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// handler returns the registered Handler for this path. If no path is
// found, returns a noSuchPath Handler. Never returns nil.
func (r *Router) handler(m tokenswap.Msg) tokenswap.Handler {
	path := m.Path()
	if h, ok := r.routes[path]; ok {
		return h
	}
	return notFoundHandler(path)
}

// Check dispatches to the proper handler based on path
func (r *Router) Check(ctx tokenswap.Context, store tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	return r.handler(msg).Check(ctx, store, tx)
}

// Deliver dispatches to the proper handler based on path
func (r *Router) Deliver(ctx tokenswap.Context, store tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	return r.handler(msg).Deliver(ctx, store, tx)
}

// notFoundHandler always returns ErrNotFound error regardless of the
// arguments.
type notFoundHandler string

func (path notFoundHandler) Check(ctx tokenswap.Context, store tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for %s", string(path))
}

func (path notFoundHandler) Deliver(ctx tokenswap.Context, store tokenswap.KVStore, tx tokenswap.Tx) (*tokenswap.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for %s", string(path))
}
