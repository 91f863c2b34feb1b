package app

import (
	"fmt"
	"regexp"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/errors"
)

// isPath is the RegExp to ensure the routes make sense
var isPath = regexp.MustCompile(`^[a-zA-Z0-9_/]+$`).MatchString

// Router allows us to register many handlers with different paths and
// then direct each message to the proper handler.
//
// Minimal interface modeled after net/http.ServeMux
type Router struct {
	routes map[string]custos.Handler
}

var _ custos.Registry = (*Router)(nil)
var _ custos.Handler = (*Router)(nil)

// NewRouter initializes a router with no routes
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]custos.Handler, 10),
	}
}

// Handle adds a new Handler for the given path. Panics on duplicate or
// invalid path to detect misconfiguration during setup.
func (r *Router) Handle(path string, h custos.Handler) {
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %s", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// handler returns the registered Handler for this path. If no path is
// found, returns a noSuchPathHandler. This method always returns a
// non-nil Handler.
func (r *Router) handler(m custos.Msg) custos.Handler {
	path := m.Path()
	if h, ok := r.routes[path]; ok {
		return h
	}
	return noSuchPathHandler{path}
}

// Check dispatches to the proper handler based on path
func (r *Router) Check(ctx custos.Context, store custos.KVStore, tx custos.Tx) (custos.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return custos.CheckResult{}, errors.Wrap(err, "cannot load msg")
	}
	h := r.handler(msg)
	return h.Check(ctx, store, tx)
}

// Deliver dispatches to the proper handler based on path
func (r *Router) Deliver(ctx custos.Context, store custos.KVStore, tx custos.Tx) (custos.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return custos.DeliverResult{}, errors.Wrap(err, "cannot load msg")
	}
	h := r.handler(msg)
	return h.Deliver(ctx, store, tx)
}

type noSuchPathHandler struct {
	path string
}

var _ custos.Handler = noSuchPathHandler{}

// Check always returns ErrNotFound
func (h noSuchPathHandler) Check(custos.Context, custos.KVStore, custos.Tx) (custos.CheckResult, error) {
	return custos.CheckResult{}, errors.Wrapf(errors.ErrNotFound, "no handler for message path: %s", h.path)
}

// Deliver always returns ErrNotFound
func (h noSuchPathHandler) Deliver(custos.Context, custos.KVStore, custos.Tx) (custos.DeliverResult, error) {
	return custos.DeliverResult{}, errors.Wrapf(errors.ErrNotFound, "no handler for message path: %s", h.path)
}
