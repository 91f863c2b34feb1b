package custos

import (
	"fmt"
	"regexp"
)

const (
	// KeyQueryMod means to query for exact match (key)
	KeyQueryMod = ""
	// PrefixQueryMod means to query for anything with this prefix
	PrefixQueryMod = "prefix"
)

// QueryHandler is anything that can process ABCI queries
type QueryHandler interface {
	Query(db ReadOnlyKVStore, mod string, data []byte) ([]Model, error)
}

// QueryRouter allows us to register many query handlers to different
// paths and dispatch to the proper one.
type QueryRouter struct {
	routes map[string]QueryHandler
}

// NewQueryRouter initializes a QueryRouter.
func NewQueryRouter() QueryRouter {
	return QueryRouter{
		routes: make(map[string]QueryHandler, 10),
	}
}

// pathPat is the format of a valid query path
var pathPat = regexp.MustCompile(`^/[a-z0-9_\-/]{0,60}$`)

// Register adds a new handler for the given path. Panics on duplicate
// or invalid path to detect misconfiguration on setup.
func (r QueryRouter) Register(path string, h QueryHandler) {
	if !pathPat.MatchString(path) {
		panic(fmt.Sprintf("invalid query path: %s", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("duplicate query path: %s", path))
	}
	r.routes[path] = h
}

// Handler returns the registered Handler for the path, or nil.
func (r QueryRouter) Handler(path string) QueryHandler {
	return r.routes[path]
}
