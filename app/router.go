package app

import (
	"regexp"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/errors"
)

// ErrNoSuchPath is returned when a message path has no handler registered.
var ErrNoSuchPath = errors.Register(1000, "no such path")

var isPath = regexp.MustCompile(`^[a-zA-Z0-9_\-]+/[a-zA-Z0-9_\-]+$`).MatchString

// Router allows us to register many handlers with different paths and
// dispatch each message to the one registered for its path.
type Router struct {
	routes map[string]cerberus.Handler
}

var _ cerberus.Registry = (*Router)(nil)
var _ cerberus.Handler = (*Router)(nil)

// NewRouter returns a new empty router instance.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]cerberus.Handler, 16),
	}
}

// Handle adds a new Handler for the given path. This function panics if
// the path is malformed or a handler was already registered for it.
func (r *Router) Handle(path string, h cerberus.Handler) {
	if !isPath(path) {
		panic("invalid path: " + path)
	}
	if _, ok := r.routes[path]; ok {
		panic("re-registering route: " + path)
	}
	r.routes[path] = h
}

// Handler returns the registered Handler for this path. If no path is
// found, returns a notFoundHandler that always errors.
func (r *Router) Handler(path string) cerberus.Handler {
	if h, ok := r.routes[path]; ok {
		return h
	}
	return notFoundHandler(path)
}

// Deliver dispatches to the handler registered for the message path.
func (r *Router) Deliver(ctx cerberus.Context, store cerberus.KVStore, tx cerberus.Tx) (*cerberus.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	return r.Handler(msg.Path()).Deliver(ctx, store, tx)
}

type notFoundHandler string

func (path notFoundHandler) Deliver(cerberus.Context, cerberus.KVStore, cerberus.Tx) (*cerberus.DeliverResult, error) {
	return nil, errors.Wrapf(ErrNoSuchPath, "path %q", string(path))
}
