package cerberus

import (
	"encoding/json"
)

// Handler is a core engine that can process a few specific messages
// This could represent "add an owner", or "confirm a transaction"
type Handler interface {
	Deliver(ctx Context, store KVStore, tx Tx) (*DeliverResult, error)
}

// Decorator wraps a Handler to provide common functionality
// like authentication, or authorization, to many Handlers
type Decorator interface {
	Deliver(ctx Context, store KVStore, tx Tx, next Handler) (*DeliverResult, error)
}

// Registry is an interface to register your handler,
// the setup side of a Router
type Registry interface {
	Handle(path string, h Handler)
}

// DeliverResult captures any non-error result of a Deliver call.
type DeliverResult struct {
	// Data is a machine-parseable return value, like the id of a newly
	// submitted transaction.
	Data []byte
	// Log is human-readable informational string
	Log string
	// Events are all state transitions this request produced, in the
	// order they happened. They are published only when the request
	// commits.
	Events []Event
}

// Options are the genesis options
// Each extension can look up it's key and parse the json as desired
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key,
// and parses the json into the given obj.
// Returns an error if it cannot parse.
// Noop and no error if key is missing
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	return json.Unmarshal(msg, obj)
}

// Initializer implementations are used to initialize
// extensions from genesis file contents
type Initializer interface {
	FromGenesis(Options, KVStore) error
}
