package cerberus

// Event is a record of a single successful state transition. Events are
// produced by handlers and published to an EventSink only after the
// request that produced them committed.
type Event interface {
	// EventName returns the name a listener can use to recognize the
	// event, for example "AddOwner" or "Execution".
	EventName() string
}

// EventSink is an append-only destination for events. An indexer or an
// audit log implements it to build a read model of the vault state. A sink
// never writes vault state.
type EventSink interface {
	// Publish appends all events produced by a single committed request
	// of the given vault. Events are in the order they happened.
	Publish(ctx Context, vaultID string, events []Event) error
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(ctx Context, vaultID string, events []Event) error

func (fn EventSinkFunc) Publish(ctx Context, vaultID string, events []Event) error {
	return fn(ctx, vaultID, events)
}

// DiscardEvents is an EventSink that drops everything.
var DiscardEvents EventSink = EventSinkFunc(func(Context, string, []Event) error { return nil })
