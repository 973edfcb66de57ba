package eventlog

import (
	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/errors"
)

// Sink passes events to every sink it is made of, in order. A failing
// sink does not prevent the remaining ones from receiving the events.
type Sink []cerberus.EventSink

var _ cerberus.EventSink = Sink(nil)

// Fanout returns a sink publishing to all non nil sinks.
func Fanout(sinks ...cerberus.EventSink) Sink {
	out := make(Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Publish returns the first error encountered.
func (s Sink) Publish(ctx cerberus.Context, vaultID string, events []cerberus.Event) error {
	var first error
	for i, sink := range s {
		if err := sink.Publish(ctx, vaultID, events); err != nil && first == nil {
			first = errors.Wrapf(err, "sink %d", i)
		}
	}
	return first
}
