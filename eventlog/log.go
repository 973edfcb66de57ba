/*
Package eventlog keeps the events published by vaults.

Log is an in-memory, append-only record of events. Every event gets the
next sequence number, so a reader can resume with Since. Sink combines
several event sinks into one.
*/
package eventlog

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/cerberus-vault/cerberus"
	"github.com/cerberus-vault/cerberus/errors"
)

// Record is a single event stored in the log.
type Record struct {
	Seq     uint64          `json:"seq"`
	VaultID string          `json:"vault_id"`
	Name    string          `json:"name"`
	Time    time.Time       `json:"time"`
	Payload json.RawMessage `json:"payload"`

	Event cerberus.Event `json:"-"`
}

// Log is an append-only event log. It is safe for concurrent use.
type Log struct {
	mu      sync.RWMutex
	records []Record
}

var _ cerberus.EventSink = (*Log)(nil)

// New returns an empty log.
func New() *Log {
	return &Log{}
}

// Publish appends events of a single request. Either all of them are
// appended or none.
func (l *Log) Publish(ctx cerberus.Context, vaultID string, events []cerberus.Event) error {
	now, ok := cerberus.GetTime(ctx)
	if !ok {
		now = time.Now().UTC()
	}

	recs := make([]Record, 0, len(events))
	for i, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return errors.Wrapf(errors.ErrType, "event %d %s: %s", i, e.EventName(), err)
		}
		recs = append(recs, Record{
			VaultID: vaultID,
			Name:    e.EventName(),
			Time:    now,
			Payload: payload,
			Event:   e,
		})
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range recs {
		recs[i].Seq = uint64(len(l.records)) + 1
		l.records = append(l.records, recs[i])
	}
	return nil
}

// Records returns all records in the order they were published.
func (l *Log) Records() []Record {
	return l.Since(0)
}

// Since returns records with a sequence greater than seq.
func (l *Log) Since(seq uint64) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if seq >= uint64(len(l.records)) {
		return nil
	}
	out := make([]Record, len(l.records)-int(seq))
	copy(out, l.records[seq:])
	return out
}

// Len returns the number of records.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
