package utils

import (
	"time"

	"github.com/cerberus-vault/cerberus"
)

// Logging is a decorator to log messages as they pass through
type Logging struct{}

var _ cerberus.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Deliver logs rejected -> debug, success -> info
//
// A rejected request is an expected outcome of the vault rules, so it is
// not reported as an error.
func (r Logging) Deliver(ctx cerberus.Context, store cerberus.KVStore, tx cerberus.Tx, next cerberus.Handler) (*cerberus.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, start, cerberus.GetPath(tx), resLog, err)
	return res, err
}

// logDuration writes information about the time and result to the logger
func logDuration(ctx cerberus.Context, start time.Time, path, msg string, err error) {
	delta := time.Since(start)
	logger := cerberus.GetLogger(ctx).With("path", path, "duration", delta/time.Microsecond)

	// Although message can be empty, we still want to emit a log entry
	// because it contains other relevant information beside the message.
	if err != nil {
		logger.With("err", err).Debug(msg)
	} else {
		logger.Info(msg)
	}
}
