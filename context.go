package cerberus

import (
	"context"
	"regexp"
	"time"

	"github.com/tendermint/tendermint/libs/log"
)

// Context is just an alias for the standard implementation.
// We use functions to extend it to our domain
type Context = context.Context

type contextKey int // local to the cerberus module

const (
	contextKeyLogger contextKey = iota
	contextKeyVaultID
	contextKeyTime
)

var (
	// DefaultLogger is used for all context that have not
	// set anything themselves
	DefaultLogger = log.NewNopLogger()
)

// WithLogger sets the logger for this Context
func WithLogger(ctx Context, logger log.Logger) Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// WithLogInfo accepts keyvalue pairs, and returns another
// context like this, after passing all the keyvals to the
// Logger
func WithLogInfo(ctx Context, keyvals ...interface{}) Context {
	logger := GetLogger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// GetLogger returns the currently set logger, or
// DefaultLogger if none was set
func GetLogger(ctx Context) log.Logger {
	val, ok := ctx.Value(contextKeyLogger).(log.Logger)
	if !ok {
		return DefaultLogger
	}
	return val
}

var isValidVaultID = regexp.MustCompile(`^[a-z0-9_\-]{3,32}$`).MatchString

// IsValidVaultID returns true if given string can be used as a vault
// identifier: 3 to 32 lower case alphanumeric characters, dashes and
// underscores.
func IsValidVaultID(id string) bool {
	return isValidVaultID(id)
}

// WithVaultID sets the id of the vault that is processing the request,
// replacing the id of any vault the context was used with before.
func WithVaultID(ctx Context, id string) Context {
	return context.WithValue(ctx, contextKeyVaultID, id)
}

// GetVaultID returns the id of the vault processing the request.
func GetVaultID(ctx Context) (string, bool) {
	val, ok := ctx.Value(contextKeyVaultID).(string)
	return val, ok
}

// WithTime sets the time that the request is processed at. Events and read
// models use it as the timestamp of every state transition.
func WithTime(ctx Context, t time.Time) Context {
	return context.WithValue(ctx, contextKeyTime, t.UTC())
}

// GetTime returns the request time, if set.
func GetTime(ctx Context) (time.Time, bool) {
	val, ok := ctx.Value(contextKeyTime).(time.Time)
	return val, ok
}
