package custos

import (
	"context"
	"time"

	"github.com/tendermint/tendermint/libs/log"
)

// Context is just a shortcut for the standard implementation. Values
// are added by the app and middleware and read by the handlers.
type Context = context.Context

type contextKey int

const (
	contextKeyHeight contextKey = iota
	contextKeyChainID
	contextKeyBlockTime
	contextKeyLogger
)

// DefaultLogger is used for all context that have not set anything
// themselves.
var DefaultLogger = log.NewNopLogger()

// WithHeight sets the block height into the Context.
func WithHeight(ctx Context, height int64) Context {
	return context.WithValue(ctx, contextKeyHeight, height)
}

// GetHeight returns the current block height and true, or false if
// not set.
func GetHeight(ctx Context) (int64, bool) {
	val, ok := ctx.Value(contextKeyHeight).(int64)
	return val, ok
}

// WithChainID sets the chain id into the Context.
func WithChainID(ctx Context, chainID string) Context {
	return context.WithValue(ctx, contextKeyChainID, chainID)
}

// GetChainID returns the chain id from the context. Panics if the
// chain id is not set, as this is a programming error.
func GetChainID(ctx Context) string {
	val, ok := ctx.Value(contextKeyChainID).(string)
	if !ok {
		panic("chain id not set in context")
	}
	return val
}

// WithBlockTime sets the block time into the Context. Block time is
// the only source of "now" that handlers may rely on: it is agreed
// upon by consensus and deterministic.
func WithBlockTime(ctx Context, t time.Time) Context {
	return context.WithValue(ctx, contextKeyBlockTime, t)
}

// BlockTime returns the block time and true, or false if not set.
func BlockTime(ctx Context) (time.Time, bool) {
	val, ok := ctx.Value(contextKeyBlockTime).(time.Time)
	return val, ok
}

// WithLogger sets the logger into the Context.
func WithLogger(ctx Context, logger log.Logger) Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// GetLogger returns the logger from the context, or DefaultLogger if
// none was set.
func GetLogger(ctx Context) log.Logger {
	if logger, ok := ctx.Value(contextKeyLogger).(log.Logger); ok {
		return logger
	}
	return DefaultLogger
}

// WithLogInfo accepts keyvalue pairs, and returns another context like
// this, after passing all the keyvals to the Logger
func WithLogInfo(ctx Context, keyvals ...interface{}) Context {
	logger := GetLogger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// IsExpired returns true if given time is in the past as compared to
// the "now" of the block. Expiration is inclusive: if the block time
// is equal to the expiration time this function returns true.
func IsExpired(ctx Context, t UnixTime) bool {
	now, ok := BlockTime(ctx)
	if !ok {
		panic("block time not set in context")
	}
	return t <= AsUnixTime(now)
}
