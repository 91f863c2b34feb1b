package app

import (
	"time"

	"github.com/custodia-one/custos"
)

// Logging is a decorator to log messages as they pass through
type Logging struct{}

var _ custos.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Check logs error -> info, success -> debug
func (r Logging) Check(ctx custos.Context, store custos.KVStore, tx custos.Tx, next custos.Checker) (custos.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, start, resLog, err, true)
	return res, err
}

// Deliver logs error -> error, success -> info
func (r Logging) Deliver(ctx custos.Context, store custos.KVStore, tx custos.Tx, next custos.Deliverer) (custos.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, start, resLog, err, false)
	return res, err
}

// logDuration writes information about the time and result to the
// logger
func logDuration(ctx custos.Context, start time.Time, msg string, err error, lowPrio bool) {
	delta := time.Now().Sub(start)
	logger := custos.GetLogger(ctx).With("duration", delta/time.Microsecond)

	if err != nil {
		logger = logger.With("err", err)
		logger.Error(msg)
		return
	}

	// Although the message can be empty, we still want to emit a log
	// entry because it contains other relevant information.
	if lowPrio {
		logger.Debug(msg)
	} else {
		logger.Info(msg)
	}
}
