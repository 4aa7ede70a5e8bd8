package memgo

import (
	"log/slog"

	"github.com/hupe1980/memgo/strategy"
)

type options struct {
	strategy         strategy.Strategy
	logger           *Logger
	metricsCollector MetricsCollector
}

// Option configures Manager construction.
type Option func(*options)

// WithStrategy sets the initial placement strategy.
//
// If nil is passed, strategy.BestFit is used.
func WithStrategy(s strategy.Strategy) Option {
	return func(o *options) {
		if s == nil {
			s = strategy.BestFit
		}
		o.strategy = s
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		strategy:         strategy.BestFit,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
