package bus

import (
	"context"

	"go.uber.org/zap"

	"github.com/Ashfaaq98/customer-issues/internal/metrics"
)

// CaseChangesStream is the stream every case mutation is published to.
const CaseChangesStream = "case_changes"

// Bus carries case-change notifications between running processes.
type Bus interface {
	// PublishCaseChange publishes a change. A zero MessageID or Timestamp is
	// filled in.
	PublishCaseChange(ctx context.Context, change CaseChange) error

	// ReadCaseChanges blocks, delivering changes to handler until ctx is done.
	ReadCaseChanges(ctx context.Context, group, consumer string, handler func(ctx context.Context, change CaseChange) error) error

	// GetStats returns basic statistics about the bus
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// HealthCheck performs a health check on the bus connection
	HealthCheck(ctx context.Context) error

	// Close closes the bus connection
	Close() error
}

// Option configures a bus.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// NewBus creates a new bus instance based on the Redis URL.
// If redisURL is empty or Redis is unreachable, returns a NullBus.
func NewBus(redisURL string, opts ...Option) Bus {
	o := buildOptions(opts)

	if redisURL == "" {
		return NewNullBus(opts...)
	}

	redisBus, err := NewRedisBus(redisURL, opts...)
	if err == nil {
		return redisBus
	}

	o.logger.Warn("redis unavailable, case changes will not be shared", zap.Error(err))
	return NewNullBus(opts...)
}
