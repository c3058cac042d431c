package bus

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// NullBus is a no-op implementation of the bus interface for when Redis is disabled
type NullBus struct {
	logger *zap.Logger
}

// NewNullBus creates a new null bus instance
func NewNullBus(opts ...Option) *NullBus {
	o := buildOptions(opts)
	return &NullBus{logger: o.logger.Named("bus")}
}

// Close is a no-op for null bus
func (nb *NullBus) Close() error {
	return nil
}

// PublishCaseChange logs the change but doesn't actually publish it
func (nb *NullBus) PublishCaseChange(ctx context.Context, change CaseChange) error {
	change = change.complete(time.Now())
	nb.logger.Debug("would publish case change (redis disabled)",
		zap.Int64("case_id", change.CaseID), zap.String("action", change.Action))
	return nil
}

// ReadCaseChanges blocks until ctx is cancelled; nothing is ever delivered.
func (nb *NullBus) ReadCaseChanges(ctx context.Context, group, consumer string, handler func(ctx context.Context, change CaseChange) error) error {
	nb.logger.Debug("would read case changes (redis disabled)", zap.String("group", group), zap.String("consumer", consumer))
	<-ctx.Done()
	return ctx.Err()
}

// GetStats returns empty stats for null bus
func (nb *NullBus) GetStats(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{
		"type":   "null",
		"status": "disabled",
	}, nil
}

// HealthCheck always returns nil for null bus
func (nb *NullBus) HealthCheck(ctx context.Context) error {
	return nil
}
