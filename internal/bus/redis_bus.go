package bus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Ashfaaq98/customer-issues/internal/metrics"
)

// RedisBus provides Redis Streams-based case-change messaging.
type RedisBus struct {
	client  *redis.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// StreamMessage represents a message in a Redis Stream
type StreamMessage struct {
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields"`
}

// StreamHandler is a function that processes stream messages
type StreamHandler func(ctx context.Context, message StreamMessage) error

// NewRedisBus creates a new Redis bus instance
func NewRedisBus(redisURL string, opts ...Option) (*RedisBus, error) {
	o := buildOptions(opts)

	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisBus{
		client:  client,
		logger:  o.logger.Named("bus"),
		metrics: o.metrics,
	}, nil
}

// Close closes the Redis connection
func (rb *RedisBus) Close() error {
	return rb.client.Close()
}

// PublishCaseChange appends a change to the case_changes stream.
func (rb *RedisBus) PublishCaseChange(ctx context.Context, change CaseChange) error {
	change = change.complete(time.Now())

	result := rb.client.XAdd(ctx, &redis.XAddArgs{
		Stream: CaseChangesStream,
		Values: change.fields(),
	})
	if err := result.Err(); err != nil {
		return fmt.Errorf("failed to publish case change: %w", err)
	}

	rb.metrics.Published(change.Action)
	rb.logger.Debug("published case change",
		zap.Int64("case_id", change.CaseID),
		zap.String("action", change.Action),
		zap.String("message_id", change.MessageID))
	return nil
}

// CreateConsumerGroup creates a consumer group for a stream if it doesn't exist
func (rb *RedisBus) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	// Start at "$" so a new console only sees changes made after it started.
	err := rb.client.XGroupCreateMkStream(ctx, stream, group, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group %s for stream %s: %w", group, stream, err)
	}

	rb.logger.Debug("consumer group ready", zap.String("stream", stream), zap.String("group", group))
	return nil
}

// ReadStream reads messages from a stream using consumer groups
func (rb *RedisBus) ReadStream(ctx context.Context, stream, group, consumer string, handler StreamHandler) error {
	if err := rb.CreateConsumerGroup(ctx, stream, group); err != nil {
		return err
	}

	rb.logger.Info("starting stream reader",
		zap.String("stream", stream), zap.String("group", group), zap.String("consumer", consumer))

	for {
		select {
		case <-ctx.Done():
			rb.logger.Info("stream reader stopping", zap.String("stream", stream))
			return ctx.Err()
		default:
		}

		result := rb.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    group,
			Consumer: consumer,
			Streams:  []string{stream, ">"},
			Count:    10,
			Block:    1 * time.Second,
		})

		if err := result.Err(); err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			rb.logger.Warn("error reading from stream", zap.String("stream", stream), zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, s := range result.Val() {
			for _, message := range s.Messages {
				streamMsg := StreamMessage{
					ID:     message.ID,
					Fields: make(map[string]string, len(message.Values)),
				}
				for key, value := range message.Values {
					if strValue, ok := value.(string); ok {
						streamMsg.Fields[key] = strValue
					}
				}

				if err := handler(ctx, streamMsg); err != nil {
					rb.logger.Warn("error processing message", zap.String("id", message.ID), zap.Error(err))
					continue
				}

				if err := rb.client.XAck(ctx, s.Stream, group, message.ID).Err(); err != nil {
					rb.logger.Warn("error acknowledging message", zap.String("id", message.ID), zap.Error(err))
				}
			}
		}
	}
}

// ReadCaseChanges reads from the case_changes stream.
func (rb *RedisBus) ReadCaseChanges(ctx context.Context, group, consumer string, handler func(ctx context.Context, change CaseChange) error) error {
	return rb.ReadStream(ctx, CaseChangesStream, group, consumer, func(ctx context.Context, message StreamMessage) error {
		change, err := caseChangeFromFields(message.Fields)
		if err != nil {
			return err
		}
		return handler(ctx, change)
	})
}

// GetStreamInfo returns information about a stream
func (rb *RedisBus) GetStreamInfo(ctx context.Context, stream string) (*redis.XInfoStream, error) {
	result := rb.client.XInfoStream(ctx, stream)
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to get stream info for %s: %w", stream, err)
	}
	return result.Val(), nil
}

// GetConsumerGroupInfo returns information about consumer groups for a stream
func (rb *RedisBus) GetConsumerGroupInfo(ctx context.Context, stream string) ([]redis.XInfoGroup, error) {
	result := rb.client.XInfoGroups(ctx, stream)
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to get consumer group info for %s: %w", stream, err)
	}
	return result.Val(), nil
}

// TrimStream removes old messages, keeping at most maxLen. Zero deletes the
// stream.
func (rb *RedisBus) TrimStream(ctx context.Context, stream string, maxLen int64) error {
	if maxLen == 0 {
		if err := rb.client.Del(ctx, stream).Err(); err != nil {
			return fmt.Errorf("failed to delete stream %s: %w", stream, err)
		}
		return nil
	}
	if err := rb.client.XTrimMaxLen(ctx, stream, maxLen).Err(); err != nil {
		return fmt.Errorf("failed to trim stream %s: %w", stream, err)
	}

	rb.logger.Info("trimmed stream", zap.String("stream", stream), zap.Int64("max_len", maxLen))
	return nil
}

// HealthCheck performs a health check on the Redis connection
func (rb *RedisBus) HealthCheck(ctx context.Context) error {
	return rb.client.Ping(ctx).Err()
}

// GetStats returns basic statistics about the case_changes stream.
func (rb *RedisBus) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{"type": "redis"}

	if info, err := rb.GetStreamInfo(ctx, CaseChangesStream); err == nil {
		stats["case_changes_stream"] = map[string]interface{}{
			"length":         info.Length,
			"first_entry_id": info.FirstEntry.ID,
			"last_entry_id":  info.LastEntry.ID,
		}
	}

	if groups, err := rb.GetConsumerGroupInfo(ctx, CaseChangesStream); err == nil {
		stats["case_changes_consumer_groups"] = len(groups)
	}

	return stats, nil
}
