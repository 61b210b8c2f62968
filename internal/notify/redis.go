package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis publishes reports on a pub/sub channel for any bridge subscribed
// to it.
type Redis struct {
	rdb     redis.UniversalClient
	channel string
	timeout time.Duration
	logger  *slog.Logger
}

func NewRedis(rdb redis.UniversalClient, channel string, timeout time.Duration, logger *slog.Logger) *Redis {
	return &Redis{
		rdb:     rdb,
		channel: channel,
		timeout: timeout,
		logger:  logger.With("component", "notify", "channel", "redis", "pubsub_channel", channel),
	}
}

func (r *Redis) Name() string { return "redis" }

func (r *Redis) Notify(ctx context.Context, message string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	receivers, err := r.rdb.Publish(ctx, r.channel, message).Result()
	if err != nil {
		if IsTimeout(err) {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("redis publish failed: %w", err)
	}

	r.logger.Debug("Report published", "receivers", receivers)
	return nil
}
