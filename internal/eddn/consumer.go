package eddn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Subscriber is one live subscribe-all connection to the relay.
type Subscriber interface {
	// Receive blocks until a message arrives, the connection fails or ctx
	// is done.
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// DialFunc opens a subscribe-all connection to endpoint.
type DialFunc func(ctx context.Context, endpoint string) (Subscriber, error)

// Handler processes one raw relay message. Returned errors are logged and
// the message is dropped; they never stop the consumer.
type Handler interface {
	HandleMessage(ctx context.Context, raw []byte) error
}

type HandlerFunc func(ctx context.Context, raw []byte) error

func (f HandlerFunc) HandleMessage(ctx context.Context, raw []byte) error {
	return f(ctx, raw)
}

// errHeartbeatLost marks an empty message or a receive timeout: the
// connection is considered dead and is replaced without backing off.
var errHeartbeatLost = errors.New("relay heartbeat lost")

type ConsumerConfig struct {
	Endpoint       string
	ReceiveTimeout time.Duration
	ReconnectDelay time.Duration
}

type Consumer struct {
	cfg     ConsumerConfig
	dial    DialFunc
	handler Handler
	logger  *slog.Logger

	// sleep waits out the reconnect delay; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewConsumer(cfg ConsumerConfig, dial DialFunc, handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{
		cfg:     cfg,
		dial:    dial,
		handler: handler,
		logger:  logger.With("component", "eddn_consumer", "endpoint", cfg.Endpoint),
		sleep:   sleepContext,
	}
}

// Run consumes the relay until ctx is cancelled. It never returns on its
// own: heartbeat loss reconnects immediately, transport errors reconnect
// after the fixed delay.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("Starting relay consumer",
		"receive_timeout", c.cfg.ReceiveTimeout,
		"reconnect_delay", c.cfg.ReconnectDelay,
	)

	for {
		err := c.session(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			c.logger.Info("Relay consumer stopped")
			return ctxErr
		}

		if errors.Is(err, errHeartbeatLost) {
			c.logger.Warn("Relay heartbeat lost, reconnecting")
			continue
		}

		c.logger.Error("Relay transport error, backing off", "error", err, "delay", c.cfg.ReconnectDelay)
		if err := c.sleep(ctx, c.cfg.ReconnectDelay); err != nil {
			c.logger.Info("Relay consumer stopped")
			return err
		}
	}
}

// session runs one connection until it fails. It always returns a non-nil
// error.
func (c *Consumer) session(ctx context.Context) error {
	sub, err := c.dial(ctx, c.cfg.Endpoint)
	if err != nil {
		return fmt.Errorf("dial relay: %w", err)
	}
	defer func() {
		if err := sub.Close(); err != nil {
			c.logger.Debug("Failed to close relay connection", "error", err)
		}
	}()

	c.logger.Info("Subscribed to relay")

	for {
		msg, err := c.receive(ctx, sub)
		if err != nil {
			return err
		}

		if err := c.handler.HandleMessage(ctx, msg); err != nil {
			c.logger.Warn("Skipping relay message", "error", err, "size_bytes", len(msg))
		}
	}
}

func (c *Consumer) receive(ctx context.Context, sub Subscriber) ([]byte, error) {
	rctx, cancel := context.WithTimeout(ctx, c.cfg.ReceiveTimeout)
	defer cancel()

	msg, err := sub.Receive(rctx)
	switch {
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		return nil, errHeartbeatLost
	case err != nil:
		return nil, fmt.Errorf("receive: %w", err)
	case len(msg) == 0:
		return nil, errHeartbeatLost
	}
	return msg, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
