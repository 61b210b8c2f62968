package notify

import (
	"context"
	"errors"
	"log/slog"
	"net"
)

// Notifier delivers a one-line status message to an external channel.
type Notifier interface {
	// Name identifies the channel in logs.
	Name() string

	// Notify sends message. A delivery that ran out of time returns an
	// error for which IsTimeout reports true.
	Notify(ctx context.Context, message string) error
}

var ErrTimeout = errors.New("notification timed out")

// IsTimeout reports whether err means the channel did not answer in time,
// as opposed to rejecting the message.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Log writes reports to the process log only. Used when no chat bridge is
// configured.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger.With("component", "notify", "channel", "log")}
}

func (l *Log) Name() string { return "log" }

func (l *Log) Notify(ctx context.Context, message string) error {
	l.logger.InfoContext(ctx, "Ingestion report", "message", message)
	return nil
}
