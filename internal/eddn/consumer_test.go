package eddn

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// step is one scripted Receive result. block makes Receive wait for ctx.
type step struct {
	data  []byte
	err   error
	block bool
}

type fakeSubscriber struct {
	steps   []step
	closed  bool
	drained func()
}

func (s *fakeSubscriber) Receive(ctx context.Context) ([]byte, error) {
	if len(s.steps) == 0 {
		if s.drained != nil {
			s.drained()
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	st := s.steps[0]
	s.steps = s.steps[1:]
	if st.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return st.data, st.err
}

func (s *fakeSubscriber) Close() error {
	s.closed = true
	return nil
}

// fakeRelay hands out one scripted subscriber per dial and cancels the run
// once the last scripted session runs dry or a dial finds no script left.
type fakeRelay struct {
	mu       sync.Mutex
	sessions [][]step
	dialErrs []error
	subs     []*fakeSubscriber
	cancel   context.CancelFunc
}

func (r *fakeRelay) dial(ctx context.Context, endpoint string) (Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.dialErrs) > 0 {
		err := r.dialErrs[0]
		r.dialErrs = r.dialErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	if len(r.sessions) == 0 {
		r.cancel()
		sub := &fakeSubscriber{}
		r.subs = append(r.subs, sub)
		return sub, nil
	}

	sub := &fakeSubscriber{steps: r.sessions[0]}
	r.sessions = r.sessions[1:]
	if len(r.sessions) == 0 {
		sub.drained = r.cancel
	}
	r.subs = append(r.subs, sub)
	return sub, nil
}

type recordingHandler struct {
	got  []string
	fail map[string]bool
}

func (h *recordingHandler) HandleMessage(ctx context.Context, raw []byte) error {
	h.got = append(h.got, string(raw))
	if h.fail[string(raw)] {
		return errors.New("malformed")
	}
	return nil
}

func newTestConsumer(relay *fakeRelay, handler Handler, timeout time.Duration) (*Consumer, *[]time.Duration) {
	c := NewConsumer(ConsumerConfig{
		Endpoint:       "tcp://relay.test:9500",
		ReceiveTimeout: timeout,
		ReconnectDelay: 5 * time.Second,
	}, relay.dial, handler, slog.Default())

	var sleeps []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return ctx.Err()
	}
	return c, &sleeps
}

func TestConsumerReconnectsOnEmptyMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	relay := &fakeRelay{
		cancel: cancel,
		sessions: [][]step{
			{{data: []byte("a")}, {data: []byte{}}, {data: []byte("never")}},
			{{data: []byte("b")}},
		},
	}
	handler := &recordingHandler{}
	c, sleeps := newTestConsumer(relay, handler, time.Minute)

	err := c.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, []string{"a", "b"}, handler.got)
	require.Len(t, relay.subs, 2)
	assert.True(t, relay.subs[0].closed)
	assert.True(t, relay.subs[1].closed)
	assert.Empty(t, *sleeps, "heartbeat loss reconnects without backing off")
}

func TestConsumerReconnectsOnReceiveTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	relay := &fakeRelay{
		cancel: cancel,
		sessions: [][]step{
			{{data: []byte("a")}, {block: true}},
		},
	}
	handler := &recordingHandler{}
	c, sleeps := newTestConsumer(relay, handler, 10*time.Millisecond)

	err := c.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, []string{"a"}, handler.got)
	assert.Len(t, relay.subs, 2)
	assert.Empty(t, *sleeps)
}

func TestConsumerBacksOffOnTransportError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	relay := &fakeRelay{
		cancel:   cancel,
		dialErrs: []error{errors.New("connection refused"), nil},
		sessions: [][]step{
			{{data: []byte("a")}, {err: errors.New("socket reset")}},
		},
	}
	handler := &recordingHandler{}
	c, sleeps := newTestConsumer(relay, handler, time.Minute)

	err := c.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, []string{"a"}, handler.got)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, *sleeps)
	assert.True(t, relay.subs[0].closed)
}

func TestConsumerSkipsFailedMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	relay := &fakeRelay{
		cancel: cancel,
		sessions: [][]step{
			{{data: []byte("a")}, {data: []byte("bad")}, {data: []byte("c")}, {data: nil}},
		},
	}
	handler := &recordingHandler{fail: map[string]bool{"bad": true}}
	c, _ := newTestConsumer(relay, handler, time.Minute)

	require.ErrorIs(t, c.Run(ctx), context.Canceled)
	assert.Equal(t, []string{"a", "bad", "c"}, handler.got)
}

func TestSleepContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}
