package eddn

import (
	"context"
	"fmt"

	"github.com/go-zeromq/zmq4"
)

type zmqResult struct {
	data []byte
	err  error
}

type zmqSubscriber struct {
	sock    zmq4.Socket
	cancel  context.CancelFunc
	pending chan zmqResult
}

// DialZMQ opens a ZeroMQ SUB socket subscribed to every topic on endpoint.
func DialZMQ(ctx context.Context, endpoint string) (Subscriber, error) {
	sctx, cancel := context.WithCancel(ctx)
	sock := zmq4.NewSub(sctx)

	if err := sock.SetOption(zmq4.OptionSubscribe, ""); err != nil {
		cancel()
		_ = sock.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	if err := sock.Dial(endpoint); err != nil {
		cancel()
		_ = sock.Close()
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	return &zmqSubscriber{sock: sock, cancel: cancel}, nil
}

// Receive waits for the next frame. A receive that outlives ctx stays
// pending and is picked up by the next call, so at most one Recv is ever
// in flight on the socket.
func (s *zmqSubscriber) Receive(ctx context.Context) ([]byte, error) {
	if s.pending == nil {
		ch := make(chan zmqResult, 1)
		s.pending = ch
		go func() {
			msg, err := s.sock.Recv()
			if err != nil {
				ch <- zmqResult{err: err}
				return
			}
			ch <- zmqResult{data: msg.Bytes()}
		}()
	}

	select {
	case res := <-s.pending:
		s.pending = nil
		return res.data, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *zmqSubscriber) Close() error {
	s.cancel()
	return s.sock.Close()
}
