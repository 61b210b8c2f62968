package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/kolo/xmlrpc"
)

type XMLRPCConfig struct {
	URL     string
	Timeout time.Duration
	// Service and Nick are the first two arguments of the bridge's
	// "command" method, e.g. "botserv" and the bot's nick.
	Service string
	Nick    string
	Channel string
}

// XMLRPC relays reports to an IRC services bridge through its XML-RPC
// "command" method.
type XMLRPC struct {
	cfg    XMLRPCConfig
	client *xmlrpc.Client
	logger *slog.Logger
	calls  sync.WaitGroup
}

func NewXMLRPC(cfg XMLRPCConfig, logger *slog.Logger) (*XMLRPC, error) {
	dialer := &net.Dialer{Timeout: cfg.Timeout}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		ResponseHeaderTimeout: cfg.Timeout,
		TLSHandshakeTimeout:   cfg.Timeout,
	}

	client, err := xmlrpc.NewClient(cfg.URL, &deadlineTransport{next: transport, timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create xmlrpc client: %w", err)
	}

	return &XMLRPC{
		cfg:    cfg,
		client: client,
		logger: logger.With("component", "notify", "channel", "xmlrpc"),
	}, nil
}

func (x *XMLRPC) Name() string { return "xmlrpc" }

func (x *XMLRPC) Notify(ctx context.Context, message string) error {
	ctx, cancel := context.WithTimeout(ctx, x.cfg.Timeout)
	defer cancel()

	args := []interface{}{x.cfg.Service, x.cfg.Nick, fmt.Sprintf("say %s %s", x.cfg.Channel, message)}

	done := make(chan error, 1)
	x.calls.Add(1)
	go func() {
		defer x.calls.Done()
		var reply interface{}
		done <- x.client.Call("command", args, &reply)
	}()

	select {
	case err := <-done:
		if err == nil {
			x.logger.Debug("Report delivered")
			return nil
		}
		if IsTimeout(err) {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("xmlrpc command failed: %w", err)
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
	}
}

// Close waits for in-flight calls, which the transport deadline bounds,
// before closing the client.
func (x *XMLRPC) Close() error {
	x.calls.Wait()
	return x.client.Close()
}

// maxReplySize caps a bridge reply; "command" answers with a short string.
const maxReplySize = 1 << 20

// deadlineTransport bounds a whole request, body read included, and hands
// back a fully buffered reply. ResponseHeaderTimeout alone lets a bridge
// that stalls mid-body hold the call open forever.
type deadlineTransport struct {
	next    http.RoundTripper
	timeout time.Duration
}

func (t *deadlineTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(req.Context(), t.timeout)
	defer cancel()

	resp, err := t.next.RoundTrip(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return nil, fmt.Errorf("read xmlrpc reply: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	return resp, nil
}
