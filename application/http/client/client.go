package client

import (
	"context"
	"log/slog"
	"time"

	"httpkit/application/http/semantic"
	"httpkit/application/http/semantic/status"

	"github.com/benbjohnson/clock"
)

// RawRequest is what a [Transport] is asked to send.
type RawRequest struct {
	Method  string
	URL     string
	Headers []semantic.Field
	Body    []byte
	Timeout time.Duration
}

// RawReply is what a [Transport] received.
type RawReply struct {
	Status  uint
	Reason  string
	Headers []semantic.Field
	Body    []byte
}

// Transport performs a single request-response exchange.
// Pooling, retries, redirects and cancellation belong to the implementation.
type Transport interface {
	RoundTrip(ctx context.Context, req RawRequest) (RawReply, error)
}

type Client struct {
	transport Transport

	opts Options

	logger *slog.Logger
	clock  clock.Clock
}

func New(t Transport, logger *slog.Logger, clock clock.Clock, opts Options) *Client {
	return &Client{
		transport: t,
		opts:      opts.withDefaults(),
		logger:    logger,
		clock:     clock,
	}
}

// DefaultHeaders returns a copy of the headers merged into every request.
func (c *Client) DefaultHeaders() *semantic.Headers { return c.opts.DefaultHeaders.Clone() }

// Do sends req through the transport.
//
// Transport errors are returned as they are. Otherwise a response referencing req is built,
// and if its status is not successful it is returned together with a [*semantic.StatusError].
func (c *Client) Do(ctx context.Context, req *semantic.Request) (*semantic.Response, error) {
	raw := RawRequest{
		Method:  req.Method.String(),
		URL:     req.URL.String(),
		Headers: c.mergeHeaders(req.Headers()).Fields(),
		Body:    req.Content,
		Timeout: c.opts.Timeout,
	}

	logger := c.logger.With("method", raw.Method, "url", raw.URL)
	logger.Debug("dispatching request", "headers", len(raw.Headers), "body", len(raw.Body))

	start := c.clock.Now()
	reply, err := c.transport.RoundTrip(ctx, raw)
	if err != nil {
		logger.Debug("transport failed", "error", err)
		return nil, err
	}

	res := semantic.NewResponse(reply.Status, semantic.NewHeaders(reply.Headers...), reply.Body, c.reasonPhrase(reply), req)

	logger.Debug("received response", "status", res.StatusLine(), "elapsed", c.clock.Since(start))

	if !res.IsSuccess() {
		return res, semantic.NewStatusError(res)
	}

	return res, nil
}

// reasonPhrase falls back to the received phrase for codes without a registered one.
func (c *Client) reasonPhrase(reply RawReply) string {
	if c.opts.UseReceivedReasonPhrase && reply.Reason != "" {
		return reply.Reason
	}
	if s, ok := status.FromCode(reply.Status); ok {
		return s.ReasonPhrase
	}
	return reply.Reason
}

func (c *Client) Get(ctx context.Context, url string, headers *semantic.Headers) (*semantic.Response, error) {
	return c.Do(ctx, semantic.NewRequest(semantic.MethodGet, semantic.NewURL(url), headers, nil))
}

func (c *Client) Head(ctx context.Context, url string, headers *semantic.Headers) (*semantic.Response, error) {
	return c.Do(ctx, semantic.NewRequest(semantic.MethodHead, semantic.NewURL(url), headers, nil))
}

func (c *Client) Delete(ctx context.Context, url string, headers *semantic.Headers) (*semantic.Response, error) {
	return c.Do(ctx, semantic.NewRequest(semantic.MethodDelete, semantic.NewURL(url), headers, nil))
}

func (c *Client) Post(ctx context.Context, url string, headers *semantic.Headers, content []byte) (*semantic.Response, error) {
	return c.Do(ctx, semantic.NewRequest(semantic.MethodPost, semantic.NewURL(url), headers, content))
}

func (c *Client) Put(ctx context.Context, url string, headers *semantic.Headers, content []byte) (*semantic.Response, error) {
	return c.Do(ctx, semantic.NewRequest(semantic.MethodPut, semantic.NewURL(url), headers, content))
}

// mergeHeaders never modifies the request's headers.
func (c *Client) mergeHeaders(request *semantic.Headers) *semantic.Headers {
	defaults := c.opts.DefaultHeaders

	switch c.opts.Merge {
	case MergeRequestFirst:
		merged := request.Clone()
		for _, f := range defaults.Fields() {
			if _, ok := request.Get(f.Name); !ok {
				merged.Add(f.Name, f.Value)
			}
		}
		return merged
	default:
		merged := defaults.Clone()
		for _, f := range request.Fields() {
			merged.Add(f.Name, f.Value)
		}
		return merged
	}
}
