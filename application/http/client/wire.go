package client

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"httpkit/application/http"
	"httpkit/application/http/semantic"
	iolib "httpkit/lib/io"
	"httpkit/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

var (
	ErrChunkedUnsupported = errors.New("transfer codings are not supported")
	ErrUnsupportedScheme  = errors.New("unsupported scheme")
)

// WireTransport is a [Transport] speaking HTTP/1.1 over one fresh connection per request.
// The connection is closed once the response has been read.
type WireTransport struct {
	dialer transport.Dialer

	opts WireOptions

	logger *slog.Logger
	clock  clock.Clock
}

func NewWireTransport(d transport.Dialer, logger *slog.Logger, clock clock.Clock, opts WireOptions) *WireTransport {
	return &WireTransport{
		dialer: d,
		opts:   opts,
		logger: logger,
		clock:  clock,
	}
}

var _ Transport = (*WireTransport)(nil)

func (t *WireTransport) RoundTrip(ctx context.Context, req RawRequest) (RawReply, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return RawReply{}, errors.Wrap(err, "parsing url")
	}
	if u.Scheme != "http" {
		return RawReply{}, errors.Wrapf(ErrUnsupportedScheme, "%q", u.Scheme)
	}

	addr := u.Host
	if u.Port() == "" {
		addr = net.JoinHostPort(u.Hostname(), "80")
	}

	conn, err := t.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return RawReply{}, errors.Wrapf(err, "dialing %s", addr)
	}
	defer conn.Close()

	if req.Timeout > 0 {
		if err := conn.SetDeadline(t.clock.Now().Add(req.Timeout)); err != nil {
			return RawReply{}, errors.Wrap(err, "setting deadline")
		}
	}

	// Unblock pending reads and writes once ctx is done.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Unix(1, 0)) })
	defer stop()

	logger := t.logger.With("addr", addr)
	logger.Debug("connected")

	if err := t.writeRequest(conn, u, req); err != nil {
		return RawReply{}, t.ctxErr(ctx, errors.Wrap(err, "writing request"))
	}

	reply, err := t.readReply(conn, req.Method)
	if err != nil {
		return RawReply{}, t.ctxErr(ctx, errors.Wrap(err, "reading response"))
	}

	logger.Debug("response read", "status", reply.Status, "body", len(reply.Body))

	return reply, nil
}

// ctxErr prefers the context's error over the I/O error it caused.
func (t *WireTransport) ctxErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func (t *WireTransport) writeRequest(w io.Writer, u *url.URL, req RawRequest) error {
	headers := semantic.NewHeaders(req.Headers...)
	if _, ok := headers.Get("Host"); !ok {
		headers.Set("Host", u.Host)
	}
	if _, ok := headers.Get("Content-Length"); !ok && len(req.Body) > 0 {
		headers.SetContentLength(uint(len(req.Body)))
	}

	enc := http.NewRequestEncoder(w, t.opts.Encode)

	return enc.Encode(http.Request{
		RequestLine: http.RequestLine{
			Method:  req.Method,
			Target:  u.RequestURI(),
			Version: http.Version11,
		},
		Headers: headers.ToRawFields(),
		Body:    bytes.NewReader(req.Body),
	})
}

func (t *WireTransport) readReply(r io.Reader, method string) (RawReply, error) {
	var res http.Response

	dec := http.NewResponseDecoder(r, t.opts.Decode)
	if err := dec.Decode(&res); err != nil {
		return RawReply{}, err
	}

	headers := semantic.HeadersFrom(res.Headers)

	if te, ok := headers.Get("Transfer-Encoding"); ok && !strings.EqualFold(strings.TrimSpace(te), "identity") {
		return RawReply{}, errors.Wrapf(ErrChunkedUnsupported, "Transfer-Encoding: %s", te)
	}

	body, err := t.readBody(res, headers, method)
	if err != nil {
		return RawReply{}, errors.Wrap(err, "reading body")
	}

	return RawReply{
		Status:  res.StatusCode,
		Reason:  res.ReasonPhrase,
		Headers: headers.Fields(),
		Body:    body,
	}, nil
}

// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.3
func (t *WireTransport) readBody(res http.Response, headers *semantic.Headers, method string) ([]byte, error) {
	if method == semantic.MethodHead.String() ||
		(res.StatusCode >= 100 && res.StatusCode < 200) ||
		res.StatusCode == 204 || res.StatusCode == 304 {
		return nil, nil
	}

	length, err := headers.ContentLength()
	if err != nil {
		return nil, err
	}
	if length != nil {
		if t.opts.MaxBodySize > 0 && *length > t.opts.MaxBodySize {
			return nil, errors.Wrapf(iolib.ErrTooLarge, "Content-Length: %s", strconv.FormatUint(uint64(*length), 10))
		}
		return io.ReadAll(iolib.ExactReader(res.Body, *length))
	}

	return iolib.ReadAllMax(res.Body, t.opts.MaxBodySize)
}
