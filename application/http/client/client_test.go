package client

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"httpkit/application/http/semantic"
	"httpkit/application/http/semantic/status"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) RoundTrip(ctx context.Context, req RawRequest) (RawReply, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(RawReply), args.Error(1)
}

type ClientTestSuite struct {
	suite.Suite

	transport *mockTransport
	logger    *slog.Logger
	clock     *clock.Mock
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) SetupTest() {
	s.transport = new(mockTransport)
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.clock = clock.NewMock()
}

func (s *ClientTestSuite) TearDownTest() {
	s.transport.AssertExpectations(s.T())
}

// expect captures the request passed to the transport and answers with reply.
func (s *ClientTestSuite) expect(reply RawReply, err error) *RawRequest {
	captured := new(RawRequest)
	s.transport.On("RoundTrip", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { *captured = args.Get(1).(RawRequest) }).
		Return(reply, err).
		Once()
	return captured
}

func (s *ClientTestSuite) TestDefaultOptions() {
	c := New(s.transport, s.logger, s.clock, Options{})

	s.Equal([]semantic.Field{
		{Name: "Connection", Value: "keep-alive"},
		{Name: "User-Agent", Value: "httpkit"},
	}, c.DefaultHeaders().Fields())
	s.Equal(DefaultTimeout, c.opts.Timeout)
	s.Equal(MergeDefaultsFirst, c.opts.Merge)
}

func (s *ClientTestSuite) TestCustomOptions() {
	defaults := semantic.NewHeaders(semantic.Field{Name: "user-agent", Value: "mine/1.0"})
	c := New(s.transport, s.logger, s.clock, Options{
		UserAgent:      "ignored",
		Timeout:        5 * time.Second,
		DefaultHeaders: defaults,
	})

	s.Equal([]semantic.Field{{Name: "user-agent", Value: "mine/1.0"}}, c.DefaultHeaders().Fields())

	// The caller's headers are copied.
	defaults.Add("X-Later", "1")
	s.Equal(1, c.DefaultHeaders().Len())

	captured := s.expect(RawReply{Status: 200, Reason: "OK"}, nil)
	_, err := c.Get(context.Background(), "http://example.com", nil)
	s.Require().NoError(err)
	s.Equal(5*time.Second, captured.Timeout)
}

func (s *ClientTestSuite) TestDo() {
	c := New(s.transport, s.logger, s.clock, Options{})

	captured := s.expect(RawReply{
		Status:  200,
		Reason:  "OK",
		Headers: []semantic.Field{{Name: "Content-Type", Value: "text/plain"}},
		Body:    []byte("hello"),
	}, nil)

	req := semantic.NewRequest(semantic.MethodPost, semantic.NewURL("http://example.com/echo"),
		semantic.NewHeaders(semantic.Field{Name: "X-Custom", Value: "a"}), []byte("ping"))

	res, err := c.Do(context.Background(), req)
	s.Require().NoError(err)

	s.Equal("POST", captured.Method)
	s.Equal("http://example.com/echo", captured.URL)
	s.Equal([]byte("ping"), captured.Body)
	s.Equal(DefaultTimeout, captured.Timeout)
	s.Equal([]semantic.Field{
		{Name: "Connection", Value: "keep-alive"},
		{Name: "User-Agent", Value: "httpkit"},
		{Name: "X-Custom", Value: "a"},
	}, captured.Headers)

	s.True(res.IsSuccess())
	s.Equal("200 OK", res.StatusLine())
	s.Equal([]byte("hello"), res.Content())
	s.True(res.ContentIsText())
	s.Same(req, res.Request())

	// The request itself is not touched by the merge.
	s.Equal(1, req.Headers().Len())
}

func (s *ClientTestSuite) TestMethods() {
	c := New(s.transport, s.logger, s.clock, Options{})
	ctx := context.Background()

	testcases := []struct {
		desc   string
		method string
		body   []byte
		call   func() (*semantic.Response, error)
	}{
		{"get", "GET", nil, func() (*semantic.Response, error) { return c.Get(ctx, "http://x", nil) }},
		{"head", "HEAD", nil, func() (*semantic.Response, error) { return c.Head(ctx, "http://x", nil) }},
		{"delete", "DELETE", nil, func() (*semantic.Response, error) { return c.Delete(ctx, "http://x", nil) }},
		{"post", "POST", []byte("a"), func() (*semantic.Response, error) { return c.Post(ctx, "http://x", nil, []byte("a")) }},
		{"put", "PUT", []byte("b"), func() (*semantic.Response, error) { return c.Put(ctx, "http://x", nil, []byte("b")) }},
	}
	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			captured := s.expect(RawReply{Status: 204, Reason: "No Content"}, nil)

			res, err := tc.call()
			s.Require().NoError(err)
			s.Equal(uint(204), res.Code())

			s.Equal(tc.method, captured.Method)
			s.Equal("http://x", captured.URL)
			s.Equal(tc.body, captured.Body)
		})
	}
}

func (s *ClientTestSuite) TestMergeDefaultsFirst() {
	c := New(s.transport, s.logger, s.clock, Options{
		DefaultHeaders: semantic.NewHeaders(semantic.Field{Name: "Accept", Value: "text/html"}),
	})

	captured := s.expect(RawReply{Status: 200}, nil)

	_, err := c.Get(context.Background(), "http://x",
		semantic.NewHeaders(semantic.Field{Name: "accept", Value: "application/json"}))
	s.Require().NoError(err)

	merged := semantic.NewHeaders(captured.Headers...)

	// Both are sent, the default is seen first.
	v, _ := merged.Get("Accept")
	s.Equal("text/html", v)
	s.Equal([]string{"text/html", "application/json"}, merged.Values("Accept"))
}

func (s *ClientTestSuite) TestMergeRequestFirst() {
	c := New(s.transport, s.logger, s.clock, Options{
		DefaultHeaders: semantic.NewHeaders(
			semantic.Field{Name: "Accept", Value: "text/html"},
			semantic.Field{Name: "Connection", Value: "keep-alive"},
		),
		Merge: MergeRequestFirst,
	})

	captured := s.expect(RawReply{Status: 200}, nil)

	_, err := c.Get(context.Background(), "http://x",
		semantic.NewHeaders(semantic.Field{Name: "accept", Value: "application/json"}))
	s.Require().NoError(err)

	s.Equal([]semantic.Field{
		{Name: "accept", Value: "application/json"},
		{Name: "Connection", Value: "keep-alive"},
		{Name: "User-Agent", Value: "httpkit"},
	}, captured.Headers)
}

func (s *ClientTestSuite) TestStatusError() {
	testcases := []struct {
		desc     string
		code     uint
		sentinel error
	}{
		{"not found", 404, status.ErrClientError},
		{"unavailable", 503, status.ErrServerError},
		{"moved", 301, status.ErrRedirection},
	}
	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			c := New(s.transport, s.logger, s.clock, Options{})
			s.expect(RawReply{Status: tc.code, Body: []byte("details")}, nil)

			res, err := c.Get(context.Background(), "http://x", nil)
			s.ErrorIs(err, tc.sentinel)

			var statusErr *semantic.StatusError
			s.Require().ErrorAs(err, &statusErr)
			s.Same(res, statusErr.Response)
			s.Equal(tc.code, statusErr.Code())
			s.Equal([]byte("details"), res.Content())
		})
	}
}

func (s *ClientTestSuite) TestTransportError() {
	c := New(s.transport, s.logger, s.clock, Options{})
	refused := errors.New("connection refused")
	s.expect(RawReply{}, refused)

	res, err := c.Get(context.Background(), "http://x", nil)
	s.Nil(res)
	s.Equal(refused, err)
}

func (s *ClientTestSuite) TestLogsElapsed() {
	buf := bytes.NewBuffer(nil)
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := New(s.transport, logger, s.clock, Options{})

	s.transport.On("RoundTrip", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { s.clock.Add(1500 * time.Millisecond) }).
		Return(RawReply{Status: 200, Reason: "OK"}, nil).
		Once()

	_, err := c.Get(context.Background(), "http://x", nil)
	s.Require().NoError(err)

	s.Contains(buf.String(), "msg=\"dispatching request\" method=GET url=http://x")
	s.Contains(buf.String(), "elapsed=1.5s")
}

func (s *ClientTestSuite) TestReasonPhrase() {
	testcases := []struct {
		desc        string
		useReceived bool
		reply       RawReply
		expected    string
	}{
		{"empty reason is filled", false, RawReply{Status: 200}, "200 OK"},
		{"received reason is replaced", false, RawReply{Status: 200, Reason: "Fine"}, "200 OK"},
		{"received reason is kept", true, RawReply{Status: 200, Reason: "Fine"}, "200 Fine"},
		{"empty received reason is filled", true, RawReply{Status: 404}, "404 Not Found"},
		{"unknown code keeps received reason", false, RawReply{Status: 299, Reason: "Odd"}, "299 Odd"},
		{"unknown code without reason", false, RawReply{Status: 299}, "299 "},
	}
	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			c := New(s.transport, s.logger, s.clock, Options{UseReceivedReasonPhrase: tc.useReceived})
			s.expect(tc.reply, nil)

			res, _ := c.Get(context.Background(), "http://x", nil)
			s.Require().NotNil(res)
			s.Equal(tc.expected, res.StatusLine())
		})
	}
}

func (s *ClientTestSuite) TestZeroValueRequest() {
	c := New(s.transport, s.logger, s.clock, Options{})
	captured := s.expect(RawReply{Status: 200}, nil)

	req := &semantic.Request{Method: semantic.MethodGet, URL: semantic.NewURL("http://x")}
	res, err := c.Do(context.Background(), req)
	s.Require().NoError(err)

	s.Equal([]semantic.Field{
		{Name: "Connection", Value: "keep-alive"},
		{Name: "User-Agent", Value: "httpkit"},
	}, captured.Headers)
	s.Equal("200 OK", res.StatusLine())
	s.Same(req, res.Request())
}
