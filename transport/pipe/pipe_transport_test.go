package pipe

import (
	"context"
	"io"
	"testing"
	"time"

	"httpkit/transport"

	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

type PipeTransportTestSuite struct {
	suite.Suite

	transport *PipeTransport
}

func TestPipeTransportTestSuite(t *testing.T) {
	suite.Run(t, new(PipeTransportTestSuite))
}

func (s *PipeTransportTestSuite) SetupTest() {
	s.transport = NewPipeTransport()
}

func (s *PipeTransportTestSuite) TearDownTest() {
	goleak.VerifyNone(s.T())
}

func (s *PipeTransportTestSuite) TestListen() {
	lis, err := s.transport.Listen("hey:80")
	s.Require().NoError(err)
	s.Require().NotNil(lis)
	defer lis.Close()

	got, ok := s.transport.listeners["hey:80"]
	s.True(ok)
	s.Equal(lis, got)
	s.Equal("hey:80", lis.Address())

	lis2, err := s.transport.Listen("hey:80")
	s.ErrorIs(err, transport.ErrAddrAlreadyInUse)
	s.Nil(lis2)
}

func (s *PipeTransportTestSuite) TestDial() {
	lis, err := s.transport.Listen("hey:80")
	s.Require().NoError(err)
	defer lis.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)

		conn, err := lis.Accept(context.Background())
		if err != nil {
			return
		}
		defer conn.Close()

		_, _ = conn.Write([]byte("hello"))
	}()

	conn, err := s.transport.DialContext(context.Background(), "tcp", "hey:80")
	s.Require().NoError(err)
	defer conn.Close()

	got, err := io.ReadAll(conn)
	s.NoError(err)
	s.Equal("hello", string(got))

	<-done
}

func (s *PipeTransportTestSuite) TestDialUnknown() {
	conn, err := s.transport.DialContext(context.Background(), "tcp", "nobody:80")
	s.ErrorIs(err, transport.ErrConnRefused)
	s.Nil(conn)
}

func (s *PipeTransportTestSuite) TestDialContextCanceled() {
	lis, err := s.transport.Listen("hey:80")
	s.Require().NoError(err)
	defer lis.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// Nobody accepts.
	_, err = s.transport.DialContext(ctx, "tcp", "hey:80")
	s.ErrorIs(err, context.DeadlineExceeded)
}

func (s *PipeTransportTestSuite) TestClose() {
	lis, err := s.transport.Listen("hey:80")
	s.Require().NoError(err)

	s.NoError(lis.Close())
	s.NoError(lis.Close())

	_, err = lis.Accept(context.Background())
	s.ErrorIs(err, transport.ErrConnListenerClosed)

	_, err = s.transport.DialContext(context.Background(), "tcp", "hey:80")
	s.ErrorIs(err, transport.ErrConnRefused)

	// The address is free again.
	lis, err = s.transport.Listen("hey:80")
	s.Require().NoError(err)
	s.NoError(lis.Close())
}
