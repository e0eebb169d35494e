package transport

import (
	"context"
	"net"

	"github.com/pkg/errors"
)

var (
	ErrConnRefused        = errors.New("connection refused")
	ErrAddrAlreadyInUse   = errors.New("address already in use")
	ErrConnListenerClosed = errors.New("conn listener is closed")
)

// Dialer opens stream connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// DialerFunc adapts a plain function to [Dialer].
type DialerFunc func(ctx context.Context, network, address string) (net.Conn, error)

func (f DialerFunc) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return f(ctx, network, address)
}

var _ Dialer = (*net.Dialer)(nil)
