package pipe

import (
	"context"
	"net"
	"sync"

	"httpkit/transport"
)

type pipeRequest struct {
	conn     net.Conn
	accepted chan struct{}
}

// PipeTransport is an in-memory [transport.Dialer]. Every dial is matched with an Accept on
// the listener registered for the address, and the two ends are joined with [net.Pipe].
type PipeTransport struct {
	listeners map[string]*Listener

	mu sync.Mutex
}

func NewPipeTransport() *PipeTransport {
	return &PipeTransport{listeners: make(map[string]*Listener)}
}

var _ transport.Dialer = (*PipeTransport)(nil)

// DialContext connects to the listener on address. network is ignored.
func (pt *PipeTransport) DialContext(ctx context.Context, _, address string) (net.Conn, error) {
	pt.mu.Lock()
	listener, ok := pt.listeners[address]
	pt.mu.Unlock()

	if !ok {
		return nil, transport.ErrConnRefused
	}

	client, server := net.Pipe()

	req := pipeRequest{
		conn:     server,
		accepted: make(chan struct{}, 1),
	}

	select {
	case <-ctx.Done():
		client.Close()
		server.Close()
		return nil, ctx.Err()
	case <-listener.closed:
		client.Close()
		server.Close()
		return nil, transport.ErrConnRefused
	case listener.requests <- req:
	}

	// Accept has taken ownership of server from here on.
	select {
	case <-ctx.Done():
		client.Close()
		return nil, ctx.Err()
	case <-req.accepted:
	}

	return client, nil
}

func (pt *PipeTransport) Listen(address string) (*Listener, error) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if _, ok := pt.listeners[address]; ok {
		return nil, transport.ErrAddrAlreadyInUse
	}

	l := &Listener{
		address:   address,
		transport: pt,
		requests:  make(chan pipeRequest),
		closed:    make(chan struct{}),
	}
	pt.listeners[address] = l

	return l, nil
}

type Listener struct {
	address   string
	transport *PipeTransport

	requests chan pipeRequest
	closed   chan struct{}

	once sync.Once
}

func (l *Listener) Accept(ctx context.Context) (net.Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.closed:
		return nil, transport.ErrConnListenerClosed
	case req := <-l.requests:
		req.accepted <- struct{}{}
		return req.conn, nil
	}
}

func (l *Listener) Address() string { return l.address }

// Close unregisters the listener. Pending and later dials are refused.
func (l *Listener) Close() error {
	l.once.Do(func() {
		l.transport.mu.Lock()
		delete(l.transport.listeners, l.address)
		l.transport.mu.Unlock()

		close(l.closed)
	})
	return nil
}
