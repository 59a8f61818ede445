package pipe

import (
	"context"
	"net/netip"
	"sync"

	"wirehttp/transport"

	"github.com/benbjohnson/clock"
)

var dialerAddr = netip.AddrPortFrom(netip.IPv4Unspecified(), 0)

type pipeRequest struct {
	conn     *pipe
	accepted chan struct{}
}

// PipeTransport connects dialers to listeners registered on it.
type PipeTransport struct {
	listeners map[netip.AddrPort]*pipeListener
	clock     clock.Clock

	mu sync.Mutex
}

func NewPipeTransport(clock clock.Clock) *PipeTransport {
	return &PipeTransport{
		listeners: make(map[netip.AddrPort]*pipeListener),
		clock:     clock,
	}
}

var _ transport.ConnDialer = (*PipeTransport)(nil)

// Dial blocks until the listener accepts or ctx is done.
func (pt *PipeTransport) Dial(ctx context.Context, addr netip.AddrPort) (transport.Conn, error) {
	pt.mu.Lock()
	listener, ok := pt.listeners[addr]
	pt.mu.Unlock()

	if !ok {
		return nil, transport.ErrConnRefused
	}

	p1, p2 := Pipe(dialerAddr, addr, pt.clock)

	req := pipeRequest{
		conn:     p2,
		accepted: make(chan struct{}, 1),
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-listener.closed:
		return nil, transport.ErrConnRefused
	case listener.requests <- req:
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-listener.closed:
		return nil, transport.ErrConnRefused
	case <-req.accepted:
	}

	return p1, nil
}

func (pt *PipeTransport) Listen(addr netip.AddrPort) (*pipeListener, error) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if _, ok := pt.listeners[addr]; ok {
		return nil, transport.ErrAddrAlreadyInUse
	}

	pl := &pipeListener{
		addr:      addr,
		transport: pt,
		requests:  make(chan pipeRequest),
		closed:    make(chan struct{}),
	}
	pt.listeners[addr] = pl

	return pl, nil
}

type pipeListener struct {
	addr netip.AddrPort

	transport *PipeTransport

	requests chan pipeRequest
	closed   chan struct{}
	once     sync.Once
}

var _ transport.ConnListener = (*pipeListener)(nil)

func (pl *pipeListener) Addr() netip.AddrPort { return pl.addr }

func (pl *pipeListener) Accept(ctx context.Context) (transport.Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-pl.closed:
		return nil, transport.ErrConnListenerClosed
	case request := <-pl.requests:
		request.accepted <- struct{}{}
		return request.conn, nil
	}
}

func (pl *pipeListener) Close() error {
	err := transport.ErrConnListenerClosed
	pl.once.Do(func() {
		close(pl.closed)

		pl.transport.mu.Lock()
		delete(pl.transport.listeners, pl.addr)
		pl.transport.mu.Unlock()

		err = nil
	})
	return err
}
