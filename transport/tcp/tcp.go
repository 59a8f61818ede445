// Package tcp carries [transport.Conn] over the operating system's TCP stack.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9293
package tcp

import (
	"context"
	"io"
	"net"
	"net/netip"
	"os"
	"syscall"
	"time"

	"wirehttp/transport"

	"github.com/pkg/errors"
)

type Dialer struct {
	// Network is "tcp4" unless set.
	Network string
}

var _ transport.ConnDialer = (*Dialer)(nil)

func NewDialer() *Dialer { return &Dialer{Network: "tcp4"} }

// Dial connects to addr. The connect timeout is taken from ctx.
func (d *Dialer) Dial(ctx context.Context, addr netip.AddrPort) (transport.Conn, error) {
	network := d.Network
	if network == "" {
		network = "tcp4"
	}

	var nd net.Dialer
	c, err := nd.DialContext(ctx, network, addr.String())
	if err != nil {
		return nil, translateError(err)
	}

	return &conn{TCPConn: c.(*net.TCPConn)}, nil
}

// Listen opens a listener on addr. A zero port picks a free one.
func Listen(addr netip.AddrPort) (*Listener, error) {
	l, err := net.ListenTCP("tcp", net.TCPAddrFromAddrPort(addr))
	if err != nil {
		return nil, translateError(err)
	}
	return &Listener{l: l}, nil
}

type Listener struct {
	l *net.TCPListener
}

var _ transport.ConnListener = (*Listener)(nil)

func (l *Listener) Addr() netip.AddrPort { return l.l.Addr().(*net.TCPAddr).AddrPort() }

func (l *Listener) Close() error { return translateError(l.l.Close()) }

// Accept returns early when ctx is done.
func (l *Listener) Accept(ctx context.Context) (transport.Conn, error) {
	type result struct {
		c   *net.TCPConn
		err error
	}

	done := make(chan result, 1)
	go func() {
		c, err := l.l.AcceptTCP()
		done <- result{c, err}
	}()

	select {
	case <-ctx.Done():
		// Unblock the pending accept.
		l.l.SetDeadline(time.Unix(1, 0))
		if r := <-done; r.c != nil {
			r.c.Close()
		}
		l.l.SetDeadline(time.Time{})
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, translateError(r.err)
		}
		return &conn{TCPConn: r.c}, nil
	}
}

type conn struct {
	*net.TCPConn
}

var _ transport.Conn = (*conn)(nil)

// Read reports a closed peer as [io.EOF].
func (c *conn) Read(p []byte) (int, error) {
	n, err := c.TCPConn.Read(p)
	if err != nil && err != io.EOF {
		err = translateError(err)
	}
	return n, err
}

func (c *conn) Write(p []byte) (int, error) {
	n, err := c.TCPConn.Write(p)
	return n, translateError(err)
}

func (c *conn) LocalAddr() netip.AddrPort  { return c.TCPConn.LocalAddr().(*net.TCPAddr).AddrPort() }
func (c *conn) RemoteAddr() netip.AddrPort { return c.TCPConn.RemoteAddr().(*net.TCPAddr).AddrPort() }

func (c *conn) SetReadDeadLine(t time.Time)  { c.TCPConn.SetReadDeadline(t) }
func (c *conn) SetWriteDeadLine(t time.Time) { c.TCPConn.SetWriteDeadline(t) }

// translateError maps net errors onto the transport sentinels,
// keeping the underlying message.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, os.ErrDeadlineExceeded):
		return errors.Wrap(transport.ErrDeadLineExceeded, err.Error())
	case errors.Is(err, net.ErrClosed), errors.Is(err, syscall.EPIPE), errors.Is(err, syscall.ECONNRESET):
		return errors.Wrap(transport.ErrConnClosed, err.Error())
	case errors.Is(err, syscall.ECONNREFUSED):
		return errors.Wrap(transport.ErrConnRefused, err.Error())
	case errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.EHOSTUNREACH):
		return errors.Wrap(transport.ErrNetUnreachable, err.Error())
	case errors.Is(err, syscall.EADDRINUSE):
		return errors.Wrap(transport.ErrAddrAlreadyInUse, err.Error())
	}
	return err
}
