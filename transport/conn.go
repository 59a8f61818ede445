// Package transport defines the stream connection a client exchanges
// bytes over, independent of how it is carried.
package transport

import (
	"context"
	"net/netip"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrConnClosed         = errors.New("connection is closed")
	ErrConnListenerClosed = errors.New("conn listener is closed")
	ErrConnRefused        = errors.New("connection refused")
	ErrNetUnreachable     = errors.New("network is unreachable")
	ErrAddrAlreadyInUse   = errors.New("address already in use")
	ErrDeadLineExceeded   = errors.New("deadline exceeded")
)

type Conn interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error

	LocalAddr() netip.AddrPort
	RemoteAddr() netip.AddrPort

	// A zero value means no deadline.
	SetReadDeadLine(t time.Time)
	SetWriteDeadLine(t time.Time)
}

type ConnListener interface {
	Accept(ctx context.Context) (Conn, error)
	Close() error
	Addr() netip.AddrPort
}

type ConnDialer interface {
	Dial(ctx context.Context, addr netip.AddrPort) (Conn, error)
}
