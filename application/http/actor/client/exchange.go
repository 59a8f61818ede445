package client

import (
	"context"
	"io"
	"log/slog"
	"net/netip"
	"time"

	iolib "wirehttp/lib/io"
	"wirehttp/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// phaseError marks which step of the exchange failed.
type phaseError struct {
	phase string
	err   error
}

func (e *phaseError) Error() string { return e.phase + ": " + e.err.Error() }
func (e *phaseError) Unwrap() error { return e.err }

// exchange is the network half of one transaction: dial, send everything,
// then receive until the peer closes.
type exchange struct {
	dialer     transport.ConnDialer
	clock      clock.Clock
	logger     *slog.Logger
	timeout    time.Duration
	bufferSize uint
}

func (ex exchange) run(ctx context.Context, addr netip.AddrPort, wire []byte) (iolib.Chunks, error) {
	conn, err := ex.dial(ctx, addr)
	if err != nil {
		return nil, &phaseError{phase: "connect", err: err}
	}
	defer conn.Close()
	ex.logger.Debug("connected", slog.String("addr", addr.String()))

	n, err := iolib.WriteFull(&deadlineWriter{conn: conn, ex: ex}, wire)
	if err != nil {
		return nil, &phaseError{phase: "send", err: errors.Wrapf(err, "sent %d of %d bytes", n, len(wire))}
	}
	ex.logger.Debug("sent", slog.Uint64("bytes", uint64(n)))

	chunks, err := ex.receive(conn)
	if err != nil {
		return nil, &phaseError{phase: "receive", err: err}
	}
	ex.logger.Debug("received", slog.Int("bytes", chunks.Len()), slog.Int("chunks", len(chunks)))

	return chunks, nil
}

func (ex exchange) dial(ctx context.Context, addr netip.AddrPort) (transport.Conn, error) {
	ctx, cancel := ex.clock.WithTimeout(ctx, ex.timeout)
	defer cancel()

	conn, err := ex.dialer.Dial(ctx, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", addr)
	}
	return conn, nil
}

func (ex exchange) deadline() time.Time { return ex.clock.Now().Add(ex.timeout) }

// receive reads until the peer closes the connection.
func (ex exchange) receive(conn transport.Conn) (iolib.Chunks, error) {
	chunks := iolib.Chunks{}
	buf := make([]byte, ex.bufferSize)

	for {
		conn.SetReadDeadLine(ex.deadline())

		n, err := conn.Read(buf)
		chunks.Append(buf[:n])

		switch {
		case err == nil && n == 0:
			return chunks, nil
		case err == nil:
			continue
		case errors.Is(err, io.EOF), errors.Is(err, transport.ErrConnClosed):
			return chunks, nil
		default:
			return nil, errors.Wrapf(err, "after %d bytes", chunks.Len())
		}
	}
}

// deadlineWriter refreshes the write deadline before every write attempt.
type deadlineWriter struct {
	conn transport.Conn
	ex   exchange
}

func (w *deadlineWriter) Write(p []byte) (int, error) {
	w.conn.SetWriteDeadLine(w.ex.deadline())
	return w.conn.Write(p)
}
