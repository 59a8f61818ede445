// Package client performs one HTTP/1.1 exchange per request over a fresh
// connection.
package client

import (
	"context"
	"log/slog"
	"net/netip"
	"time"

	"wirehttp/application/http"
	"wirehttp/application/http/status"
	"wirehttp/application/util/domain"
	"wirehttp/transport"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Client holds only immutable collaborators and is safe for concurrent use.
type Client struct {
	opts Options

	logger *slog.Logger
	clock  clock.Clock

	lookuper   domain.Lookuper
	connDialer transport.ConnDialer
}

func New(
	d transport.ConnDialer,
	lookuper domain.Lookuper,
	logger *slog.Logger,
	clock clock.Clock,
	opts Options,
) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		connDialer: d,
		lookuper:   lookuper,
		logger:     logger,
		clock:      clock,
		opts:       opts.withDefaults(),
	}
}

// Perform sends request and parses the response.
//
// A failure to connect, send or receive is not an error: it yields
// [http.TimeoutResponse]. Errors are returned for an unbuildable request,
// an unresolvable host ([*HostUnresolvedError]) and a response that does
// not parse.
func (c *Client) Perform(ctx context.Context, request *Request) (*http.Response, error) {
	if err := request.Err(); err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	if request.host == "" {
		return nil, ErrMissingHost
	}

	timeout := request.timeout
	if timeout <= 0 {
		timeout = c.opts.Timeout
	}

	logger := c.logger.With(slog.String("txn", uuid.NewString()), slog.String("host", request.host))

	ip, err := domain.LookupIPv4(ctx, c.lookuper, request.host)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("transaction failed", slog.String("phase", "resolve"), slog.Any("error", err))
			return http.TimeoutResponse(), nil
		}
		return nil, &HostUnresolvedError{Host: request.host, Err: err}
	}
	logger.Debug("resolved", slog.String("addr", ip.String()))

	ex := exchange{
		dialer:     c.connDialer,
		clock:      c.clock,
		logger:     logger,
		timeout:    timeout,
		bufferSize: c.opts.Receive.BufferSize,
	}

	chunks, err := ex.run(ctx, netip.AddrPortFrom(ip, request.port), request.Bytes())
	if err != nil {
		var pErr *phaseError
		phase := "unknown"
		if errors.As(err, &pErr) {
			phase = pErr.phase
		}
		logger.Warn("transaction failed", slog.String("phase", phase), slog.Any("error", err))
		return http.TimeoutResponse(), nil
	}

	response, err := http.NewResponseDecoder(chunks, c.opts.Receive.Decode).Decode()
	if err != nil {
		return nil, errors.Wrap(err, "decoding response")
	}

	if c.opts.Receive.UseDefaultReasonPhrase {
		if st, ok := status.FromCode(response.StatusCode()); ok {
			response = http.NewResponse(response.Version(), st.Code, st.ReasonPhrase, response.Headers(), response.Body())
		}
	}

	logger.Debug("parsed", slog.Int("status", response.StatusCode()), slog.Int("body", len(response.Body())))

	return response, nil
}

// Timeout is the client wide timeout.
func (c *Client) Timeout() time.Duration { return c.opts.Timeout }
