package client

import (
	"time"

	"wirehttp/application/http"
)

type Options struct {
	// Timeout applies to connect, each send call and each receive call
	// on its own. It is not a budget for the whole exchange.
	Timeout time.Duration

	Receive ReceiveOptions
}

type ReceiveOptions struct {
	Decode http.DecodeOptions

	// BufferSize is the scratch buffer size for each read.
	BufferSize uint

	// UseDefaultReasonPhrase replaces the received reason phrase with the
	// registered one for known status codes.
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-4-9
	UseDefaultReasonPhrase bool
}

var DefaultOptions = Options{
	Timeout: 30 * time.Second,
	Receive: ReceiveOptions{
		Decode:     http.DefaultDecodeOptions,
		BufferSize: 10000,
	},
}

// withDefaults fills zero fields from [DefaultOptions].
func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultOptions.Timeout
	}
	if o.Receive.BufferSize == 0 {
		o.Receive.BufferSize = DefaultOptions.Receive.BufferSize
	}
	return o
}

// TimeoutFromTimeval converts a (seconds, microseconds) pair.
func TimeoutFromTimeval(sec, usec int64) time.Duration {
	return time.Duration(sec)*time.Second + time.Duration(usec)*time.Microsecond
}
