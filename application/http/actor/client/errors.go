package client

import "github.com/pkg/errors"

var ErrMissingHost = errors.New("request has no host")

// HostUnresolvedError is returned when the request host has no usable
// ipv4 address.
type HostUnresolvedError struct {
	Host string
	Err  error
}

func (e *HostUnresolvedError) Error() string {
	return "host unresolved: " + e.Host + ": " + e.Err.Error()
}

func (e *HostUnresolvedError) Unwrap() error { return e.Err }
func (e *HostUnresolvedError) Cause() error  { return e.Err }
