// Package http implements the client side of HTTP/1.1 message framing:
// request serialization and response parsing over received byte chunks.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc9110
//
// - https://datatracker.ietf.org/doc/html/rfc9112
package http
