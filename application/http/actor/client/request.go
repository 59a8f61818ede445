package client

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"wirehttp/application/http"
	"wirehttp/application/jsonvalue"
	"wirehttp/application/multipart"

	"github.com/pkg/errors"
)

const (
	DefaultPort   uint16 = 80
	DefaultMethod        = "GET"
	DefaultPath          = "/"
)

const connectionClose = "Connection: close"

// Request accumulates what is sent in one exchange.
// Setters return the request so calls can be chained. The first error
// from a setter is kept and returned by [Client.Perform].
type Request struct {
	host    string
	port    uint16
	method  string
	path    string
	headers []string
	body    []byte
	timeout time.Duration

	err error
}

func NewRequest() *Request {
	return &Request{
		port:    DefaultPort,
		method:  DefaultMethod,
		path:    DefaultPath,
		headers: []string{connectionClose},
	}
}

func (r *Request) Host(host string) *Request {
	r.host = host
	return r
}

func (r *Request) Port(port uint16) *Request {
	r.port = port
	return r
}

func (r *Request) Method(method string) *Request {
	r.method = method
	return r
}

// Path sets path and query as sent on the request line.
func (r *Request) Path(path string) *Request {
	r.path = path
	return r
}

// PathQuery sets path followed by params joined with '&'.
func (r *Request) PathQuery(path string, params ...QueryParam) *Request {
	if len(params) == 0 {
		return r.Path(path)
	}

	rendered := make([]string, 0, len(params))
	for _, p := range params {
		if s := p.String(); s != "" {
			rendered = append(rendered, s)
		}
	}

	return r.Path(path + "?" + strings.Join(rendered, "&"))
}

// URL sets host, port and path from an absolute http url.
func (r *Request) URL(raw string) *Request {
	u, err := url.Parse(raw)
	if err != nil {
		return r.fail(errors.Wrapf(err, "parsing url %q", raw))
	}
	if u.Scheme != "http" {
		return r.fail(errors.Errorf("unsupported scheme %q", u.Scheme))
	}
	if u.Hostname() == "" {
		return r.fail(errors.Errorf("url has no host: %q", raw))
	}

	r.host = u.Hostname()
	r.port = DefaultPort
	if p := u.Port(); p != "" {
		port, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return r.fail(errors.Wrapf(err, "parsing port %q", p))
		}
		r.port = uint16(port)
	}

	r.path = u.EscapedPath()
	if r.path == "" {
		r.path = DefaultPath
	}
	if u.RawQuery != "" {
		r.path += "?" + u.RawQuery
	}

	return r
}

// AddHeader appends a raw "Name: value" line.
func (r *Request) AddHeader(line string) *Request {
	r.headers = append(r.headers, line)
	return r
}

func (r *Request) Body(body []byte) *Request {
	r.body = body
	return r
}

// BodyJSON encodes v as the body. Content-Type is set to
// application/json unless one was added already.
func (r *Request) BodyJSON(v jsonvalue.Value) *Request {
	text, err := jsonvalue.Encode(v)
	if err != nil {
		return r.fail(errors.Wrap(err, "encoding json body"))
	}

	if !r.hasHeader("Content-Type") {
		r.AddHeader("Content-Type: application/json")
	}

	return r.Body([]byte(text))
}

// BodyMultipart renders b as the body and appends its Content-Type.
func (r *Request) BodyMultipart(b *multipart.Builder) *Request {
	body, contentType, err := b.Build()
	if err != nil {
		return r.fail(errors.Wrap(err, "building multipart body"))
	}

	r.AddHeader("Content-Type: " + contentType)

	return r.Body(body)
}

// Timeout overrides the client timeout for this request.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// Err returns the first error from building the request.
func (r *Request) Err() error { return r.err }

// Raw returns the request as it will be serialized.
func (r *Request) Raw() http.Request {
	return http.Request{
		Method:  r.method,
		Target:  r.path,
		Host:    r.host,
		Headers: r.headers,
		Body:    r.body,
	}
}

// Bytes returns the exact bytes sent on the wire.
func (r *Request) Bytes() []byte { return http.EncodeRequest(r.Raw()) }

func (r *Request) fail(err error) *Request {
	if r.err == nil {
		r.err = err
	}
	return r
}

func (r *Request) hasHeader(name string) bool {
	for _, line := range r.headers {
		if field, err := http.ParseField(line); err == nil && field.Is(name) {
			return true
		}
	}
	return false
}

// QueryParam is one name with one or more values.
type QueryParam struct {
	name   string
	values []string
	array  bool
}

// Param renders as "name=value".
func Param(name string, value any) QueryParam {
	return QueryParam{name: name, values: []string{fmt.Sprint(value)}}
}

// Params renders as "name[]=v1&name[]=v2".
func Params[T any](name string, values ...T) QueryParam {
	p := QueryParam{name: name, array: true}
	for _, v := range values {
		p.values = append(p.values, fmt.Sprint(v))
	}
	return p
}

// String does not escape names or values.
func (p QueryParam) String() string {
	name := p.name
	if p.array {
		name += "[]"
	}

	pairs := make([]string, len(p.values))
	for i, v := range p.values {
		pairs[i] = name + "=" + v
	}
	return strings.Join(pairs, "&")
}
