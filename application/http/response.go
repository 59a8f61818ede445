package http

import (
	"slices"
	"strconv"

	"wirehttp/application/http/status"
	"wirehttp/application/jsonvalue"
)

// Response is an http response as received, or synthesized for a failed
// exchange. It is never modified after construction.
type Response struct {
	version    string
	statusCode int
	reason     string
	headers    []string
	body       []byte
}

// NewResponse copies headers and body.
func NewResponse(version string, statusCode int, reason string, headers []string, body []byte) *Response {
	return &Response{
		version:    version,
		statusCode: statusCode,
		reason:     reason,
		headers:    slices.Clone(headers),
		body:       slices.Clone(body),
	}
}

var timeoutBody = mustEncode(jsonvalue.Object{
	{Key: "message", Value: jsonvalue.String(status.RequestTimeout.ReasonPhrase)},
	{Key: "status_code", Value: jsonvalue.Number(status.RequestTimeout.Code)},
})

func mustEncode(v jsonvalue.Value) []byte {
	text, err := jsonvalue.Encode(v)
	if err != nil {
		panic(err)
	}
	return []byte(text)
}

// TimeoutResponse is what a transaction yields when the connection could not
// be established, or sending or receiving failed.
// It has no version and no headers.
func TimeoutResponse() *Response {
	return NewResponse("", status.RequestTimeout.Code, status.RequestTimeout.ReasonPhrase, nil, timeoutBody)
}

// Version returns the version token of the status line as received.
func (r *Response) Version() string { return r.version }

// Proto parses the version token.
func (r *Response) Proto() (Version, error) { return ParseVersion([]byte(r.version)) }

func (r *Response) StatusCode() int { return r.statusCode }
func (r *Response) Reason() string  { return r.reason }

// Headers returns the header lines in wire order.
func (r *Response) Headers() []string { return slices.Clone(r.headers) }

// Header returns the value of the first header named name, ignoring case.
func (r *Response) Header(name string) (string, bool) {
	for _, line := range r.headers {
		field, err := ParseField(line)
		if err != nil {
			continue
		}
		if field.Is(name) {
			return field.Value, true
		}
	}
	return "", false
}

func (r *Response) Body() []byte       { return slices.Clone(r.body) }
func (r *Response) BodyString() string { return string(r.body) }

// BodyJSON parses the body as a JSON document.
func (r *Response) BodyJSON() (jsonvalue.Value, error) {
	return jsonvalue.Parse(string(r.body))
}

// StatusLine renders the start line, e.g. "HTTP/1.1 200 OK".
// The version is omitted when empty.
func (r *Response) StatusLine() string {
	line := strconv.Itoa(r.statusCode)
	if r.reason != "" {
		line += " " + r.reason
	}
	if r.version != "" {
		line = r.version + " " + line
	}
	return line
}
