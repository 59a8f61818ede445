package http

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"wirehttp/application/util/rule"

	"github.com/pkg/errors"
)

// Request is an http request ready for serialization.
// Headers are raw field lines sent in order after Host.
type Request struct {
	Method  string
	Target  string
	Host    string
	Headers []string
	Body    []byte
}

type RequestEncoder struct {
	bw *bufio.Writer
}

func NewRequestEncoder(w io.Writer) *RequestEncoder {
	return &RequestEncoder{bw: bufio.NewWriter(w)}
}

// Encode writes the request line, Host, the configured headers, then
// Content-Length when the body is non-empty.
// Caller supplied Content-Length lines are never written.
func (re *RequestEncoder) Encode(request Request) error {
	if err := re.encodeRequestLine(request); err != nil {
		return errors.Wrap(err, "encoding request line")
	}

	if err := re.encodeHeaders(request); err != nil {
		return errors.Wrap(err, "encoding headers")
	}

	if _, err := re.bw.Write(request.Body); err != nil {
		return errors.Wrap(err, "writing request body")
	}

	if err := re.bw.Flush(); err != nil {
		return errors.Wrap(err, "flushing request")
	}

	return nil
}

func (re *RequestEncoder) writeLine(line []byte) error {
	if _, err := re.bw.Write(line); err != nil {
		return errors.Wrap(err, "writing line")
	}

	if _, err := re.bw.Write(rule.CRLF); err != nil {
		return errors.Wrap(err, "writing line terminator")
	}

	return nil
}

func (re *RequestEncoder) encodeRequestLine(request Request) error {
	buf := bytes.NewBuffer(nil)

	buf.WriteString(request.Method)
	buf.WriteByte(rule.SP)
	buf.WriteString(request.Target)
	buf.WriteByte(rule.SP)
	buf.Write(Version11.Text())

	return re.writeLine(buf.Bytes())
}

func (re *RequestEncoder) encodeHeaders(request Request) error {
	host := Field{Name: "Host", Value: request.Host}
	if err := re.writeLine([]byte(host.Text())); err != nil {
		return errors.Wrap(err, "writing host field")
	}

	for _, line := range request.Headers {
		if isContentLength(line) {
			continue
		}
		if err := re.writeLine([]byte(line)); err != nil {
			return errors.Wrap(err, "writing field")
		}
	}

	if len(request.Body) > 0 {
		length := Field{Name: "Content-Length", Value: strconv.Itoa(len(request.Body))}
		if err := re.writeLine([]byte(length.Text())); err != nil {
			return errors.Wrap(err, "writing content length field")
		}
	}

	// Write a empty line as all the headers are written.
	if err := re.writeLine(nil); err != nil {
		return errors.Wrap(err, "writing line terminator")
	}

	return nil
}

func isContentLength(line string) bool {
	field, err := ParseField(line)
	return err == nil && field.Is("Content-Length")
}

// EncodeRequest serializes request into memory.
func EncodeRequest(request Request) []byte {
	buf := bytes.NewBuffer(nil)
	// Writing into a bytes.Buffer does not fail.
	_ = NewRequestEncoder(buf).Encode(request)
	return buf.Bytes()
}
