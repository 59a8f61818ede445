package http

import (
	"bytes"
	"io"
	"strconv"

	"wirehttp/application/http/transfer"
	"wirehttp/application/util/rule"
	iolib "wirehttp/lib/io"
	bytesutil "wirehttp/util/bytes"

	"github.com/pkg/errors"
)

type DecodeOptions struct {
	// MaxStatusLineLength sets the limit of status line length.
	// Zero means no limit.
	MaxStatusLineLength uint

	// MaxFieldLineLength sets the limit of field line length on headers.
	// Zero means no limit.
	MaxFieldLineLength uint
}

var DefaultDecodeOptions = DecodeOptions{
	MaxStatusLineLength: 0,
	MaxFieldLineLength:  0,
}

// chunkedFieldLine selects the chunked body decoder.
// It is matched against header lines exactly, case included.
var chunkedFieldLine = "Transfer-Encoding: " + transfer.CodingChunked

var errLineTooLong = errors.New("line length exceeeds limit")

// ResponseDecoder parses one complete response out of the received chunks.
// It goes through status line, headers and body in that order.
type ResponseDecoder struct {
	cur  *iolib.Cursor
	opts DecodeOptions
}

func NewResponseDecoder(chunks iolib.Chunks, opts DecodeOptions) *ResponseDecoder {
	return &ResponseDecoder{cur: iolib.NewCursor(chunks), opts: opts}
}

func (rd *ResponseDecoder) Decode() (*Response, error) {
	r := &Response{}

	if err := rd.decodeStatusLine(r); err != nil {
		return nil, errors.Wrap(err, "parsing status line")
	}

	if err := rd.decodeHeaders(r); err != nil {
		return nil, errors.Wrap(err, "parsing headers")
	}

	if err := rd.decodeBody(r); err != nil {
		return nil, errors.Wrap(err, "parsing body")
	}

	return r, nil
}

// readLine reads one CRLF terminated line, stripping the terminator.
func (rd *ResponseDecoder) readLine(limit uint) ([]byte, error) {
	line, err := bytesutil.ReadLine(rd.cur)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncatedResponse
		}
		return nil, errors.Wrap(err, "reading line")
	}

	if limit > 0 && uint(len(line)) > limit {
		return nil, errLineTooLong
	}

	return line, nil
}

func (rd *ResponseDecoder) decodeStatusLine(r *Response) error {
	line, err := rd.readLine(rd.opts.MaxStatusLineLength)
	if err != nil {
		if errors.Is(err, errLineTooLong) {
			return ErrStatusLineTooLong
		}
		return err
	}

	version, rest := cutToken(line)
	code, rest := cutToken(rest)
	if len(version) == 0 || len(code) == 0 {
		return &MalformedStartLineError{Line: string(line)}
	}

	statusCode, err := strconv.Atoi(string(code))
	if err != nil || statusCode < 0 {
		return &MalformedStartLineError{Line: string(line)}
	}

	r.version = string(version)
	r.statusCode = statusCode
	// reason-phrase is optional.
	r.reason = string(bytes.TrimFunc(rest, rule.IsWhitespace))

	return nil
}

// cutToken skips leading whitespace and splits off the next
// whitespace delimited token.
func cutToken(b []byte) (token, rest []byte) {
	b = bytes.TrimLeftFunc(b, rule.IsWhitespace)
	end := bytes.IndexFunc(b, rule.IsWhitespace)
	if end < 0 {
		return b, nil
	}
	return b[:end], b[end:]
}

func (rd *ResponseDecoder) decodeHeaders(r *Response) error {
	headers := make([]string, 0)
	for {
		fieldLine, err := rd.readLine(rd.opts.MaxFieldLineLength)
		if err != nil {
			if errors.Is(err, errLineTooLong) {
				return ErrFieldLineTooLong
			}
			return err
		}

		if len(fieldLine) == 0 {
			// An empty line. This means that there are no more headers.
			break
		}

		headers = append(headers, string(fieldLine))
	}

	r.headers = headers

	return nil
}

func (rd *ResponseDecoder) decodeBody(r *Response) error {
	chunked := false
	for _, line := range r.headers {
		if line == chunkedFieldLine {
			chunked = true
			break
		}
	}

	if !chunked {
		// Everything left is the body, framing look-alikes included.
		r.body = rd.cur.AppendRest([]byte{})
		return nil
	}

	body, err := transfer.NewChunkedDecoder(rd.cur).Decode()
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return errors.Wrap(ErrTruncatedResponse, err.Error())
		}
		return errors.Wrap(err, "decoding chunked body")
	}

	r.body = body

	return nil
}

// DecodeResponse parses chunks with [DefaultDecodeOptions].
func DecodeResponse(chunks iolib.Chunks) (*Response, error) {
	return NewResponseDecoder(chunks, DefaultDecodeOptions).Decode()
}
