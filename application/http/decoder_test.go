package http

import (
	"testing"

	"wirehttp/application/http/transfer"
	iolib "wirehttp/lib/io"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func split(raw string, at ...int) iolib.Chunks {
	chunks := iolib.Chunks{}
	prev := 0
	for _, i := range at {
		chunks = append(chunks, []byte(raw[prev:i]))
		prev = i
	}
	return append(chunks, []byte(raw[prev:]))
}

type ResponseDecoderTestSuite struct {
	suite.Suite
}

func TestResponseDecoderTestSuite(t *testing.T) {
	suite.Run(t, new(ResponseDecoderTestSuite))
}

func (s *ResponseDecoderTestSuite) TestDecode() {
	body := "Hello, world!"

	rawResponse := "" +
		"HTTP/1.1 200 OK\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Length: 13\r\n" +
		"\r\n" +
		body

	r, err := DecodeResponse(split(rawResponse))
	s.Require().NoError(err)

	s.Equal("HTTP/1.1", r.Version())
	s.Equal(200, r.StatusCode())
	s.Equal("OK", r.Reason())
	s.Equal([]string{"Content-Type: text/plain", "Content-Length: 13"}, r.Headers())
	s.Equal(body, r.BodyString())

	ver, err := r.Proto()
	s.NoError(err)
	s.Equal(Version11, ver)
}

func (s *ResponseDecoderTestSuite) TestDecodeStatusLine() {
	testcases := []struct {
		desc       string
		input      string
		version    string
		statusCode int
		reason     string
		malformed  bool
	}{
		{
			desc:       "valid status line",
			input:      "HTTP/1.1 200 OK",
			version:    "HTTP/1.1",
			statusCode: 200,
			reason:     "OK",
		},
		{
			desc:       "reason phrase with spaces",
			input:      "HTTP/1.0 404 Not  Found",
			version:    "HTTP/1.0",
			statusCode: 404,
			reason:     "Not  Found",
		},
		{
			desc:       "missing reason phrase",
			input:      "HTTP/1.1 204",
			version:    "HTTP/1.1",
			statusCode: 204,
			reason:     "",
		},
		{
			desc:       "trailing whitespace after code",
			input:      "HTTP/1.1 200 ",
			version:    "HTTP/1.1",
			statusCode: 200,
			reason:     "",
		},
		{
			desc:       "tabs and repeated spaces",
			input:      "HTTP/1.1\t 503 \tService Unavailable\t",
			version:    "HTTP/1.1",
			statusCode: 503,
			reason:     "Service Unavailable",
		},
		{
			desc:       "four digit code is kept",
			input:      "HTTP/1.1 1000 Odd",
			version:    "HTTP/1.1",
			statusCode: 1000,
			reason:     "Odd",
		},
		{
			desc:      "single token",
			input:     "INVALID_STATUS_LINE",
			malformed: true,
		},
		{
			desc:      "empty line",
			input:     "",
			malformed: true,
		},
		{
			desc:      "non numeric code",
			input:     "HTTP/1.1 ABC OK",
			malformed: true,
		},
		{
			desc:      "missing status code",
			input:     "HTTP/1.1  OK",
			malformed: true,
		},
		{
			desc:      "negative code",
			input:     "HTTP/1.1 -1 OK",
			malformed: true,
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			r, err := DecodeResponse(split(tc.input + "\r\n\r\n"))
			if tc.malformed {
				var mErr *MalformedStartLineError
				s.Require().ErrorAs(err, &mErr)
				s.Equal(tc.input, mErr.Line)
				s.Contains(err.Error(), tc.input)
				return
			}

			s.Require().NoError(err)
			s.Equal(tc.version, r.Version())
			s.Equal(tc.statusCode, r.StatusCode())
			s.Equal(tc.reason, r.Reason())
		})
	}
}

func (s *ResponseDecoderTestSuite) TestDecodeHeaders() {
	raw := "" +
		"HTTP/1.1 200 OK\r\n" +
		"Set-Cookie: a=1\r\n" +
		"Set-Cookie: b=2\r\n" +
		"X-Odd:no-space\r\n" +
		"not a field line\r\n" +
		"\r\n"

	r, err := DecodeResponse(split(raw))
	s.Require().NoError(err)

	s.Equal([]string{"Set-Cookie: a=1", "Set-Cookie: b=2", "X-Odd:no-space", "not a field line"}, r.Headers())

	v, ok := r.Header("set-cookie")
	s.True(ok)
	s.Equal("a=1", v)

	v, ok = r.Header("X-ODD")
	s.True(ok)
	s.Equal("no-space", v)

	_, ok = r.Header("Content-Type")
	s.False(ok)

	s.Empty(r.Body())
}

func (s *ResponseDecoderTestSuite) TestDecodeBody() {
	testcases := []struct {
		desc     string
		headers  string
		body     string
		expected string
	}{
		{
			desc:     "chunked",
			headers:  "Transfer-Encoding: chunked\r\n",
			body:     "4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n",
			expected: "Wikipedia",
		},
		{
			desc:     "chunked among other headers",
			headers:  "Content-Type: text/plain\r\nTransfer-Encoding: chunked\r\nX: y\r\n",
			body:     "A\r\n0123456789\r\n0\r\n\r\n",
			expected: "0123456789",
		},
		{
			desc:     "framing look-alike without chunked header",
			headers:  "Content-Type: text/plain\r\n",
			body:     "4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n",
			expected: "4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n",
		},
		{
			desc:     "header match is case sensitive",
			headers:  "transfer-encoding: chunked\r\n",
			body:     "4\r\nWiki\r\n0\r\n\r\n",
			expected: "4\r\nWiki\r\n0\r\n\r\n",
		},
		{
			desc:     "header match is exact",
			headers:  "Transfer-Encoding: gzip, chunked\r\n",
			body:     "4\r\nWiki\r\n0\r\n\r\n",
			expected: "4\r\nWiki\r\n0\r\n\r\n",
		},
		{
			desc:     "empty body",
			headers:  "",
			body:     "",
			expected: "",
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			r, err := DecodeResponse(split("HTTP/1.1 200 OK\r\n" + tc.headers + "\r\n" + tc.body))
			s.Require().NoError(err)
			s.Equal(tc.expected, r.BodyString())
		})
	}
}

func (s *ResponseDecoderTestSuite) TestDecodeSplitAtEveryOffset() {
	raw := "" +
		"HTTP/1.1 200 OK\r\n" +
		"Transfer-Encoding: chunked\r\n" +
		"\r\n" +
		"4\r\nWiki\r\n5\r\npedia\r\nE\r\n in\r\n\r\nchunks.\r\n0\r\n\r\n"

	whole, err := DecodeResponse(split(raw))
	s.Require().NoError(err)
	s.Equal("Wikipedia in\r\n\r\nchunks.", whole.BodyString())

	for i := 0; i <= len(raw); i++ {
		r, err := DecodeResponse(split(raw, i))
		s.Require().NoError(err, "split at %d", i)
		s.Equal(whole, r, "split at %d", i)
	}

	for i := 1; i < len(raw); i++ {
		for j := i; j < len(raw); j += 7 {
			r, err := DecodeResponse(split(raw, i, j))
			s.Require().NoError(err, "split at %d, %d", i, j)
			s.Equal(whole.BodyString(), r.BodyString())
		}
	}
}

func (s *ResponseDecoderTestSuite) TestDecodeTruncated() {
	testcases := []struct {
		desc  string
		input string
	}{
		{desc: "nothing received", input: ""},
		{desc: "status line without CRLF", input: "HTTP/1.1 200 OK"},
		{desc: "status line with lone LF", input: "HTTP/1.1 200 OK\n\n"},
		{desc: "headers without terminating line", input: "HTTP/1.1 200 OK\r\nX: y\r\n"},
		{desc: "chunk data cut short", input: "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n9\r\nWiki"},
		{desc: "missing last chunk", input: "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n4\r\nWiki\r\n"},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			_, err := DecodeResponse(split(tc.input))
			s.ErrorIs(err, ErrTruncatedResponse)
		})
	}
}

func (s *ResponseDecoderTestSuite) TestDecodeMalformedChunkSize() {
	raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\nxyz\r\nWiki\r\n0\r\n\r\n"
	_, err := DecodeResponse(split(raw))
	s.ErrorIs(err, transfer.ErrMalformedChunkSize)
	s.False(errors.Is(err, ErrTruncatedResponse))
}

func TestDecodeLineLimits(t *testing.T) {
	raw := "HTTP/1.1 200 Nottttttttttt OK\r\nX-Long: aaaaaaaaaaaaaaaaaaaa\r\n\r\n"

	_, err := NewResponseDecoder(split(raw), DecodeOptions{MaxStatusLineLength: 20}).Decode()
	assert.ErrorIs(t, err, ErrStatusLineTooLong)

	_, err = NewResponseDecoder(split(raw), DecodeOptions{MaxFieldLineLength: 10}).Decode()
	assert.ErrorIs(t, err, ErrFieldLineTooLong)

	r, err := NewResponseDecoder(split(raw), DecodeOptions{MaxStatusLineLength: 100, MaxFieldLineLength: 100}).Decode()
	require.NoError(t, err)
	assert.Equal(t, "Nottttttttttt OK", r.Reason())
}
