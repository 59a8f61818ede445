package transfer

import (
	"bytes"
	"math"
	"math/big"

	"wirehttp/application/util/rule"
	iolib "wirehttp/lib/io"
	bytesutil "wirehttp/util/bytes"

	"github.com/pkg/errors"
)

const CodingChunked = "chunked"

var ErrMalformedChunkSize = errors.New("chunk size is malformed")

// lastChunkSuffix is what a body ends with when the terminating chunk
// was swallowed as data.
var lastChunkSuffix = []byte("\r\n0\r\n\r\n")

// ChunkedDecoder converts a chunked http message body into contiguous bytes.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-7.1
type ChunkedDecoder struct {
	cur  *iolib.Cursor
	body []byte
}

func NewChunkedDecoder(cur *iolib.Cursor) *ChunkedDecoder {
	return &ChunkedDecoder{cur: cur}
}

// Decode reads chunks until the zero-size chunk.
// Trailer fields after the last chunk are left unread.
func (cd *ChunkedDecoder) Decode() ([]byte, error) {
	for {
		size, err := cd.decodeChunkHeader()
		if err != nil {
			return nil, err
		}

		if size == 0 {
			// Last chunk.
			break
		}

		cd.body, err = cd.cur.AppendN(cd.body, size)
		if err != nil {
			return nil, errors.Wrap(err, "reading chunk data")
		}

		// Skip through CRLF that follows chunk data.
		if _, err := bytesutil.ReadLine(cd.cur); err != nil {
			return nil, errors.Wrap(err, "reading chunk delimiter")
		}
	}

	return bytes.TrimSuffix(cd.body, lastChunkSuffix), nil
}

func (cd *ChunkedDecoder) decodeChunkHeader() (int, error) {
	line, err := bytesutil.ReadLine(cd.cur)
	if err != nil {
		return 0, errors.Wrap(err, "reading chunk size line")
	}

	size, err := decodeChunkSize(line)
	if err != nil {
		return 0, errors.Wrapf(err, "decoding chunk size %q", line)
	}

	return size, nil
}

// decodeChunkSize parses the leading hex digits of a chunk size line.
// Anything after them (chunk extensions, BWS) is ignored.
func decodeChunkSize(line []byte) (int, error) {
	line = bytes.TrimLeftFunc(line, rule.IsWhitespace)

	end := 0
	for end < len(line) && rule.IsHexDigit(rune(line[end])) {
		end++
	}
	if end == 0 {
		return 0, ErrMalformedChunkSize
	}

	n, ok := new(big.Int).SetString(string(line[:end]), 16)
	if !ok {
		return 0, ErrMalformedChunkSize
	}

	if n.BitLen() > 63 || n.Int64() > math.MaxInt {
		return 0, errors.Wrapf(ErrMalformedChunkSize, "chunk size larger than 63bit: %dbits", n.BitLen())
	}

	return int(n.Int64()), nil
}
