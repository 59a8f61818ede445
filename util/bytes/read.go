package bytesutil

import (
	"bytes"
	"io"
)

// ReadUntil reads from r byte by byte until delim. The output will include delim.
// If r is exhausted first, the bytes read so far are returned with [io.ErrUnexpectedEOF].
func ReadUntil(r io.ByteReader, delim []byte) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	last := delim[len(delim)-1]
	for {
		c, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return buf.Bytes(), io.ErrUnexpectedEOF
			}
			return buf.Bytes(), err
		}

		buf.WriteByte(c)

		if c == last && bytes.HasSuffix(buf.Bytes(), delim) {
			return buf.Bytes(), nil
		}
	}
}

var crlf = []byte{'\r', '\n'}

// ReadLine reads until CRLF and cuts it.
// A lone CR or LF stays in the line.
func ReadLine(r io.ByteReader) ([]byte, error) {
	line, err := ReadUntil(r, crlf)
	if err != nil {
		return nil, err
	}

	return line[:len(line)-len(crlf)], nil
}
