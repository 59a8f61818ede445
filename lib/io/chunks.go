package iolib

import "io"

// Chunks is an ordered list of independently allocated byte slices.
// It is logically one byte stream, but the slices are never joined
// unless [Chunks.Bytes] is called.
type Chunks [][]byte

// Append copies p into a newly allocated chunk.
// Empty input does not create a chunk.
func (c *Chunks) Append(p []byte) {
	if len(p) == 0 {
		return
	}
	chunk := make([]byte, len(p))
	copy(chunk, p)
	*c = append(*c, chunk)
}

// Len returns the total length of all chunks.
func (c Chunks) Len() int {
	total := 0
	for _, chunk := range c {
		total += len(chunk)
	}
	return total
}

// Bytes returns the concatenation of all chunks.
func (c Chunks) Bytes() []byte {
	b := make([]byte, 0, c.Len())
	for _, chunk := range c {
		b = append(b, chunk...)
	}
	return b
}

// Cursor walks over [Chunks] one byte at a time.
// Callers never see chunk boundaries.
type Cursor struct {
	chunks Chunks
	idx    int // current chunk
	off    int // offset inside current chunk
}

var (
	_ io.Reader     = (*Cursor)(nil)
	_ io.ByteReader = (*Cursor)(nil)
)

func NewCursor(chunks Chunks) *Cursor {
	return &Cursor{chunks: chunks}
}

// settle moves past exhausted (or empty) chunks.
func (c *Cursor) settle() {
	for c.idx < len(c.chunks) && c.off >= len(c.chunks[c.idx]) {
		c.idx++
		c.off = 0
	}
}

// AtEnd reports whether every byte has been consumed.
func (c *Cursor) AtEnd() bool {
	c.settle()
	return c.idx >= len(c.chunks)
}

// ReadByte returns the next byte, or [io.EOF] once the data is exhausted.
func (c *Cursor) ReadByte() (byte, error) {
	if c.AtEnd() {
		return 0, io.EOF
	}

	b := c.chunks[c.idx][c.off]
	c.off++

	return b, nil
}

// Read implements [io.Reader]. A single call never crosses more than one chunk.
func (c *Cursor) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if c.AtEnd() {
		return 0, io.EOF
	}

	n := copy(p, c.chunks[c.idx][c.off:])
	c.off += n

	return n, nil
}

// AppendN appends exactly n bytes to dst.
// If fewer than n bytes remain, the remaining bytes are appended and
// [io.ErrUnexpectedEOF] is returned.
func (c *Cursor) AppendN(dst []byte, n int) ([]byte, error) {
	for n > 0 {
		if c.AtEnd() {
			return dst, io.ErrUnexpectedEOF
		}

		chunk := c.chunks[c.idx][c.off:]
		if len(chunk) > n {
			chunk = chunk[:n]
		}

		dst = append(dst, chunk...)
		c.off += len(chunk)
		n -= len(chunk)
	}

	return dst, nil
}

// AppendRest appends all remaining bytes to dst.
func (c *Cursor) AppendRest(dst []byte) []byte {
	for !c.AtEnd() {
		dst = append(dst, c.chunks[c.idx][c.off:]...)
		c.off = len(c.chunks[c.idx])
	}
	return dst
}
