package iolib

import "io"

// WriteFull writes buf to w, retrying partial writes until all bytes are
// written or w returns an error.
func WriteFull(w io.Writer, buf []byte) (uint, error) {
	total := uint(0)
	for total < uint(len(buf)) {
		n, err := w.Write(buf[total:])
		total += uint(n)
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}
