// Package multipart assembles multipart/form-data bodies.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc7578
package multipart

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"strconv"

	"wirehttp/application/util/rule"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

const defaultCharset = "UTF-8"

type part struct {
	header textproto.MIMEHeader
	data   []byte
}

// Builder collects parts and renders them with a boundary that does not
// occur in any part.
// The first error from adding a part is kept and returned by [Builder.Build].
type Builder struct {
	clock   clock.Clock
	charset string

	parts []part
	err   error
}

func New(clock clock.Clock) *Builder {
	return &Builder{clock: clock, charset: defaultCharset}
}

// Charset sets the charset announced by form fields.
func (b *Builder) Charset(charset string) *Builder {
	b.charset = charset
	return b
}

func (b *Builder) AddFormField(name, value string) *Builder {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name=`+rule.Quote(name))
	h.Set("Content-Type", "text/plain; charset="+b.charset)

	b.parts = append(b.parts, part{header: h, data: []byte(value)})
	return b
}

// AddFilePart reads the file at path into a part named field.
func (b *Builder) AddFilePart(field, path, filename, mimeType string) *Builder {
	if b.err != nil {
		return b
	}

	data, err := os.ReadFile(path)
	if err != nil {
		b.err = errors.Wrapf(err, "reading file part %q", field)
		return b
	}

	return b.AddFileData(field, filename, mimeType, data)
}

func (b *Builder) AddFileData(field, filename, mimeType string, data []byte) *Builder {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name=`+rule.Quote(field)+`; filename=`+rule.Quote(filename))
	h.Set("Content-Type", mimeType)
	h.Set("Content-Transfer-Encoding", "binary")

	b.parts = append(b.parts, part{header: h, data: bytes.Clone(data)})
	return b
}

func (b *Builder) Len() int { return len(b.parts) }

// Build renders the body and returns it with its Content-Type value.
func (b *Builder) Build() (body []byte, contentType string, err error) {
	if b.err != nil {
		return nil, "", b.err
	}

	boundary := b.boundary()

	buf := bytes.NewBuffer(nil)
	w := multipart.NewWriter(buf)
	if err := w.SetBoundary(boundary); err != nil {
		return nil, "", errors.Wrapf(err, "setting boundary %q", boundary)
	}

	for _, p := range b.parts {
		pw, err := w.CreatePart(p.header)
		if err != nil {
			return nil, "", errors.Wrap(err, "creating part")
		}
		if _, err := pw.Write(p.data); err != nil {
			return nil, "", errors.Wrap(err, "writing part")
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "closing multipart writer")
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

// boundary is "===<sec>_<usec>===" on the builder clock, suffixed with a
// counter while it collides with part content.
func (b *Builder) boundary() string {
	now := b.clock.Now()
	base := "===" + strconv.FormatInt(now.Unix(), 10) + "_" + strconv.Itoa(now.Nanosecond()/1000) + "==="

	boundary := base
	for i := 1; b.collides(boundary); i++ {
		boundary = base + strconv.Itoa(i)
	}
	return boundary
}

func (b *Builder) collides(boundary string) bool {
	for _, p := range b.parts {
		if bytes.Contains(p.data, []byte(boundary)) {
			return true
		}
	}
	return false
}
