package multipart

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"
)

type BuilderTestSuite struct {
	suite.Suite

	clock *clock.Mock
}

func TestBuilderTestSuite(t *testing.T) {
	suite.Run(t, new(BuilderTestSuite))
}

func (s *BuilderTestSuite) SetupTest() {
	s.clock = clock.NewMock()
	s.clock.Set(time.Unix(1700000000, 123456789))
}

// parse reads body back with the standard reader.
func (s *BuilderTestSuite) parse(body []byte, contentType string) []*multipart.Part {
	mediaType, params, err := mime.ParseMediaType(contentType)
	s.Require().NoError(err)
	s.Require().Equal("multipart/form-data", mediaType)

	r := multipart.NewReader(bytes.NewReader(body), params["boundary"])

	parts := []*multipart.Part{}
	for {
		p, err := r.NextRawPart()
		if err == io.EOF {
			return parts
		}
		s.Require().NoError(err)
		parts = append(parts, p)
	}
}

func (s *BuilderTestSuite) TestBoundaryFromClock() {
	body, contentType, err := New(s.clock).AddFormField("a", "b").Build()
	s.Require().NoError(err)

	_, params, err := mime.ParseMediaType(contentType)
	s.Require().NoError(err)
	s.Equal("===1700000000_123456===", params["boundary"])
	s.True(bytes.HasPrefix(body, []byte("--===1700000000_123456===\r\n")))
	s.True(bytes.HasSuffix(body, []byte("\r\n--===1700000000_123456===--\r\n")))
}

func (s *BuilderTestSuite) TestFormFields() {
	body, contentType, err := New(s.clock).
		AddFormField("name", "gopher").
		AddFormField("multi", "line one\r\nline two").
		Build()
	s.Require().NoError(err)

	parts := s.parse(body, contentType)
	s.Require().Len(parts, 2)

	s.Equal(`form-data; name="name"`, parts[0].Header.Get("Content-Disposition"))
	s.Equal("text/plain; charset=UTF-8", parts[0].Header.Get("Content-Type"))
	s.Equal("name", parts[0].FormName())
	data, err := io.ReadAll(parts[0])
	s.Require().NoError(err)
	s.Equal("gopher", string(data))

	data, err = io.ReadAll(parts[1])
	s.Require().NoError(err)
	s.Equal("line one\r\nline two", string(data))
}

func (s *BuilderTestSuite) TestFilePart() {
	dir := s.T().TempDir()
	path := filepath.Join(dir, "blob.bin")
	content := []byte{0x00, 0xFF, '\r', '\n', 'x'}
	s.Require().NoError(os.WriteFile(path, content, 0o600))

	body, contentType, err := New(s.clock).
		Charset("ISO-8859-1").
		AddFormField("kind", "raw").
		AddFilePart("upload", path, "blob.bin", "application/octet-stream").
		Build()
	s.Require().NoError(err)

	parts := s.parse(body, contentType)
	s.Require().Len(parts, 2)

	s.Equal("text/plain; charset=ISO-8859-1", parts[0].Header.Get("Content-Type"))

	file := parts[1]
	s.Equal("upload", file.FormName())
	s.Equal("blob.bin", file.FileName())
	s.Equal("application/octet-stream", file.Header.Get("Content-Type"))
	s.Equal("binary", file.Header.Get("Content-Transfer-Encoding"))

	data, err := io.ReadAll(file)
	s.Require().NoError(err)
	s.Equal(content, data)
}

func (s *BuilderTestSuite) TestMissingFile() {
	b := New(s.clock).
		AddFilePart("upload", filepath.Join(s.T().TempDir(), "nope"), "nope", "text/plain").
		AddFormField("after", "error")

	_, _, err := b.Build()
	s.ErrorIs(err, os.ErrNotExist)
}

func (s *BuilderTestSuite) TestBoundaryCollision() {
	base := "===1700000000_123456==="
	body, contentType, err := New(s.clock).
		AddFormField("a", "contains "+base+" inside").
		AddFileData("b", "f.txt", "text/plain", []byte(base+"1")).
		Build()
	s.Require().NoError(err)

	_, params, err := mime.ParseMediaType(contentType)
	s.Require().NoError(err)
	s.Equal(base+"2", params["boundary"])

	parts := s.parse(body, contentType)
	s.Require().Len(parts, 2)

	data, err := io.ReadAll(parts[1])
	s.Require().NoError(err)
	s.Equal(base+"1", string(data))
}

func (s *BuilderTestSuite) TestFreshBoundaryPerBuild() {
	_, ct1, err := New(s.clock).Build()
	s.Require().NoError(err)

	s.clock.Add(time.Microsecond)
	_, ct2, err := New(s.clock).Build()
	s.Require().NoError(err)

	s.NotEqual(ct1, ct2)
}

func (s *BuilderTestSuite) TestQuotedNames() {
	body, contentType, err := New(s.clock).
		AddFileData(`we"ird`, `a\b.txt`, "text/plain", []byte("x")).
		Build()
	s.Require().NoError(err)

	parts := s.parse(body, contentType)
	s.Require().Len(parts, 1)
	s.Equal(`we"ird`, parts[0].FormName())
}
