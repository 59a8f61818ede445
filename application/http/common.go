package http

import (
	"bytes"
	"strconv"
	"strings"

	"wirehttp/application/util/rule"

	"github.com/pkg/errors"
)

// [Major, Minor]
type Version [2]uint

var Version11 = Version{1, 1}

// ParseVersion parses http version text(e.g. "HTTP/1.1") into [Version].
func ParseVersion(b []byte) (Version, error) {
	prefix := []byte("HTTP/")
	if !bytes.HasPrefix(b, prefix) {
		return Version{}, errors.Errorf("http version prefix not found: %s", b)
	}

	// Get major and minor version.
	first, second, found := bytes.Cut(b[len(prefix):], []byte{'.'})
	if !found {
		return Version{}, errors.Errorf("dot seperator not found on version: %s", b)
	}

	major, err1 := strconv.ParseUint(string(first), 10, 64)
	minor, err2 := strconv.ParseUint(string(second), 10, 64)
	if err1 != nil || err2 != nil {
		return Version{}, errors.Errorf("http version is not convertable to int: %s", b)
	}

	return Version{uint(major), uint(minor)}, nil
}

func (ver Version) Text() []byte {
	buf := bytes.NewBuffer(nil)
	buf.WriteString("HTTP/")
	buf.WriteString(strconv.FormatUint(uint64(ver[0]), 10))
	buf.WriteByte('.')
	buf.WriteString(strconv.FormatUint(uint64(ver[1]), 10))
	return buf.Bytes()
}

func (ver Version) String() string { return string(ver.Text()) }

// Field is one parsed header line.
type Field struct{ Name, Value string }

func ParseField(fieldLine string) (Field, error) {
	name, value, found := strings.Cut(fieldLine, ":")
	if !found {
		return Field{}, errors.Errorf("colon seperator not found on header: %q", fieldLine)
	}

	// No whitespace is allowed between field name and colon.
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5.1-2
	if strings.TrimRight(name, string(rule.OWS)) != name {
		return Field{}, errors.New("field name has trailing whitespace")
	}

	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5.1-3
	value = strings.Trim(value, string(rule.OWS))

	return Field{Name: name, Value: value}, nil
}

// Is reports whether the field name equals name, ignoring case.
func (f Field) Is(name string) bool { return strings.EqualFold(f.Name, name) }

func (f Field) Text() string { return f.Name + ": " + f.Value }
