package jsonvalue

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

var ErrUnsupportedNumber = errors.New("number is not representable in json")

// Encode renders v as compact JSON text.
func Encode(v Value) (string, error) {
	buf := bytes.NewBuffer(nil)
	if err := encode(buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func encode(buf *bytes.Buffer, v Value) error {
	switch v := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case String:
		encodeString(buf, string(v))
	case Number:
		return encodeNumber(buf, float64(v))
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(v)))
	case Array:
		buf.WriteByte('[')
		for i, elem := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encode(buf, elem); err != nil {
				return errors.Wrapf(err, "encoding element %d", i)
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, m := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			encodeString(buf, m.Key)
			buf.WriteByte(':')
			if err := encode(buf, m.Value); err != nil {
				return errors.Wrapf(err, "encoding member %q", m.Key)
			}
		}
		buf.WriteByte('}')
	default:
		return errors.Errorf("unknown value type %T", v)
	}
	return nil
}

// maxExactInt bounds the integers rendered without a fraction or exponent.
const maxExactInt = 1 << 63

func encodeNumber(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errors.Wrapf(ErrUnsupportedNumber, "%v", f)
	}

	if f == math.Trunc(f) && -maxExactInt <= f && f < maxExactInt {
		buf.WriteString(strconv.FormatInt(int64(f), 10))
		return nil
	}

	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	return nil
}

func encodeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// A string always encodes.
	_ = enc.Encode(s)
	// Encoder terminates each value with a newline.
	buf.Truncate(buf.Len() - 1)
}
