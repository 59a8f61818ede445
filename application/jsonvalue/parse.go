package jsonvalue

import (
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

var ErrInvalidJSON = errors.New("invalid json")

// Parse reads one JSON document. Object member order is kept.
func Parse(text string) (Value, error) {
	if !gjson.Valid(text) {
		return nil, ErrInvalidJSON
	}
	return fromResult(gjson.Parse(text)), nil
}

// Lookup parses text and returns the value at a gjson path,
// e.g. "items.0.name".
func Lookup(text, path string) (Value, bool, error) {
	if !gjson.Valid(text) {
		return nil, false, ErrInvalidJSON
	}

	res := gjson.Get(text, path)
	if !res.Exists() {
		return nil, false, nil
	}

	return fromResult(res), true, nil
}

func fromResult(res gjson.Result) Value {
	switch res.Type {
	case gjson.String:
		return String(res.Str)
	case gjson.Number:
		return Number(res.Num)
	case gjson.True:
		return Bool(true)
	case gjson.False:
		return Bool(false)
	case gjson.JSON:
		if res.IsArray() {
			arr := Array{}
			res.ForEach(func(_, elem gjson.Result) bool {
				arr = append(arr, fromResult(elem))
				return true
			})
			return arr
		}

		obj := Object{}
		res.ForEach(func(key, elem gjson.Result) bool {
			obj = append(obj, Member{Key: key.Str, Value: fromResult(elem)})
			return true
		})
		return obj
	}

	return Null{}
}
