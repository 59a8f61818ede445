package jsonvalue

import (
	"reflect"
	"slices"
	"time"

	"github.com/pkg/errors"
)

// Marshaler is implemented by types that know their JSON representation.
type Marshaler interface {
	JSONValue() (Value, error)
}

// Time renders t with layout as a [String].
func Time(t time.Time, layout string) String {
	return String(t.Format(layout))
}

// From converts a Go value into a [Value].
//
// Nil pointers, nil interfaces and nil maps become [Null]. Maps must have
// string keys and produce objects with sorted keys. [time.Time] is
// rendered as RFC 3339 with nanoseconds.
func From(v any) (Value, error) {
	switch v := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return v, nil
	case Marshaler:
		return v.JSONValue()
	case time.Time:
		return Time(v, time.RFC3339Nano), nil
	case *time.Time:
		if v == nil {
			return Null{}, nil
		}
		return Time(*v, time.RFC3339Nano), nil
	}

	return fromReflect(reflect.ValueOf(v))
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Number(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null{}, nil
		}
		return From(rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return Null{}, nil
		}
		fallthrough
	case reflect.Array:
		arr := make(Array, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem, err := From(rv.Index(i).Interface())
			if err != nil {
				return nil, errors.Wrapf(err, "converting element %d", i)
			}
			arr = append(arr, elem)
		}
		return arr, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, errors.Errorf("map key must be a string, got %s", rv.Type().Key())
		}
		if rv.IsNil() {
			return Null{}, nil
		}

		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			switch {
			case a.String() < b.String():
				return -1
			case a.String() > b.String():
				return 1
			}
			return 0
		})

		obj := make(Object, 0, len(keys))
		for _, k := range keys {
			elem, err := From(rv.MapIndex(k).Interface())
			if err != nil {
				return nil, errors.Wrapf(err, "converting member %q", k.String())
			}
			obj = append(obj, Member{Key: k.String(), Value: elem})
		}
		return obj, nil
	}

	return nil, errors.Errorf("unsupported type %s", rv.Type())
}
