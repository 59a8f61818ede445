// Package jsonvalue is a closed set of JSON value types with an ordered
// object, an encoder and a parser.
package jsonvalue

// Value is one of [String], [Number], [Bool], [Null], [Array] or [Object].
type Value interface {
	isValue()
}

type (
	String string
	// Number encodes as an integer literal when it has no fractional part.
	Number float64
	Bool   bool
	Null   struct{}
	Array  []Value
	// Object keeps members in insertion order.
	Object []Member
)

type Member struct {
	Key   string
	Value Value
}

func (String) isValue() {}
func (Number) isValue() {}
func (Bool) isValue()   {}
func (Null) isValue()   {}
func (Array) isValue()  {}
func (Object) isValue() {}

// Get returns the value of the first member named key.
func (o Object) Get(key string) (Value, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Set replaces the first member named key, or appends a new one.
func (o Object) Set(key string, v Value) Object {
	for i, m := range o {
		if m.Key == key {
			o[i].Value = v
			return o
		}
	}
	return append(o, Member{Key: key, Value: v})
}

// Keys returns member keys in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}
