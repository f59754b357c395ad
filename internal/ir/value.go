package ir

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Value is a sealed interface representing the scalar types a record field can hold.
// Only Null, String, Int and Bool implement it. There is no float variant:
// inventory data is compared for equality and floats make that ambiguous.
type Value interface {
	irValue() // Sealed - only these types implement it

	// Kind names the variant ("null", "string", "int", "bool").
	Kind() string
}

// Null represents an absent or explicitly empty field value.
type Null struct{}

func (Null) irValue() {}

// Kind implements Value.
func (Null) Kind() string { return "null" }

// String renders Null as the empty string so templates print nothing for it.
func (Null) String() string { return "" }

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String represents a text value.
type String string

func (String) irValue() {}

// Kind implements Value.
func (String) Kind() string { return "string" }

// Int represents an integer value. Always int64.
type Int int64

func (Int) irValue() {}

// Kind implements Value.
func (Int) Kind() string { return "int" }

// Bool represents a boolean value.
type Bool bool

func (Bool) irValue() {}

// Kind implements Value.
func (Bool) Kind() string { return "bool" }

// Equal reports whether two values are equal after coercion to a common
// representation. Int compares numerically with Int, String bytewise with
// String, Null equals only Null. Any type mismatch is "not equal"; Equal never
// fails.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case nil:
		return b == nil
	default:
		return false
	}
}

// FromGo converts a Go value (as produced by YAML/JSON decoding or template
// literals) into a Value. Floats are accepted only when they hold an integral
// value.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint:
		return Int(val), nil
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("non-integer number %s", val)
		}
		return Int(n), nil
	case float64:
		if val != float64(int64(val)) {
			return nil, fmt.Errorf("non-integer number %v", val)
		}
		return Int(int64(val)), nil
	default:
		return nil, fmt.Errorf("unsupported value type: %T", v)
	}
}

// MustFromGo is like FromGo but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFromGo(v any) Value {
	val, err := FromGo(v)
	if err != nil {
		panic(err)
	}
	return val
}

// ToGo converts a Value back to its plain Go representation.
func ToGo(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Bool:
		return bool(val)
	default:
		return nil
	}
}

// Text formats a value the way it appears in rendered output.
func Text(v Value) string {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Bool:
		return strconv.FormatBool(bool(val))
	default:
		return ""
	}
}
