/*
Copyright © 2025 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package variables

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Value is one node of a variable tree: Scalar, Sequence or Map.
type Value interface {
	isValue()
}

// Scalar holds a single YAML scalar: string, bool, integer, float, timestamp
// or null.
type Scalar struct {
	raw any
}

// Sequence is an ordered list of values.
type Sequence []Value

// Map is a mapping from variable name to value.
type Map map[string]Value

func (Scalar) isValue()   {}
func (Sequence) isValue() {}
func (Map) isValue()      {}

// NewScalar wraps a raw scalar.
func NewScalar(v any) Scalar {
	return Scalar{raw: v}
}

// String returns a Scalar holding s.
func String(s string) Scalar {
	return Scalar{raw: s}
}

// Raw returns the wrapped Go value.
func (s Scalar) Raw() any {
	return s.raw
}

// IsNull reports whether the scalar is a YAML null.
func (s Scalar) IsNull() bool {
	return s.raw == nil
}

// String renders the scalar the way it would appear in a shell environment.
func (s Scalar) String() string {
	if s.raw == nil {
		return ""
	}
	if v, ok := s.raw.(string); ok {
		return v
	}
	return fmt.Sprint(s.raw)
}

// FromAny converts decoded YAML (or any equivalent Go structure) into a Value.
func FromAny(v any) (Value, error) {
	switch t := v.(type) {
	case Value:
		return clone(t), nil
	case map[string]any:
		m := make(Map, len(t))
		for k, item := range t {
			converted, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			m[k] = converted
		}
		return m, nil
	case map[any]any:
		m := make(Map, len(t))
		for k, item := range t {
			key, err := keyString(k)
			if err != nil {
				return nil, err
			}
			if _, dup := m[key]; dup {
				return nil, fmt.Errorf("duplicate key %q after string conversion", key)
			}
			converted, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			m[key] = converted
		}
		return m, nil
	case map[string]string:
		m := make(Map, len(t))
		for k, item := range t {
			m[k] = String(item)
		}
		return m, nil
	case []any:
		seq := make(Sequence, 0, len(t))
		for i, item := range t {
			converted, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			seq = append(seq, converted)
		}
		return seq, nil
	case []string:
		seq := make(Sequence, 0, len(t))
		for _, item := range t {
			seq = append(seq, String(item))
		}
		return seq, nil
	case nil, string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64, time.Time:
		return Scalar{raw: t}, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// keyString converts a non-string YAML mapping key to its string form.
func keyString(k any) (string, error) {
	switch t := k.(type) {
	case string:
		return t, nil
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(t), nil
	default:
		return "", fmt.Errorf("unsupported mapping key type %T", k)
	}
}

// ToAny converts a Value back into plain Go maps, slices and scalars.
func ToAny(v Value) any {
	switch t := v.(type) {
	case Map:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = ToAny(item)
		}
		return out
	case Sequence:
		out := make([]any, 0, len(t))
		for _, item := range t {
			out = append(out, ToAny(item))
		}
		return out
	case Scalar:
		return t.raw
	default:
		return nil
	}
}

// Equal reports whether a and b are structurally identical trees.
func Equal(a, b Value) bool {
	switch at := a.(type) {
	case nil:
		return b == nil
	case Scalar:
		bt, ok := b.(Scalar)
		return ok && reflect.DeepEqual(at.raw, bt.raw)
	case Sequence:
		bt, ok := b.(Sequence)
		if !ok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !Equal(at[i], bt[i]) {
				return false
			}
		}
		return true
	case Map:
		bt, ok := b.(Map)
		if !ok || len(at) != len(bt) {
			return false
		}
		for k, av := range at {
			bv, present := bt[k]
			if !present || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// clone returns a deep copy of v.
func clone(v Value) Value {
	switch t := v.(type) {
	case Map:
		if t == nil {
			return Map(nil)
		}
		out := make(Map, len(t))
		for k, item := range t {
			out[k] = clone(item)
		}
		return out
	case Sequence:
		if t == nil {
			return Sequence(nil)
		}
		out := make(Sequence, len(t))
		for i, item := range t {
			out[i] = clone(item)
		}
		return out
	default:
		return v
	}
}

// Clone returns a deep copy of the map.
func (m Map) Clone() Map {
	out, _ := clone(m).(Map)
	return out
}

// Format renders v compactly for error messages, e.g. {a: "x", b: [1, 2]}.
func Format(v Value) string {
	switch t := v.(type) {
	case nil:
		return "<nil>"
	case Scalar:
		switch raw := t.raw.(type) {
		case nil:
			return "null"
		case string:
			return fmt.Sprintf("%q", raw)
		default:
			return fmt.Sprint(raw)
		}
	case Sequence:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, Format(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Map:
		keys := t.Keys()
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+Format(t[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Keys returns the map keys in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
