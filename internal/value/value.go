// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package value models the dynamically shaped input data supplied at render
// time. A Value is a tagged variant so that path resolution and formatting
// can switch on the kind instead of type-asserting arbitrary interfaces.
package value

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindAbsent Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
	KindDate
	KindList
	KindMap
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is an immutable node of a value bag. The zero Value is Absent.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	t    time.Time
	list []Value
	m    map[string]Value
}

// Absent is the marker returned when a path does not resolve.
var Absent = Value{}

// Null is an explicit null supplied by the caller.
var Null = Value{kind: KindNull}

func String(s string) Value        { return Value{kind: KindString, str: s} }
func Number(n float64) Value       { return Value{kind: KindNumber, num: n} }
func Bool(b bool) Value            { return Value{kind: KindBool, b: b} }
func Date(t time.Time) Value       { return Value{kind: KindDate, t: t} }
func List(items ...Value) Value    { return Value{kind: KindList, list: items} }
func Map(m map[string]Value) Value { return Value{kind: KindMap, m: m} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v is the absent marker.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// IsNil reports whether v carries no data (absent or null).
func (v Value) IsNil() bool { return v.kind == KindAbsent || v.kind == KindNull }

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Num returns the number payload and whether v is a number.
func (v Value) Num() (float64, bool) { return v.num, v.kind == KindNumber }

// BoolVal returns the bool payload and whether v is a bool.
func (v Value) BoolVal() (bool, bool) { return v.b, v.kind == KindBool }

// Time returns the date payload and whether v is a date.
func (v Value) Time() (time.Time, bool) { return v.t, v.kind == KindDate }

// Items returns the elements of a list, or nil for any other kind.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

// Field returns the named entry of a map, or Absent.
func (v Value) Field(name string) Value {
	if v.kind != KindMap {
		return Absent
	}
	f, ok := v.m[name]
	if !ok {
		return Absent
	}
	return f
}

// Keys returns the sorted keys of a map value.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Truthy applies the conditional-block truth test: absent, null, false, 0,
// NaN, "", empty list and empty map are falsy; everything else is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindString:
		return v.str != ""
	case KindNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case KindBool:
		return v.b
	case KindDate:
		return !v.t.IsZero()
	case KindList:
		return len(v.list) > 0
	case KindMap:
		return len(v.m) > 0
	default:
		return false
	}
}

// String renders v as display text without any locale filter. Absent and
// null values render as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return FormatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindDate:
		return formatDate(v.t)
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return strings.Join(parts, ",")
	case KindMap:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return ""
	}
}

// FormatNumber prints n in its shortest round-tripping decimal form.
func FormatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

// FromAny converts decoded JSON or YAML data (maps, slices, scalars) into a
// Value. Unsupported types are stringified with fmt.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case uint:
		return Number(float64(t))
	case uint64:
		return Number(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return String(t.String())
		}
		return Number(f)
	case time.Time:
		return Date(t)
	case *time.Time:
		if t == nil {
			return Null
		}
		return Date(*t)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromAny(item)
		}
		return List(items...)
	case []string:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = String(item)
		}
		return List(items...)
	case []map[string]any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromAny(item)
		}
		return List(items...)
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, item := range t {
			m[k] = FromAny(item)
		}
		return Map(m)
	case map[string]string:
		m := make(map[string]Value, len(t))
		for k, item := range t {
			m[k] = String(item)
		}
		return Map(m)
	default:
		return String(fmt.Sprintf("%v", t))
	}
}

// Any converts v back into plain Go data suitable for encoding.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindDate:
		return v.t.Format(time.RFC3339Nano)
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Any()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, item := range v.m {
			if item.IsAbsent() {
				continue
			}
			out[k] = item.Any()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON encodes v as plain JSON. Dates become RFC 3339 strings.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

// UnmarshalJSON decodes arbitrary JSON into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	*v = FromAny(raw)
	return nil
}
