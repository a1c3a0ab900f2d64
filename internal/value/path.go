// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package value

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Resolve walks a dotted path ("company.address.city") through bag and
// returns the value found, or Absent when any segment is missing or an
// intermediate value is not a container. Numeric segments index lists.
func Resolve(bag Value, path string) Value {
	path = strings.TrimSpace(path)
	if path == "" {
		return Absent
	}

	cur := bag
	for _, seg := range strings.Split(path, ".") {
		switch cur.kind {
		case KindMap:
			next, ok := cur.m[seg]
			if !ok {
				return Absent
			}
			cur = next
		case KindList:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(cur.list) {
				return Absent
			}
			cur = cur.list[i]
		default:
			return Absent
		}
	}
	return cur
}

// With returns a copy of bag where path is set to v. Missing intermediate
// maps are created; a non-map intermediate is replaced. The input bag is
// not modified.
func With(bag Value, path string, v Value) Value {
	segs := strings.Split(strings.TrimSpace(path), ".")
	return with(bag, segs, v)
}

func with(cur Value, segs []string, v Value) Value {
	if len(segs) == 0 {
		return v
	}
	m := make(map[string]Value, len(cur.m)+1)
	if cur.kind == KindMap {
		for k, item := range cur.m {
			m[k] = item
		}
	}
	m[segs[0]] = with(m[segs[0]], segs[1:], v)
	return Map(m)
}

// dateLayouts lists the layouts tried when coercing a string into a date.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006",
	"01/02/2006",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ToTime coerces v into a time. Strings are parsed against common layouts;
// numbers are Unix timestamps (milliseconds when larger than 1e10).
func ToTime(v Value) (time.Time, error) {
	switch v.kind {
	case KindDate:
		return v.t, nil
	case KindNumber:
		n := int64(v.num)
		if n > 1e10 || n < -1e10 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	case KindString:
		s := strings.TrimSpace(v.str)
		if s == "" {
			return time.Time{}, fmt.Errorf("cannot parse empty string as date")
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("could not parse date string %q", s)
	default:
		return time.Time{}, fmt.Errorf("cannot convert %s to date", v.kind)
	}
}

// ToFloat coerces v into a float64. Strings are trimmed and may use either
// a dot or a single comma as the decimal separator.
func ToFloat(v Value) (float64, error) {
	switch v.kind {
	case KindNumber:
		return v.num, nil
	case KindString:
		s := strings.TrimSpace(v.str)
		f, err := strconv.ParseFloat(s, 64)
		if err == nil {
			return f, nil
		}
		if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
			if f, err2 := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); err2 == nil {
				return f, nil
			}
		}
		return 0, fmt.Errorf("cannot parse %q as number", s)
	default:
		return 0, fmt.Errorf("cannot convert %s to number", v.kind)
	}
}
