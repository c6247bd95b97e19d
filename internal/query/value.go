package query

import (
	"strconv"
	"time"

	"github.com/spf13/cast"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindDate
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindDate:
		return "date"
	case KindBool:
		return "bool"
	default:
		return "string"
	}
}

// Value is a typed literal produced from a raw query-string token.
// Exactly one of the payload fields is meaningful, selected by Kind. Raw is
// the token the value was read from, kept for text columns.
type Value struct {
	Kind Kind
	Str  string
	Int  int64
	Time time.Time
	Bool bool
	Raw  string
}

func String(s string) Value { return Value{Kind: KindString, Str: s, Raw: s} }
func Int(n int64) Value     { return Value{Kind: KindInt, Int: n, Raw: strconv.FormatInt(n, 10)} }
func Bool(b bool) Value {
	v := Value{Kind: KindBool, Bool: b, Raw: "0"}
	if b {
		v.Raw = "1"
	}
	return v
}

func Date(t time.Time) Value {
	t = t.UTC()
	return Value{Kind: KindDate, Time: t, Raw: t.Format(time.RFC3339Nano)}
}

// Coerce converts a raw token into a Value. Dates win over integers, and
// anything that is neither falls back to the raw string. It never fails.
func Coerce(raw string) Value {
	var v Value
	if t, ok := parseDate(raw); ok {
		v = Date(t)
	} else if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		v = Int(n)
	} else {
		v = String(raw)
	}
	v.Raw = raw
	return v
}

// parseDate accepts the layouts of cast.StringToDate that carry a calendar
// date. Layouts without a year ("3:04PM", "Jan _2 15:04:05") parse into
// year 0 and are left to the integer and string rules.
func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	t, err := cast.StringToDate(raw)
	if err != nil || t.Year() == 0 {
		return time.Time{}, false
	}
	return t, true
}

// Any returns the Go value to bind as a statement parameter.
func (v Value) Any() any {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindDate:
		return v.Time
	case KindBool:
		return v.Bool
	default:
		return v.Str
	}
}

// Text is the value as the client wrote it, for comparison with text columns.
func (v Value) Text() string {
	if v.Raw != "" {
		return v.Raw
	}
	return v.String()
}

// String renders the value back into a query-string token. Coerce(v.String())
// yields v again for dates, integers and strings.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindDate:
		return v.Time.Format(time.RFC3339Nano)
	case KindBool:
		if v.Bool {
			return "1"
		}
		return "0"
	default:
		return v.Str
	}
}

// Equal reports whether two values hold the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInt:
		return v.Int == o.Int
	case KindDate:
		return v.Time.Equal(o.Time)
	case KindBool:
		return v.Bool == o.Bool
	default:
		return v.Str == o.Str
	}
}
