package query

import (
	"strconv"
	"strings"
)

const (
	DefaultPage = 1
	DefaultRows = 5
)

// Param is one decoded query-string pair.
type Param struct {
	Key   string
	Value string
}

// Spec is the compiled form of a listing request. Treat it as read-only;
// use WithEquality to derive a scoped copy.
type Spec struct {
	Page       int
	Rows       int
	Predicates []Predicate
	Sort       *Sort
}

// Offset is the number of records skipped before the requested page.
func (s *Spec) Offset() int {
	return (s.Page - 1) * s.Rows
}

func (s *Spec) Limit() int {
	return s.Rows
}

// WithEquality returns a copy of s with one more root-level equality
// predicate. It skips allow-list validation: it is meant for server-side
// scoping such as restricting a listing to the caller's own posts.
func (s *Spec) WithEquality(field string, v Value) *Spec {
	out := &Spec{Page: s.Page, Rows: s.Rows}
	if s.Sort != nil {
		sortCopy := *s.Sort
		out.Sort = &sortCopy
	}
	out.Predicates = make([]Predicate, 0, len(s.Predicates)+1)
	for _, p := range s.Predicates {
		out.Predicates = append(out.Predicates, p.clone())
	}
	out.Predicates = append(out.Predicates, Predicate{Kind: Equality, Field: field, Value: v})
	return out
}

// Compile classifies every parameter and builds the Spec. It stops at the
// first invalid parameter and returns no Spec in that case.
//
// Classification, per pair in the given order:
//   - empty values are ignored
//   - page, rows: positive integers
//   - boolean fields of the resource: "1" or "0"
//   - keys containing "sort": the value is a sort directive
//   - field.lt / field.lte / field.gt / field.gte: range bounds
//   - search.field: substring match
//   - anything else: equality on the key as a field name
func Compile(allow AllowList, params []Param) (*Spec, error) {
	spec := &Spec{Page: DefaultPage, Rows: DefaultRows}
	b := NewBuilder(allow)

	for _, p := range params {
		key, val := p.Key, p.Value
		if val == "" {
			continue
		}

		switch {
		case key == "page":
			n, err := parsePositive(key, val)
			if err != nil {
				return nil, err
			}
			spec.Page = n

		case key == "rows":
			n, err := parsePositive(key, val)
			if err != nil {
				return nil, err
			}
			spec.Rows = n

		case allow.IsBoolean(key):
			var v bool
			switch val {
			case "1":
				v = true
			case "0":
				v = false
			default:
				return nil, FilterValueError(key, val, `"1" or "0"`)
			}
			if err := b.AddEquality(allow.RelationOf(key), key, Bool(v)); err != nil {
				return nil, err
			}

		case strings.Contains(key, "sort"):
			s, err := ParseSort(allow, val)
			if err != nil {
				return nil, err
			}
			spec.Sort = &s

		default:
			if field, op, ok := splitRangeKey(key); ok {
				if err := b.AddRange(field, Op(op), Coerce(val)); err != nil {
					return nil, err
				}
				continue
			}
			if field, ok := strings.CutPrefix(key, "search."); ok {
				if err := b.AddSubstring(allow.RelationOf(field), field, val); err != nil {
					return nil, err
				}
				continue
			}
			if err := b.AddEquality(allow.RelationOf(key), key, Coerce(val)); err != nil {
				return nil, err
			}
		}
	}

	spec.Predicates = b.Build()
	return spec, nil
}

func parsePositive(key, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, paginationError(key, raw)
	}
	return n, nil
}

// splitRangeKey splits "createdAt.gte" into ("createdAt", "gte"). Only a
// dotted suffix mentioning lt or gt makes a range key; the operator itself is
// validated by the builder.
func splitRangeKey(key string) (field, op string, ok bool) {
	i := strings.LastIndex(key, ".")
	if i <= 0 || i == len(key)-1 {
		return "", "", false
	}
	op = key[i+1:]
	if !strings.Contains(op, "lt") && !strings.Contains(op, "gt") {
		return "", "", false
	}
	return key[:i], op, true
}
