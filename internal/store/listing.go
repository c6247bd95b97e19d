package store

import (
	"fmt"
	"strings"

	"blog-backend/internal/query"
)

// ColumnKind is the SQL type family of a listed column. Filter values are
// bound in the column's own type.
type ColumnKind int

const (
	TextColumn ColumnKind = iota
	IntColumn
	TimeColumn
	BoolColumn
)

// Column is a qualified column and its kind.
type Column struct {
	Name string
	Kind ColumnKind
}

// Table describes how a listed resource maps onto SQL: what to select, the
// FROM clause (including joins for relation fields) and the column of every
// predicate path ("title", "user.username", ...).
type Table struct {
	Select       string
	From         string
	Columns      map[string]Column
	DefaultOrder string
}

var PostTable = Table{
	Select: "p.id, p.user_id, p.title, p.content, p.is_published, p.published_at, p.created_at, u.username",
	From:   "posts p JOIN users u ON u.id = p.user_id",
	Columns: map[string]Column{
		"id":            {"p.id", IntColumn},
		"userId":        {"p.user_id", IntColumn},
		"title":         {"p.title", TextColumn},
		"content":       {"p.content", TextColumn},
		"isPublished":   {"p.is_published", BoolColumn},
		"publishedAt":   {"p.published_at", TimeColumn},
		"createdAt":     {"p.created_at", TimeColumn},
		"user.username": {"u.username", TextColumn},
		"user.email":    {"u.email", TextColumn},
	},
	DefaultOrder: "p.id DESC",
}

var CommentTable = Table{
	Select: "c.id, c.post_id, c.user_id, c.content, c.created_at",
	From:   "comments c",
	Columns: map[string]Column{
		"id":        {"c.id", IntColumn},
		"postId":    {"c.post_id", IntColumn},
		"userId":    {"c.user_id", IntColumn},
		"createdAt": {"c.created_at", TimeColumn},
	},
	DefaultOrder: "c.id ASC",
}

// ListQuery is a parameterized statement built from a query.Spec.
type ListQuery struct {
	SQL    string
	Params []any
}

// rangeOrder fixes the order bounds are rendered in.
var rangeOrder = []query.Op{query.OpGt, query.OpGte, query.OpLt, query.OpLte}

// BuildSelect builds the paged SELECT for spec. A filter value that does not
// fit its column yields a *query.Error of kind ErrInvalidFilterValue.
func BuildSelect(d Dialect, t Table, spec *query.Spec) (ListQuery, error) {
	pb := d.NewParamBuilder()
	where, err := buildWhere(t, spec.Predicates, pb)
	if err != nil {
		return ListQuery{}, err
	}

	sql := fmt.Sprintf("SELECT %s FROM %s", t.Select, t.From)
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}

	if spec.Sort != nil {
		col, ok := t.Columns[spec.Sort.Field]
		if !ok {
			return ListQuery{}, fmt.Errorf("no column for sort field %q", spec.Sort.Field)
		}
		dir := "ASC"
		if spec.Sort.Direction == query.Desc {
			dir = "DESC"
		}
		sql += fmt.Sprintf(" ORDER BY %s %s", col.Name, dir)
	} else if t.DefaultOrder != "" {
		sql += " ORDER BY " + t.DefaultOrder
	}

	limit := pb.Add(spec.Limit())
	offset := pb.Add(spec.Offset())
	sql += fmt.Sprintf(" LIMIT %s OFFSET %s", limit, offset)

	return ListQuery{SQL: sql, Params: pb.Params()}, nil
}

// BuildCount builds a COUNT query with the same filters as the select.
func BuildCount(d Dialect, t Table, spec *query.Spec) (ListQuery, error) {
	pb := d.NewParamBuilder()
	where, err := buildWhere(t, spec.Predicates, pb)
	if err != nil {
		return ListQuery{}, err
	}

	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s", t.From)
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	return ListQuery{SQL: sql, Params: pb.Params()}, nil
}

func buildWhere(t Table, preds []query.Predicate, pb ParamBuilder) ([]string, error) {
	var where []string
	for _, p := range preds {
		col, ok := t.Columns[p.Path()]
		if !ok {
			return nil, fmt.Errorf("no column for filter field %q", p.Path())
		}
		switch p.Kind {
		case query.Equality:
			v, err := bindValue(col, p.Path(), p.Value)
			if err != nil {
				return nil, err
			}
			where = append(where, fmt.Sprintf("%s = %s", col.Name, pb.Add(v)))
		case query.Substring:
			if col.Kind != TextColumn {
				return nil, fmt.Errorf("substring match on non-text column %s", col.Name)
			}
			where = append(where, fmt.Sprintf(`%s LIKE %s ESCAPE '\'`, col.Name, pb.Add("%"+escapeLike(p.Pattern)+"%")))
		case query.Range:
			for _, op := range rangeOrder {
				bound, ok := p.Bounds[op]
				if !ok {
					continue
				}
				v, err := bindValue(col, p.Path(), bound)
				if err != nil {
					return nil, err
				}
				where = append(where, fmt.Sprintf("%s %s %s", col.Name, sqlOperator(op), pb.Add(v)))
			}
		default:
			return nil, fmt.Errorf("unsupported predicate kind %v", p.Kind)
		}
	}
	return where, nil
}

// bindValue converts v to the Go type the driver encodes for col. Text
// columns compare against the token as sent, so "2024" or "007" still match
// a title.
func bindValue(col Column, field string, v query.Value) (any, error) {
	var want query.Kind
	var desc string
	switch col.Kind {
	case IntColumn:
		want, desc = query.KindInt, "an integer"
	case TimeColumn:
		want, desc = query.KindDate, "a date"
	case BoolColumn:
		want, desc = query.KindBool, `"1" or "0"`
	default:
		return v.Text(), nil
	}
	if v.Kind != want {
		return nil, query.FilterValueError(field, v.Text(), desc)
	}
	return v.Any(), nil
}

func sqlOperator(op query.Op) string {
	switch op {
	case query.OpLt:
		return "<"
	case query.OpLte:
		return "<="
	case query.OpGt:
		return ">"
	default:
		return ">="
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
