package store

import (
	"fmt"
	"strings"
)

// Dialect abstracts database-specific SQL generation and behavior.
type Dialect interface {
	// Name returns "postgres" or "sqlite".
	Name() string

	// DriverName returns the database/sql driver name ("pgx" or "sqlite").
	DriverName() string

	// NewParamBuilder creates a dialect-aware parameter builder.
	NewParamBuilder() ParamBuilder

	// Rebind rewrites $n placeholders into the dialect's placeholder syntax.
	Rebind(sqlStr string) string

	// SchemaSQL returns the DDL for every application table.
	SchemaSQL() string

	// MapError inspects a driver error and returns a well-known sentinel error if applicable.
	MapError(err error) error
}

// ParamBuilder accumulates query parameters and generates dialect-specific placeholders.
type ParamBuilder interface {
	// Add appends a value and returns the placeholder string.
	Add(v any) string

	// Params returns all accumulated parameter values.
	Params() []any

	// Count returns the number of parameters added so far.
	Count() int
}

// NewDialect creates a Dialect for the given driver name ("postgres" or "sqlite").
func NewDialect(driver string) Dialect {
	switch driver {
	case "sqlite":
		return &SQLiteDialect{}
	default:
		return &PostgresDialect{}
	}
}

type paramBuilder struct {
	prefix string
	params []any
	n      int
}

func (p *paramBuilder) Add(v any) string {
	p.n++
	p.params = append(p.params, v)
	return fmt.Sprintf("%s%d", p.prefix, p.n)
}

func (p *paramBuilder) Params() []any { return p.params }
func (p *paramBuilder) Count() int    { return p.n }

// rebindDollar replaces every $n with prefix+n.
func rebindDollar(sqlStr, prefix string) string {
	var b strings.Builder
	b.Grow(len(sqlStr))
	for i := 0; i < len(sqlStr); i++ {
		c := sqlStr[i]
		if c == '$' && i+1 < len(sqlStr) && sqlStr[i+1] >= '0' && sqlStr[i+1] <= '9' {
			b.WriteString(prefix)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
