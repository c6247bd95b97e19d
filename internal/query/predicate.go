package query

// PredicateKind distinguishes the three predicate shapes.
type PredicateKind int

const (
	Equality PredicateKind = iota
	Substring
	Range
)

func (k PredicateKind) String() string {
	switch k {
	case Substring:
		return "contains"
	case Range:
		return "range"
	default:
		return "equals"
	}
}

// Op is a range comparison operator.
type Op string

const (
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpGt  Op = "gt"
	OpGte Op = "gte"
)

var ops = []Op{OpLt, OpLte, OpGt, OpGte}

func opNames() []string {
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = string(op)
	}
	return names
}

// ParseOp recognizes one of the four comparison operators.
func ParseOp(s string) (Op, bool) {
	for _, op := range ops {
		if string(op) == s {
			return op, true
		}
	}
	return "", false
}

// Predicate is one node of the conjunctive filter. Relation is empty for
// fields of the listed resource itself; otherwise Field belongs to the named
// related entity.
type Predicate struct {
	Kind     PredicateKind
	Relation string
	Field    string
	// Value is set for Equality.
	Value Value
	// Pattern is set for Substring.
	Pattern string
	// Bounds is set for Range, holding at most one value per operator.
	Bounds map[Op]Value
}

// Path returns "relation.field" or just "field".
func (p Predicate) Path() string {
	if p.Relation == "" {
		return p.Field
	}
	return p.Relation + "." + p.Field
}

func (p Predicate) clone() Predicate {
	if p.Bounds != nil {
		b := make(map[Op]Value, len(p.Bounds))
		for op, v := range p.Bounds {
			b[op] = v
		}
		p.Bounds = b
	}
	return p
}

// Builder accumulates predicates for one resource, validating every insert
// against the allow-list. A second insert for the same field merges into the
// existing node instead of adding another one.
type Builder struct {
	allow AllowList
	preds []Predicate
}

func NewBuilder(allow AllowList) *Builder {
	return &Builder{allow: allow}
}

func (b *Builder) find(kind PredicateKind, relation, field string) int {
	for i, p := range b.preds {
		if p.Kind == kind && p.Relation == relation && p.Field == field {
			return i
		}
	}
	return -1
}

// AddEquality sets field (under relation, if any) equal to v. Last write wins.
func (b *Builder) AddEquality(relation, field string, v Value) error {
	if !b.allow.CanFilter(field) || b.allow.RelationOf(field) != relation {
		return fieldError("filter", field, b.allow.Filterable)
	}
	if i := b.find(Equality, relation, field); i >= 0 {
		b.preds[i].Value = v
		return nil
	}
	b.preds = append(b.preds, Predicate{Kind: Equality, Relation: relation, Field: field, Value: v})
	return nil
}

// AddSubstring requires field to contain pattern. Last write wins.
func (b *Builder) AddSubstring(relation, field, pattern string) error {
	if !b.allow.CanSearch(field) || b.allow.RelationOf(field) != relation {
		return fieldError("search", field, b.allow.Searchable)
	}
	if i := b.find(Substring, relation, field); i >= 0 {
		b.preds[i].Pattern = pattern
		return nil
	}
	b.preds = append(b.preds, Predicate{Kind: Substring, Relation: relation, Field: field, Pattern: pattern})
	return nil
}

// AddRange bounds field with op. Bounds on the same field share one node; a
// repeated operator overwrites its earlier value.
func (b *Builder) AddRange(field string, op Op, v Value) error {
	if !b.allow.CanRange(field) {
		return fieldError("ranged", field, b.allow.Rangeable)
	}
	if _, ok := ParseOp(string(op)); !ok {
		return operatorError(field, string(op))
	}
	switch v.Kind {
	case KindDate, KindInt:
	default:
		return FilterValueError(field, v.Text(), "a date or an integer")
	}
	if i := b.find(Range, "", field); i >= 0 {
		b.preds[i].Bounds[op] = v
		return nil
	}
	b.preds = append(b.preds, Predicate{Kind: Range, Field: field, Bounds: map[Op]Value{op: v}})
	return nil
}

// Build returns a copy of the predicates in insertion order.
func (b *Builder) Build() []Predicate {
	out := make([]Predicate, len(b.preds))
	for i, p := range b.preds {
		out[i] = p.clone()
	}
	return out
}
