package boolean

// Kind is the boolean occurrence type of a clause.
type Kind int

// Clause kinds.
const (
	// Must requires every item to match (AND).
	Must Kind = iota + 1
	// Should requires any item to match (OR).
	Should
	// MustNot requires no item to match (NOT).
	MustNot
)

// String returns the DSL key of the kind.
func (k Kind) String() string {
	switch k {
	case Must:
		return "must"
	case Should:
		return "should"
	case MustNot:
		return "must_not"
	default:
		return "unknown"
	}
}

// Query is anything that renders itself as query DSL:
// conditions, clauses and compounds.
type Query interface {
	Source() map[string]any
}

// errCarrier is implemented by items that may hold a construction error.
type errCarrier interface {
	Err() error
}

// Clause is a group of queries under one boolean kind.
type Clause struct {
	kind  Kind
	items []Query
	err   error
}

// All groups items under must.
func All(items ...Query) Clause { return newClause(Must, items) }

// Any groups items under should.
func Any(items ...Query) Clause { return newClause(Should, items) }

// None groups items under must_not.
func None(items ...Query) Clause { return newClause(MustNot, items) }

// newClause drops nil items and invalid conditions, keeping the first error.
func newClause(kind Kind, items []Query) Clause {
	c := Clause{kind: kind, items: make([]Query, 0, len(items))}
	for _, item := range items {
		if item == nil {
			continue
		}
		if ec, ok := item.(errCarrier); ok {
			if err := ec.Err(); err != nil {
				if c.err == nil {
					c.err = err
				}
				continue
			}
		}
		c.items = append(c.items, item)
	}
	return c
}

// Kind returns the clause kind.
func (c Clause) Kind() Kind { return c.kind }

// Items returns a copy of the clause items.
func (c Clause) Items() []Query { return append([]Query(nil), c.items...) }

// Len returns the number of items.
func (c Clause) Len() int { return len(c.items) }

// Err returns the first error carried by an item, if any.
func (c Clause) Err() error { return c.err }

// Source renders the clause as a nested bool query.
func (c Clause) Source() map[string]any {
	return map[string]any{"bool": map[string]any{c.kind.String(): sources(c.items)}}
}

// Compound is the root boolean container: one item list per kind.
type Compound struct {
	must    []Query
	should  []Query
	mustNot []Query
}

// Compose merges clauses into a compound, concatenating same-kind items in call order.
func Compose(clauses ...Clause) Compound {
	return Compound{}.Merge(clauses...)
}

// Merge returns a new compound with the clause items appended to their kinds.
// The receiver is left unchanged.
func (q Compound) Merge(clauses ...Clause) Compound {
	out := Compound{
		must:    append([]Query(nil), q.must...),
		should:  append([]Query(nil), q.should...),
		mustNot: append([]Query(nil), q.mustNot...),
	}
	for _, c := range clauses {
		switch c.kind {
		case Must:
			out.must = append(out.must, c.items...)
		case Should:
			out.should = append(out.should, c.items...)
		case MustNot:
			out.mustNot = append(out.mustNot, c.items...)
		}
	}
	return out
}

// Must returns a copy of the must items.
func (q Compound) Must() []Query { return append([]Query(nil), q.must...) }

// Should returns a copy of the should items.
func (q Compound) Should() []Query { return append([]Query(nil), q.should...) }

// MustNot returns a copy of the must_not items.
func (q Compound) MustNot() []Query { return append([]Query(nil), q.mustNot...) }

// IsEmpty reports whether the compound has no items.
func (q Compound) IsEmpty() bool {
	return len(q.must) == 0 && len(q.should) == 0 && len(q.mustNot) == 0
}

// Source renders the compound. An empty compound matches all documents.
func (q Compound) Source() map[string]any {
	if q.IsEmpty() {
		return map[string]any{"match_all": map[string]any{}}
	}
	b := make(map[string]any, 3)
	if len(q.must) > 0 {
		b[Must.String()] = sources(q.must)
	}
	if len(q.should) > 0 {
		b[Should.String()] = sources(q.should)
	}
	if len(q.mustNot) > 0 {
		b[MustNot.String()] = sources(q.mustNot)
	}
	return map[string]any{"bool": b}
}

func sources(items []Query) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item.Source()
	}
	return out
}
