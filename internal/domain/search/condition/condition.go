package condition

import (
	"fmt"
	"reflect"

	"github.com/kailas-cloud/esb/internal/domain"
)

// Operator is a comparison operator understood by New.
type Operator string

// Supported operators.
const (
	OpEq     Operator = "="
	OpGt     Operator = ">"
	OpLt     Operator = "<"
	OpGte    Operator = ">="
	OpLte    Operator = "<="
	OpExists Operator = "exists"
	OpIn     Operator = "in"
	OpLike   Operator = "like"
)

var operators = map[Operator]struct{}{
	OpEq: {}, OpGt: {}, OpLt: {}, OpGte: {}, OpLte: {},
	OpExists: {}, OpIn: {}, OpLike: {},
}

// ParseOperator maps an operator symbol to an Operator.
func ParseOperator(s string) (Operator, error) {
	op := Operator(s)
	if _, ok := operators[op]; !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedOperator, s)
	}
	return op, nil
}

// Kind is the engine-native shape of a condition.
type Kind string

// Condition kinds.
const (
	KindTerm     Kind = "term"
	KindTerms    Kind = "terms"
	KindRange    Kind = "range"
	KindExists   Kind = "exists"
	KindMatch    Kind = "match"
	KindWildcard Kind = "wildcard"
)

// Bound is a range boundary keyword.
type Bound string

// Range boundaries.
const (
	BoundGT  Bound = "gt"
	BoundGTE Bound = "gte"
	BoundLT  Bound = "lt"
	BoundLTE Bound = "lte"
)

// Condition is a single leaf predicate on one field.
type Condition struct {
	kind   Kind
	field  string
	value  any
	values []any
	bound  Bound
	err    error
}

// New builds a condition from a field, a value and an operator.
// For OpEq a slice value produces a membership (terms) condition.
func New(field string, value any, op Operator) (Condition, error) {
	switch op {
	case OpEq:
		if vals, ok := sequence(value); ok {
			return Terms(field, vals...), nil
		}
		return Term(field, value), nil
	case OpGt:
		return Range(field, BoundGT, value), nil
	case OpLt:
		return Range(field, BoundLT, value), nil
	case OpGte:
		return Range(field, BoundGTE, value), nil
	case OpLte:
		return Range(field, BoundLTE, value), nil
	case OpExists:
		return Exists(field), nil
	case OpIn:
		// A nil set is the empty set; the engine rejects a null term.
		if value == nil {
			return Terms(field), nil
		}
		if vals, ok := sequence(value); ok {
			return Terms(field, vals...), nil
		}
		return Terms(field, value), nil
	case OpLike:
		return Match(field, value), nil
	default:
		return Condition{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedOperator, string(op))
	}
}

// Where is New for call chains: an unsupported operator yields a Condition
// whose Err is set. Clauses drop such conditions and keep the error.
func Where(field string, value any, op Operator) Condition {
	c, err := New(field, value, op)
	if err != nil {
		return Condition{field: field, err: err}
	}
	return c
}

// Term creates an exact match condition.
func Term(field string, value any) Condition {
	return Condition{kind: KindTerm, field: field, value: value}
}

// Terms creates a membership condition: the field equals any of values.
// With no values the engine matches nothing.
func Terms(field string, values ...any) Condition {
	return Condition{kind: KindTerms, field: field, values: append([]any{}, values...)}
}

// Range creates a one-sided range condition.
func Range(field string, bound Bound, value any) Condition {
	return Condition{kind: KindRange, field: field, bound: bound, value: value}
}

// Exists creates a field presence condition.
func Exists(field string) Condition {
	return Condition{kind: KindExists, field: field}
}

// Match creates an analyzed full-text match condition.
func Match(field string, pattern any) Condition {
	return Condition{kind: KindMatch, field: field, value: pattern}
}

// Wildcard creates a glob-style pattern condition (* and ?).
func Wildcard(field, pattern string) Condition {
	return Condition{kind: KindWildcard, field: field, value: pattern}
}

// Kind returns the engine-native shape.
func (c Condition) Kind() Kind { return c.kind }

// Field returns the field path.
func (c Condition) Field() string { return c.field }

// Value returns the scalar value (nil for terms and exists).
func (c Condition) Value() any { return c.value }

// Values returns a copy of the membership values.
func (c Condition) Values() []any { return append([]any(nil), c.values...) }

// Bound returns the range boundary.
func (c Condition) Bound() Bound { return c.bound }

// Err returns the construction error, if any.
func (c Condition) Err() error { return c.err }

// MatchesNothing reports whether this is a membership test against an empty set.
func (c Condition) MatchesNothing() bool {
	return c.kind == KindTerms && len(c.values) == 0
}

// Source renders the condition as query DSL. Invalid conditions render as nil.
func (c Condition) Source() map[string]any {
	if c.err != nil {
		return nil
	}
	switch c.kind {
	case KindTerm:
		return map[string]any{"term": map[string]any{c.field: c.value}}
	case KindTerms:
		return map[string]any{"terms": map[string]any{c.field: append([]any{}, c.values...)}}
	case KindRange:
		return map[string]any{"range": map[string]any{
			c.field: map[string]any{string(c.bound): c.value},
		}}
	case KindExists:
		return map[string]any{"exists": map[string]any{"field": c.field}}
	case KindMatch:
		return map[string]any{"match": map[string]any{c.field: c.value}}
	case KindWildcard:
		return map[string]any{"wildcard": map[string]any{
			c.field: map[string]any{"value": c.value},
		}}
	}
	return nil
}

// sequence flattens slices and arrays into []any. Byte slices stay scalar.
func sequence(value any) ([]any, bool) {
	if value == nil {
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
