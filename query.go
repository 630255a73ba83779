package esb

import (
	"github.com/kailas-cloud/esb/internal/domain/search/aggregation"
	"github.com/kailas-cloud/esb/internal/domain/search/boolean"
	"github.com/kailas-cloud/esb/internal/domain/search/condition"
	"github.com/kailas-cloud/esb/internal/domain/search/request"
	"github.com/kailas-cloud/esb/internal/domain/search/result"
)

// Query building blocks.
type (
	Condition = condition.Condition
	Operator  = condition.Operator
	Clause    = boolean.Clause
	Compound  = boolean.Compound
	// Query is anything a clause can hold: a Condition, a Clause or a Compound.
	Query = boolean.Query

	Aggregation = aggregation.Node
	SortField   = request.SortField
	Direction   = request.Direction
	Request     = request.Request
)

// Result types.
type (
	Response          = result.Response
	Hit               = result.Hit
	AggregationResult = result.Aggregation
	Bucket            = result.Bucket
)

// Operators accepted by Where.
const (
	OpEq     = condition.OpEq
	OpGt     = condition.OpGt
	OpLt     = condition.OpLt
	OpGte    = condition.OpGte
	OpLte    = condition.OpLte
	OpExists = condition.OpExists
	OpIn     = condition.OpIn
	OpLike   = condition.OpLike
)

// Sort directions.
const (
	DirAsc  = request.Asc
	DirDesc = request.Desc
)

// Where builds a condition from an operator. An unsupported operator does not
// fail here: the error travels with the condition and surfaces from Do.
func Where(field string, value any, op Operator) Condition {
	return condition.Where(field, value, op)
}

// ParseOperator maps a symbol such as ">=" or "in" to an Operator.
func ParseOperator(s string) (Operator, error) { return condition.ParseOperator(s) }

// NewCondition is Where with an immediate error.
func NewCondition(field string, value any, op Operator) (Condition, error) {
	return condition.New(field, value, op)
}

// Eq matches an exact value, or any of the values of a slice.
func Eq(field string, value any) Condition { return condition.Where(field, value, OpEq) }

// In matches any of values. A scalar is treated as a single value.
func In(field string, values any) Condition { return condition.Where(field, values, OpIn) }

// Gt matches field > value.
func Gt(field string, value any) Condition { return condition.Range(field, condition.BoundGT, value) }

// Gte matches field >= value.
func Gte(field string, value any) Condition {
	return condition.Range(field, condition.BoundGTE, value)
}

// Lt matches field < value.
func Lt(field string, value any) Condition { return condition.Range(field, condition.BoundLT, value) }

// Lte matches field <= value.
func Lte(field string, value any) Condition {
	return condition.Range(field, condition.BoundLTE, value)
}

// Exists matches documents where field is present.
func Exists(field string) Condition { return condition.Exists(field) }

// Like runs a full-text match of pattern against field.
func Like(field string, pattern any) Condition { return condition.Match(field, pattern) }

// Term, Terms and Wildcard build engine-native conditions directly.
func Term(field string, value any) Condition { return condition.Term(field, value) }

func Terms(field string, values ...any) Condition { return condition.Terms(field, values...) }

func Wildcard(field, pattern string) Condition { return condition.Wildcard(field, pattern) }

// All requires every item to match.
func All(items ...Query) Clause { return boolean.All(items...) }

// Any requires at least one item to match.
func Any(items ...Query) Clause { return boolean.Any(items...) }

// None excludes documents matching any item.
func None(items ...Query) Clause { return boolean.None(items...) }

// Compose groups clauses into a standalone compound query.
func Compose(clauses ...Clause) Compound { return boolean.Compose(clauses...) }

// BucketByTerm groups documents by the values of field.
// size <= 0 uses the engine default of 10 buckets.
func BucketByTerm(name, field string, size int) Aggregation {
	return aggregation.Terms(name, field, size)
}

func MetricMax(name, field string) Aggregation { return aggregation.Max(name, field) }

func MetricMin(name, field string) Aggregation { return aggregation.Min(name, field) }

func MetricAvg(name, field string) Aggregation { return aggregation.Avg(name, field) }

func MetricSum(name, field string) Aggregation { return aggregation.Sum(name, field) }

func Cardinality(name, field string) Aggregation { return aggregation.Cardinality(name, field) }

func ValueCount(name, field string) Aggregation { return aggregation.ValueCount(name, field) }

// Nest returns a copy of parent with child as its only sub-aggregation.
func Nest(parent, child Aggregation) Aggregation { return aggregation.Nest(parent, child) }

// Asc sorts by field ascending.
func Asc(field string) SortField { return SortField{Field: field, Direction: request.Asc} }

// Desc sorts by field descending.
func Desc(field string) SortField { return SortField{Field: field, Direction: request.Desc} }

// SortBy sorts by field in direction dir ("asc" or "desc").
// An unknown direction is reported by SearchBuilder.Sort.
func SortBy(field, dir string) SortField {
	return SortField{Field: field, Direction: request.Direction(dir)}
}
