package aggregation

// DefaultTermsSize is the bucket count of a terms aggregation built with size <= 0.
const DefaultTermsSize = 10

// Kind is the aggregation type.
type Kind string

// Aggregation kinds.
const (
	KindTerms       Kind = "terms"
	KindMax         Kind = "max"
	KindMin         Kind = "min"
	KindAvg         Kind = "avg"
	KindSum         Kind = "sum"
	KindCardinality Kind = "cardinality"
	KindValueCount  Kind = "value_count"
)

// IsBucket reports whether the kind produces buckets rather than a single value.
func (k Kind) IsBucket() bool { return k == KindTerms }

// Node is a named aggregation with at most one sub-aggregation.
type Node struct {
	name  string
	kind  Kind
	field string
	size  int
	child *Node
}

// Terms creates a bucket aggregation grouping documents by field value.
func Terms(name, field string, size int) Node {
	if size <= 0 {
		size = DefaultTermsSize
	}
	return Node{name: name, kind: KindTerms, field: field, size: size}
}

// Max creates a maximum metric aggregation.
func Max(name, field string) Node { return metric(name, KindMax, field) }

// Min creates a minimum metric aggregation.
func Min(name, field string) Node { return metric(name, KindMin, field) }

// Avg creates an average metric aggregation.
func Avg(name, field string) Node { return metric(name, KindAvg, field) }

// Sum creates a sum metric aggregation.
func Sum(name, field string) Node { return metric(name, KindSum, field) }

// Cardinality creates an approximate distinct count aggregation.
func Cardinality(name, field string) Node { return metric(name, KindCardinality, field) }

// ValueCount creates a value count aggregation.
func ValueCount(name, field string) Node { return metric(name, KindValueCount, field) }

func metric(name string, kind Kind, field string) Node {
	return Node{name: name, kind: kind, field: field}
}

// Nest returns a copy of parent with child as its sole sub-aggregation.
// A previous child of parent is replaced. Neither input is modified.
func Nest(parent, child Node) Node {
	c := child
	parent.child = &c
	return parent
}

// Name returns the aggregation name.
func (n Node) Name() string { return n.name }

// Kind returns the aggregation type.
func (n Node) Kind() Kind { return n.kind }

// Field returns the aggregated field.
func (n Node) Field() string { return n.field }

// Size returns the bucket count for terms (0 for metrics).
func (n Node) Size() int { return n.size }

// Child returns the sub-aggregation, if any.
func (n Node) Child() (Node, bool) {
	if n.child == nil {
		return Node{}, false
	}
	return *n.child, true
}

// Source renders the aggregation body, without its name.
func (n Node) Source() map[string]any {
	body := map[string]any{"field": n.field}
	if n.kind == KindTerms {
		body["size"] = n.size
	}
	out := map[string]any{string(n.kind): body}
	if n.child != nil {
		out["aggs"] = map[string]any{n.child.name: n.child.Source()}
	}
	return out
}

// Sources renders a list of roots keyed by name. Later duplicates win.
func Sources(nodes []Node) map[string]any {
	out := make(map[string]any, len(nodes))
	for _, n := range nodes {
		out[n.name] = n.Source()
	}
	return out
}
