package aggregation

import (
	"reflect"
	"testing"
)

func TestTerms_DefaultSize(t *testing.T) {
	for _, size := range []int{0, -5} {
		if got := Terms("a", "f", size).Size(); got != DefaultTermsSize {
			t.Errorf("Terms size %d: Size() = %d, want %d", size, got, DefaultTermsSize)
		}
	}
	if got := Terms("a", "f", 20000).Size(); got != 20000 {
		t.Errorf("Size() = %d", got)
	}
}

func TestMetrics(t *testing.T) {
	tests := []struct {
		node Node
		kind Kind
	}{
		{Max("n", "f"), KindMax},
		{Min("n", "f"), KindMin},
		{Avg("n", "f"), KindAvg},
		{Sum("n", "f"), KindSum},
		{Cardinality("n", "f"), KindCardinality},
		{ValueCount("n", "f"), KindValueCount},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if tt.node.Kind() != tt.kind || tt.node.Kind().IsBucket() {
				t.Errorf("Kind() = %q", tt.node.Kind())
			}
			want := map[string]any{string(tt.kind): map[string]any{"field": "f"}}
			if got := tt.node.Source(); !reflect.DeepEqual(got, want) {
				t.Errorf("Source() = %#v", got)
			}
		})
	}
}

func TestNest_AttachesSoleChild(t *testing.T) {
	root := Nest(Terms("a", "f1", 0), Max("b", "f2"))

	if root.Name() != "a" {
		t.Errorf("Name() = %q", root.Name())
	}
	child, ok := root.Child()
	if !ok {
		t.Fatal("expected child")
	}
	if child.Name() != "b" || child.Kind() != KindMax || child.Field() != "f2" {
		t.Errorf("child = %+v", child)
	}
	if _, ok := child.Child(); ok {
		t.Error("child should have no sub-aggregation")
	}
}

func TestNest_DoesNotMutateInputs(t *testing.T) {
	parent := Terms("a", "f1", 5)
	child := Max("b", "f2")

	_ = Nest(parent, child)
	if _, ok := parent.Child(); ok {
		t.Error("parent was mutated")
	}

	grand := Min("c", "f3")
	nested := Nest(child, grand)
	outer := Nest(parent, nested)
	_ = Nest(nested, Sum("d", "f4"))

	inner, _ := outer.Child()
	leaf, ok := inner.Child()
	if !ok || leaf.Name() != "c" {
		t.Errorf("outer tree changed after re-nesting: %+v", leaf)
	}
}

func TestSource_Nested(t *testing.T) {
	root := Nest(Terms("emails", "email", 20000), Max("ids", "id"))
	want := map[string]any{
		"terms": map[string]any{"field": "email", "size": 20000},
		"aggs": map[string]any{
			"ids": map[string]any{"max": map[string]any{"field": "id"}},
		},
	}
	if got := root.Source(); !reflect.DeepEqual(got, want) {
		t.Errorf("Source() =\n%#v\nwant\n%#v", got, want)
	}
}

func TestSources_KeyedByName(t *testing.T) {
	got := Sources([]Node{Max("a", "x"), Min("b", "y")})
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if _, ok := got["a"]; !ok {
		t.Error("missing a")
	}
	if _, ok := got["b"]; !ok {
		t.Error("missing b")
	}
}
