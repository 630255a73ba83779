package result

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/esb/internal/domain/search/aggregation"
)

// Response is a parsed search response.
type Response struct {
	Total        int64                  `json:"total"`
	Hits         []Hit                  `json:"hits"`
	Aggregations map[string]Aggregation `json:"aggregations,omitempty"`
	ScrollID     string                 `json:"scroll_id,omitempty"`
	TookMillis   int64                  `json:"took_ms"`
}

// Aggregation returns the named top-level aggregation.
func (r *Response) Aggregation(name string) (Aggregation, bool) {
	a, ok := r.Aggregations[name]
	return a, ok
}

// Hit is a single matched document.
type Hit struct {
	Index  string          `json:"index"`
	Type   string          `json:"type,omitempty"`
	ID     string          `json:"id"`
	Score  *float64        `json:"score,omitempty"`
	Source json.RawMessage `json:"source,omitempty"`
	Fields map[string]any  `json:"fields,omitempty"`
}

// Decode unmarshals the document source into v.
func (h *Hit) Decode(v any) error {
	if len(h.Source) == 0 {
		return fmt.Errorf("hit %s has no source", h.ID)
	}
	if err := json.Unmarshal(h.Source, v); err != nil {
		return fmt.Errorf("decode hit %s: %w", h.ID, err)
	}
	return nil
}

// Aggregation is one computed aggregation. Metric kinds carry Value,
// bucket kinds carry Buckets.
type Aggregation struct {
	Name    string           `json:"name"`
	Kind    aggregation.Kind `json:"kind"`
	Value   *float64         `json:"value,omitempty"`
	Buckets []Bucket         `json:"buckets,omitempty"`
}

// Bucket is one group of a bucket aggregation.
type Bucket struct {
	Key          any                    `json:"key"`
	KeyAsString  string                 `json:"key_as_string,omitempty"`
	DocCount     int64                  `json:"doc_count"`
	Aggregations map[string]Aggregation `json:"aggregations,omitempty"`
}

type rawMetric struct {
	Value *float64 `json:"value"`
}

type rawTerms struct {
	Buckets []map[string]json.RawMessage `json:"buckets"`
}

// ParseAggregations decodes the engine's aggregation section using the
// requested nodes to tell metrics from buckets. Names absent from raw are skipped.
func ParseAggregations(nodes []aggregation.Node, raw map[string]json.RawMessage) (map[string]Aggregation, error) {
	if len(nodes) == 0 || len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]Aggregation, len(nodes))
	for _, n := range nodes {
		data, ok := raw[n.Name()]
		if !ok {
			continue
		}
		agg, err := parseNode(n, data)
		if err != nil {
			return nil, err
		}
		out[n.Name()] = agg
	}
	return out, nil
}

func parseNode(n aggregation.Node, data json.RawMessage) (Aggregation, error) {
	agg := Aggregation{Name: n.Name(), Kind: n.Kind()}
	if !n.Kind().IsBucket() {
		var m rawMetric
		if err := json.Unmarshal(data, &m); err != nil {
			return Aggregation{}, fmt.Errorf("parse aggregation %s: %w", n.Name(), err)
		}
		agg.Value = m.Value
		return agg, nil
	}

	var t rawTerms
	if err := json.Unmarshal(data, &t); err != nil {
		return Aggregation{}, fmt.Errorf("parse aggregation %s: %w", n.Name(), err)
	}
	child, hasChild := n.Child()
	agg.Buckets = make([]Bucket, 0, len(t.Buckets))
	for _, rb := range t.Buckets {
		b, err := parseBucket(rb)
		if err != nil {
			return Aggregation{}, fmt.Errorf("parse aggregation %s: %w", n.Name(), err)
		}
		if hasChild {
			sub, err := ParseAggregations([]aggregation.Node{child}, rb)
			if err != nil {
				return Aggregation{}, err
			}
			b.Aggregations = sub
		}
		agg.Buckets = append(agg.Buckets, b)
	}
	return agg, nil
}

func parseBucket(rb map[string]json.RawMessage) (Bucket, error) {
	var b Bucket
	if v, ok := rb["key"]; ok {
		if err := json.Unmarshal(v, &b.Key); err != nil {
			return Bucket{}, fmt.Errorf("bucket key: %w", err)
		}
	}
	if v, ok := rb["key_as_string"]; ok {
		if err := json.Unmarshal(v, &b.KeyAsString); err != nil {
			return Bucket{}, fmt.Errorf("bucket key_as_string: %w", err)
		}
	}
	if v, ok := rb["doc_count"]; ok {
		if err := json.Unmarshal(v, &b.DocCount); err != nil {
			return Bucket{}, fmt.Errorf("bucket doc_count: %w", err)
		}
	}
	return b, nil
}
