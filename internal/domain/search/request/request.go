package request

import (
	"fmt"
	"maps"
	"strings"

	"github.com/kailas-cloud/esb/internal/domain"
	"github.com/kailas-cloud/esb/internal/domain/search/aggregation"
	"github.com/kailas-cloud/esb/internal/domain/search/boolean"
)

// Direction is a sort order.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts "asc" and "desc" in any case.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(s)); d {
	case Asc, Desc:
		return d, nil
	default:
		return "", fmt.Errorf("%w: direction %q", domain.ErrInvalidSort, s)
	}
}

// SortField is one entry of an ordered sort specification.
type SortField struct {
	Field     string
	Direction Direction
}

// Request is a search ready for dispatch.
type Request struct {
	Indices []string
	Type    string
	// Query is nil for match-all.
	Query *boolean.Compound
	// RawQuery is an engine-native query clause sent as is. It takes the
	// place of Query when set.
	RawQuery     map[string]any
	Aggregations []aggregation.Node
	// From and Size are sent only when Paged is set. Size 0 asks for no hits.
	From         int
	Size         int
	Paged        bool
	Sort         []SortField
	StoredFields []string
}

// Validate checks the request invariants.
func (r *Request) Validate() error {
	if len(r.Indices) == 0 {
		return fmt.Errorf("%w: no index", domain.ErrInvalidConfiguration)
	}
	if r.From < 0 || r.Size < 0 {
		return fmt.Errorf("%w: size=%d from=%d", domain.ErrInvalidPagination, r.Size, r.From)
	}
	for _, s := range r.Sort {
		if s.Direction != Asc && s.Direction != Desc {
			return fmt.Errorf("%w: %q on %q", domain.ErrInvalidSort, s.Direction, s.Field)
		}
	}
	return nil
}

// Body renders the search body.
func (r *Request) Body() map[string]any {
	body := make(map[string]any)
	switch {
	case r.RawQuery != nil:
		body["query"] = maps.Clone(r.RawQuery)
	case r.Query != nil:
		body["query"] = r.Query.Source()
	}
	if len(r.Aggregations) > 0 {
		body["aggs"] = aggregation.Sources(r.Aggregations)
	}
	if r.Paged {
		body["from"] = r.From
		body["size"] = r.Size
	}
	if len(r.Sort) > 0 {
		sort := make([]any, len(r.Sort))
		for i, s := range r.Sort {
			sort[i] = map[string]any{s.Field: map[string]any{"order": string(s.Direction)}}
		}
		body["sort"] = sort
	}
	if len(r.StoredFields) > 0 {
		body["stored_fields"] = append([]string(nil), r.StoredFields...)
	}
	return body
}

// Clone returns a copy that shares no slices with r.
// Conditions and aggregation nodes are immutable and are shared.
func (r *Request) Clone() Request {
	out := *r
	out.Indices = append([]string(nil), r.Indices...)
	out.Aggregations = append([]aggregation.Node(nil), r.Aggregations...)
	out.Sort = append([]SortField(nil), r.Sort...)
	out.StoredFields = append([]string(nil), r.StoredFields...)
	out.RawQuery = maps.Clone(r.RawQuery)
	if r.Query != nil {
		q := *r.Query
		out.Query = &q
	}
	return out
}
