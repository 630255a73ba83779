package esb

import (
	"context"
	"fmt"
	"maps"

	"github.com/kailas-cloud/esb/internal/domain"
	"github.com/kailas-cloud/esb/internal/domain/registry"
	"github.com/kailas-cloud/esb/internal/domain/search/boolean"
	"github.com/kailas-cloud/esb/internal/domain/search/request"
	searchuc "github.com/kailas-cloud/esb/internal/usecase/search"
)

// SearchBuilder assembles one search against a record kind.
// Methods chain; the first invalid input is kept and returned by Do or Scroll.
// Not safe for concurrent use.
type SearchBuilder struct {
	svc     *searchuc.Service
	kind    string
	binding registry.Binding

	req        request.Request
	err        error
	dispatched bool
}

func newSearchBuilder(svc *searchuc.Service, kind string, b registry.Binding) *SearchBuilder {
	sb := &SearchBuilder{svc: svc, kind: kind, binding: b}
	sb.Reset()
	return sb
}

// Kind returns the record kind the builder was opened for.
func (b *SearchBuilder) Kind() string { return b.kind }

// Query merges clauses into the boolean query by kind. Repeated calls add up.
// A raw query set earlier is dropped.
func (b *SearchBuilder) Query(clauses ...Clause) *SearchBuilder {
	var valid []boolean.Clause
	for _, c := range clauses {
		if err := c.Err(); err != nil {
			b.fail(err)
			continue
		}
		valid = append(valid, c)
	}
	if len(valid) == 0 {
		return b
	}
	b.req.RawQuery = nil
	var q boolean.Compound
	if b.req.Query != nil {
		q = b.req.Query.Merge(valid...)
	} else {
		q = boolean.Compose(valid...)
	}
	b.req.Query = &q
	return b
}

// RawQuery sets an engine-native query clause, sent unchanged as the
// "query" section of the body. It replaces anything built with Query.
func (b *SearchBuilder) RawQuery(q map[string]any) *SearchBuilder {
	b.req.Query = nil
	b.req.RawQuery = maps.Clone(q)
	return b
}

// Aggs appends top-level aggregations.
func (b *SearchBuilder) Aggs(nodes ...Aggregation) *SearchBuilder {
	b.req.Aggregations = append(b.req.Aggregations, nodes...)
	return b
}

// Limit sets the page size and offset. Size 0 returns no hits, only totals
// and aggregations.
func (b *SearchBuilder) Limit(size, from int) *SearchBuilder {
	if size < 0 || from < 0 {
		b.fail(fmt.Errorf("%w: size=%d from=%d", domain.ErrInvalidPagination, size, from))
		return b
	}
	b.req.Size = size
	b.req.From = from
	b.req.Paged = true
	return b
}

// Sort replaces the sort order.
func (b *SearchBuilder) Sort(fields ...SortField) *SearchBuilder {
	out := make([]request.SortField, 0, len(fields))
	for _, f := range fields {
		dir, err := request.ParseDirection(string(f.Direction))
		if err != nil {
			b.fail(fmt.Errorf("sort %q: %w", f.Field, err))
			return b
		}
		out = append(out, request.SortField{Field: f.Field, Direction: dir})
	}
	b.req.Sort = out
	return b
}

// Fields replaces the stored fields returned with each hit.
func (b *SearchBuilder) Fields(names ...string) *SearchBuilder {
	b.req.StoredFields = append([]string(nil), names...)
	return b
}

// Err returns the first recorded error.
func (b *SearchBuilder) Err() error { return b.err }

// Request returns a copy of the assembled request.
func (b *SearchBuilder) Request() Request { return b.req.Clone() }

// Body returns the search body as sent to the engine.
func (b *SearchBuilder) Body() map[string]any { return b.req.Body() }

// Do dispatches the search. A builder dispatches once; call Reset to reuse it.
func (b *SearchBuilder) Do(ctx context.Context) (Response, error) {
	if err := b.dispatch(); err != nil {
		return Response{}, err
	}
	req := b.req.Clone()
	return b.svc.Search(ctx, &req)
}

// Scroll returns a cursor over every hit of the query, fetched page by page.
// Limit's size sets the page size. keepAlive defaults to "1m".
// Nothing is sent before the first Next. The caller must Close the cursor.
func (b *SearchBuilder) Scroll(keepAlive string) (*Cursor, error) {
	if err := b.dispatch(); err != nil {
		return nil, err
	}
	return b.svc.Scroll(&b.req, keepAlive), nil
}

// ScrollEach calls fn for every page and closes the scroll when done.
func (b *SearchBuilder) ScrollEach(ctx context.Context, keepAlive string, fn func(Response) error) error {
	cur, err := b.Scroll(keepAlive)
	if err != nil {
		return err
	}
	return cur.Each(ctx, fn)
}

// Reset clears everything but the index binding, allowing another dispatch.
func (b *SearchBuilder) Reset() *SearchBuilder {
	b.req = request.Request{
		Indices: []string{b.binding.Index},
		Type:    b.binding.Type,
	}
	b.err = nil
	b.dispatched = false
	return b
}

func (b *SearchBuilder) dispatch() error {
	if b.err != nil {
		return b.err
	}
	if b.dispatched {
		return domain.ErrAlreadyDispatched
	}
	b.dispatched = true
	return nil
}

func (b *SearchBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}
