package esb

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/esb/internal/db"
	"github.com/kailas-cloud/esb/internal/domain/search/request"
	"github.com/kailas-cloud/esb/internal/domain/search/result"
)

// fakeEngine records requests and replays canned responses.
type fakeEngine struct {
	resp  Response
	err   error
	reqs  []request.Request
	pages []Response

	closed []string
}

func (f *fakeEngine) Execute(_ context.Context, req *request.Request) (result.Response, error) {
	f.reqs = append(f.reqs, req.Clone())
	return f.resp, f.err
}

func (f *fakeEngine) OpenScroll(_ context.Context, req *request.Request, _ string) (result.Response, error) {
	f.reqs = append(f.reqs, req.Clone())
	return f.next(), f.err
}

func (f *fakeEngine) ContinueScroll(_ context.Context, _ *request.Request, _, _ string) (result.Response, error) {
	return f.next(), f.err
}

func (f *fakeEngine) CloseScroll(_ context.Context, scrollID string) error {
	f.closed = append(f.closed, scrollID)
	return nil
}

func (f *fakeEngine) next() Response {
	if len(f.pages) == 0 {
		return Response{ScrollID: "done"}
	}
	p := f.pages[0]
	f.pages = f.pages[1:]
	return p
}

// memStore is an in-memory db.Store.
type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	closed bool
}

func newMemStore() *memStore { return &memStore{data: make(map[string][]byte)} }

func (m *memStore) Ping(context.Context) error { return nil }

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) SetWithTTL(ctx context.Context, key string, value []byte, _ time.Duration) error {
	return m.Set(ctx, key, value)
}

func (m *memStore) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memStore) Close() { m.closed = true }

func (m *memStore) WaitForReady(context.Context, time.Duration) error { return nil }

func testConfig() Config {
	return Config{
		Hosts: []string{"localhost:9200"},
		Types: map[string]string{
			"advert":  "advert",
			"comment": "comment",
		},
		Indexes: map[string]string{
			"advert":  "adverts",
			"comment": "comments",
		},
	}
}

func newTestClient(t *testing.T, fe *fakeEngine, opts ...Option) *Client {
	t.Helper()
	c, err := New(context.Background(), testConfig(), append([]Option{WithEngine(fe)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func openSearch(t *testing.T, c *Client, kind string) *SearchBuilder {
	t.Helper()
	s, err := c.Search(kind)
	if err != nil {
		t.Fatalf("Search(%q): %v", kind, err)
	}
	return s
}
