package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esb"
	"github.com/kailas-cloud/esb/internal/domain/search/request"
	"github.com/kailas-cloud/esb/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/esb/internal/usecase/health"
)

// mockEngine records requests and replays canned responses.
type mockEngine struct {
	resp    result.Response
	err     error
	pages   []result.Response
	reqs    []request.Request
	closed  int
	pingErr error
}

func (m *mockEngine) Execute(_ context.Context, req *request.Request) (result.Response, error) {
	m.reqs = append(m.reqs, req.Clone())
	return m.resp, m.err
}

func (m *mockEngine) OpenScroll(_ context.Context, req *request.Request, _ string) (result.Response, error) {
	m.reqs = append(m.reqs, req.Clone())
	if m.err != nil {
		return result.Response{}, m.err
	}
	return m.next(), nil
}

func (m *mockEngine) ContinueScroll(_ context.Context, _ *request.Request, _, _ string) (result.Response, error) {
	return m.next(), nil
}

func (m *mockEngine) CloseScroll(_ context.Context, _ string) error {
	m.closed++
	return nil
}

func (m *mockEngine) Ping(_ context.Context) error { return m.pingErr }

func (m *mockEngine) next() result.Response {
	if len(m.pages) == 0 {
		return result.Response{ScrollID: "s1"}
	}
	p := m.pages[0]
	m.pages = m.pages[1:]
	return p
}

func newTestRouter(t *testing.T, me *mockEngine) http.Handler {
	t.Helper()
	client, err := esb.New(context.Background(), esb.Config{
		Hosts:   []string{"localhost:9200"},
		Types:   map[string]string{"advert": "advert", "region": "region"},
		Indexes: map[string]string{"advert": "adverts", "region": "regions"},
	}, esb.WithEngine(me))
	if err != nil {
		t.Fatalf("esb.New: %v", err)
	}
	t.Cleanup(client.Close)

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "esb_test_total", Help: "test"}))

	srv := NewServer(client, healthuc.New(healthuc.PingFunc(client.Ping), nil), reg, "1m", zap.NewNop())
	r := gochi.NewRouter()
	srv.Mount(r)
	return r
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
