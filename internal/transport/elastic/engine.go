package elastic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/olivere/elastic/v7"

	"github.com/kailas-cloud/esb/internal/domain"
	"github.com/kailas-cloud/esb/internal/domain/search/request"
	"github.com/kailas-cloud/esb/internal/domain/search/result"
)

// Config holds the cluster connection settings.
type Config struct {
	Hosts    []string
	Username string
	Password string
	Timeout  time.Duration
	// HTTPClient overrides the default client built from Timeout.
	HTTPClient *http.Client
}

// Engine runs search requests on an Elasticsearch cluster.
type Engine struct {
	client  *elastic.Client
	baseURL string
}

// BaseURL turns a host entry into the transport base URL.
// A host without scheme is reached over plain http.
func BaseURL(host string) string {
	host = strings.TrimSpace(host)
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/") + "/"
}

// New creates an engine bound to the first configured host.
// No request is sent until the first search.
func New(cfg Config) (*Engine, error) {
	if len(cfg.Hosts) == 0 || strings.TrimSpace(cfg.Hosts[0]) == "" {
		return nil, fmt.Errorf("%w: hosts are required", domain.ErrInvalidConfiguration)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	baseURL := BaseURL(cfg.Hosts[0])
	opts := []elastic.ClientOptionFunc{
		elastic.SetURL(baseURL),
		elastic.SetHttpClient(httpClient),
	}
	if cfg.Username != "" {
		opts = append(opts, elastic.SetBasicAuth(cfg.Username, cfg.Password))
	}

	client, err := elastic.NewSimpleClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: create elastic client: %w", domain.ErrInvalidConfiguration, err)
	}
	return &Engine{client: client, baseURL: baseURL}, nil
}

// BaseURL returns the URL requests are sent to.
func (e *Engine) BaseURL() string { return e.baseURL }

// Ping checks that the cluster answers on the base URL.
func (e *Engine) Ping(ctx context.Context) error {
	if _, _, err := e.client.Ping(e.baseURL).Do(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// Execute runs a single search.
func (e *Engine) Execute(ctx context.Context, req *request.Request) (result.Response, error) {
	svc := e.client.Search(req.Indices...).Source(req.Body())
	if req.Type != "" {
		svc = svc.Type(req.Type)
	}
	res, err := svc.Do(ctx)
	if err != nil {
		return result.Response{}, classify(err)
	}
	return convert(req, res)
}

// OpenScroll starts a scroll and returns its first page.
func (e *Engine) OpenScroll(ctx context.Context, req *request.Request, keepAlive string) (result.Response, error) {
	svc := e.client.Scroll(req.Indices...).Body(scrollBody(req)).KeepAlive(keepAlive)
	if req.Type != "" {
		svc = svc.Type(req.Type)
	}
	res, err := svc.Do(ctx)
	if errors.Is(err, io.EOF) {
		// An empty first page still opened a scroll that must be cleared.
		if res == nil {
			return result.Response{}, nil
		}
		return convert(req, res)
	}
	if err != nil {
		return result.Response{}, classify(err)
	}
	return convert(req, res)
}

// ContinueScroll fetches the next page of an open scroll.
func (e *Engine) ContinueScroll(
	ctx context.Context, req *request.Request, scrollID, keepAlive string,
) (result.Response, error) {
	res, err := e.client.Scroll().ScrollId(scrollID).KeepAlive(keepAlive).Do(ctx)
	if errors.Is(err, io.EOF) {
		if res == nil || res.ScrollId == "" {
			return result.Response{ScrollID: scrollID}, nil
		}
		return convert(req, res)
	}
	if err != nil {
		return result.Response{}, classify(err)
	}
	return convert(req, res)
}

// CloseScroll releases an open scroll.
func (e *Engine) CloseScroll(ctx context.Context, scrollID string) error {
	if _, err := e.client.ClearScroll(scrollID).Do(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// scrollBody drops paging keys the engine rejects in a scroll context.
// The page size stays when positive.
func scrollBody(req *request.Request) map[string]any {
	body := req.Body()
	delete(body, "from")
	if req.Paged && req.Size == 0 {
		delete(body, "size")
	}
	return body
}

// classify maps client errors onto ErrEngine (engine answered with an error)
// and ErrTransport (everything else).
func classify(err error) error {
	var ee *elastic.Error
	if errors.As(err, &ee) {
		typ, reason := "", ""
		if ee.Details != nil {
			typ, reason = ee.Details.Type, ee.Details.Reason
		}
		return domain.NewEngineError(ee.Status, typ, reason)
	}
	return fmt.Errorf("%w: %w", domain.ErrTransport, err)
}

func convert(req *request.Request, res *elastic.SearchResult) (result.Response, error) {
	out := result.Response{
		ScrollID:   res.ScrollId,
		TookMillis: res.TookInMillis,
	}
	if res.Hits != nil {
		if res.Hits.TotalHits != nil {
			out.Total = res.Hits.TotalHits.Value
		}
		out.Hits = make([]result.Hit, 0, len(res.Hits.Hits))
		for _, h := range res.Hits.Hits {
			out.Hits = append(out.Hits, result.Hit{
				Index:  h.Index,
				Type:   h.Type,
				ID:     h.Id,
				Score:  h.Score,
				Source: h.Source,
				Fields: h.Fields,
			})
		}
	}
	aggs, err := result.ParseAggregations(req.Aggregations, res.Aggregations)
	if err != nil {
		return result.Response{}, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	out.Aggregations = aggs
	return out, nil
}
