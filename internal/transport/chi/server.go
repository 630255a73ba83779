package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esb"
	logpkg "github.com/kailas-cloud/esb/internal/logger"
	healthuc "github.com/kailas-cloud/esb/internal/usecase/health"
)

const (
	defaultExportPageSize = 500
	maxExportPageSize     = 10000
)

// Error codes of the JSON error body.
const (
	codeBadRequest        = "bad_request"
	codeUnauthorized      = "unauthorized"
	codeUnknownKind       = "unknown_kind"
	codeValidationFailed  = "validation_failed"
	codeEngineError       = "engine_error"
	codeEngineUnavailable = "engine_unavailable"
	codeInternalError     = "internal_error"
)

var errInvalidParam = errors.New("invalid parameter")

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Searcher opens searches by record kind.
type Searcher interface {
	Search(kind string) (*esb.SearchBuilder, error)
}

// Server serves the search API over chi.
type Server struct {
	search        Searcher
	health        *healthuc.Service
	gatherer      prometheus.Gatherer
	keepAlive     string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. keepAlive is the scroll keep-alive of exports.
func NewServer(
	search Searcher,
	health *healthuc.Service,
	gatherer prometheus.Gatherer,
	keepAlive string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:    search,
		health:    health,
		gatherer:  gatherer,
		keepAlive: keepAlive,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(errInvalidParam, http.StatusBadRequest, codeBadRequest),
		sentinelHandler(esb.ErrUnknownRecordKind, http.StatusNotFound, codeUnknownKind),
		sentinelHandler(esb.ErrUnsupportedOperator, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(esb.ErrInvalidPagination, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(esb.ErrInvalidSort, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(esb.ErrEngine, http.StatusBadGateway, codeEngineError),
		sentinelHandler(esb.ErrTransport, http.StatusServiceUnavailable, codeEngineUnavailable),
	}
	return s
}

// Mount registers the API routes on r.
func (s *Server) Mount(r gochi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/adverts/archived/emails", s.ArchivedEmails)
	r.Get("/search/{kind}", s.Search)
	r.Get("/search/{kind}/export", s.Export)
}

type emailItem struct {
	Email   string `json:"email"`
	Adverts int64  `json:"adverts"`
	MaxID   *int64 `json:"max_id,omitempty"`
}

type archivedEmailsResponse struct {
	Total  int64       `json:"total"`
	Emails []emailItem `json:"emails"`
}

// ArchivedEmails handles GET /adverts/archived/emails.
// Groups archived adverts by contact email with the newest advert id per email.
func (s *Server) ArchivedEmails(w http.ResponseWriter, r *http.Request) {
	weeks, err := parseInts(r.URL.Query().Get("weeks"), []int{2, 3})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	sb, err := s.search.Search("advert")
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	resp, err := sb.
		Query(esb.All(
			esb.Eq("system_data.storage_id", "archive"),
			esb.In("system_data.free_weeks", weeks),
		)).
		Limit(0, 0).
		Aggs(esb.Nest(esb.BucketByTerm("emails", "email", 20000), esb.MetricMax("ids", "id"))).
		Sort(esb.Desc("id")).
		Fields("id", "email").
		Do(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out := archivedEmailsResponse{Total: resp.Total, Emails: []emailItem{}}
	if agg, ok := resp.Aggregation("emails"); ok {
		for _, b := range agg.Buckets {
			item := emailItem{Email: bucketKey(b), Adverts: b.DocCount}
			if ids, ok := b.Aggregations["ids"]; ok && ids.Value != nil {
				id := int64(*ids.Value)
				item.MaxID = &id
			}
			out.Emails = append(out.Emails, item)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// Search handles GET /search/{kind}.
//
// Query parameters: q, any, not (repeated "field:op[:value]"; "in" takes a
// comma separated list), size, from, sort (repeated "field:dir"), fields.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	sb, err := s.builderFromRequest(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	resp, err := sb.Do(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Export handles GET /search/{kind}/export: every matching hit as NDJSON, read by scroll.
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	sb, err := s.builderFromRequest(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if !sb.Request().Paged {
		sb.Limit(defaultExportPageSize, 0)
	}
	if size := sb.Request().Size; size > maxExportPageSize {
		s.handleDomainError(w, fmt.Errorf("%w: size exceeds %d", errInvalidParam, maxExportPageSize))
		return
	}

	keepAlive := r.URL.Query().Get("keep_alive")
	if keepAlive == "" {
		keepAlive = s.keepAlive
	}
	cur, err := sb.Scroll(keepAlive)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ctx := r.Context()
	// The first page decides the status code.
	first, err := cur.Next(ctx)
	if errors.Is(err, io.EOF) {
		err = nil
	}
	if err != nil {
		_ = cur.Close(context.WithoutCancel(ctx))
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	written := 0
	write := func(page esb.Response) error {
		for i := range page.Hits {
			if err := enc.Encode(page.Hits[i]); err != nil {
				return fmt.Errorf("write hit: %w", err)
			}
			written++
		}
		return nil
	}

	err = write(first)
	if err == nil {
		err = cur.Each(ctx, write)
	}
	if cerr := cur.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		logpkg.FromContext(ctx).Warn("export interrupted", zap.Int("hits", written), zap.Error(err))
		return
	}
	logpkg.FromContext(ctx).Debug("export completed", zap.Int("hits", written))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: report.Checks,
	})
}

type healthResponse struct {
	Status string                          `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

func (s *Server) builderFromRequest(r *http.Request) (*esb.SearchBuilder, error) {
	sb, err := s.search.Search(gochi.URLParam(r, "kind"))
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()

	for param, clause := range map[string]func(...esb.Query) esb.Clause{
		"q":   esb.All,
		"any": esb.Any,
		"not": esb.None,
	} {
		exprs := q[param]
		if len(exprs) == 0 {
			continue
		}
		items := make([]esb.Query, 0, len(exprs))
		for _, expr := range exprs {
			c, err := parseCondition(expr)
			if err != nil {
				return nil, err
			}
			items = append(items, c)
		}
		sb.Query(clause(items...))
	}

	if q.Has("size") || q.Has("from") {
		size, err := intParam(q.Get("size"), 10)
		if err != nil {
			return nil, err
		}
		from, err := intParam(q.Get("from"), 0)
		if err != nil {
			return nil, err
		}
		sb.Limit(size, from)
	}

	if sorts := q["sort"]; len(sorts) > 0 {
		fields := make([]esb.SortField, 0, len(sorts))
		for _, expr := range sorts {
			field, dir, _ := strings.Cut(expr, ":")
			if dir == "" {
				dir = string(esb.DirAsc)
			}
			fields = append(fields, esb.SortBy(field, dir))
		}
		sb.Sort(fields...)
	}

	if f := q.Get("fields"); f != "" {
		sb.Fields(strings.Split(f, ",")...)
	}
	return sb, sb.Err()
}

// parseCondition parses "field:op[:value]".
func parseCondition(expr string) (esb.Condition, error) {
	parts := strings.SplitN(expr, ":", 3)
	if len(parts) < 2 || parts[0] == "" {
		return esb.Condition{}, fmt.Errorf("%w: condition %q", errInvalidParam, expr)
	}
	op, err := esb.ParseOperator(parts[1])
	if err != nil {
		return esb.Condition{}, err
	}
	var value any
	if len(parts) == 3 {
		value = parts[2]
		if op == esb.OpIn {
			value = strings.Split(parts[2], ",")
		}
	}
	return esb.NewCondition(parts[0], value, op)
}

func parseInts(s string, def []int) ([]int, error) {
	if s == "" {
		return def, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", errInvalidParam, p)
		}
		out = append(out, n)
	}
	return out, nil
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", errInvalidParam, s)
	}
	return n, nil
}

func bucketKey(b esb.Bucket) string {
	if b.KeyAsString != "" {
		return b.KeyAsString
	}
	return fmt.Sprint(b.Key)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client message without exposing engine internals.
func safeDomainMessage(err error) string {
	var ee *esb.EngineError
	if errors.As(err, &ee) {
		return fmt.Sprintf("engine rejected the request: %s", ee.Type)
	}
	if errors.Is(err, esb.ErrTransport) {
		return esb.ErrTransport.Error()
	}
	return err.Error()
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
