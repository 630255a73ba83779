package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/esb/internal/domain/search/request"
	"github.com/kailas-cloud/esb/internal/domain/search/result"
	"github.com/kailas-cloud/esb/internal/metrics"
)

// DefaultKeepAlive is the scroll keep-alive used when none is given.
const DefaultKeepAlive = "1m"

// Operation names used in logs and metrics.
const (
	OpSearch      = "search"
	OpScrollOpen  = "scroll_open"
	OpScrollNext  = "scroll_next"
	OpScrollClose = "scroll_close"
)

// Service dispatches search requests to the engine and observes each call.
type Service struct {
	engine  Engine
	logger  *zap.Logger
	metrics *metrics.Engine
}

// New creates a search service. A nil logger disables logging, nil metrics disable metrics.
func New(engine Engine, logger *zap.Logger, m *metrics.Engine) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{engine: engine, logger: logger, metrics: m}
}

// Search validates and executes req.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Response, error) {
	if err := req.Validate(); err != nil {
		return result.Response{}, err
	}

	start := time.Now()
	resp, err := s.engine.Execute(ctx, req)
	s.observe(OpSearch, req, start, err, zap.Int64("total", resp.Total), zap.Int("hits", len(resp.Hits)))
	if err != nil {
		return result.Response{}, fmt.Errorf("search %s: %w", strings.Join(req.Indices, ","), err)
	}
	return resp, nil
}

// Scroll returns a lazy cursor over all hits of req. Nothing is sent until the first Next.
func (s *Service) Scroll(req *request.Request, keepAlive string) *Cursor {
	if keepAlive == "" {
		keepAlive = DefaultKeepAlive
	}
	return &Cursor{svc: s, req: req.Clone(), keepAlive: keepAlive}
}

func (s *Service) observe(op string, req *request.Request, start time.Time, err error, fields ...zap.Field) {
	s.metrics.Observe(op, start, err)

	dur := time.Since(start)
	base := []zap.Field{
		zap.String("op", op),
		zap.Strings("indices", req.Indices),
		zap.String("type", req.Type),
		zap.Duration("duration", dur),
	}
	if err != nil {
		s.logger.Warn("Engine operation failed", append(base, zap.Error(err))...)
		return
	}
	s.logger.Debug("Engine operation completed", append(base, fields...)...)
}
