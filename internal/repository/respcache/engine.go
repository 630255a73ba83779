package respcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/esb/internal/db"
	"github.com/kailas-cloud/esb/internal/domain/search/request"
	"github.com/kailas-cloud/esb/internal/domain/search/result"
	"github.com/kailas-cloud/esb/internal/metrics"
)

// DefaultKeyPrefix namespaces cached responses.
const DefaultKeyPrefix = "esb:resp:"

// store is the consumer interface for the response cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// engine is the decorated search engine.
type engine interface {
	Execute(ctx context.Context, req *request.Request) (result.Response, error)
	OpenScroll(ctx context.Context, req *request.Request, keepAlive string) (result.Response, error)
	ContinueScroll(ctx context.Context, req *request.Request, scrollID, keepAlive string) (result.Response, error)
	CloseScroll(ctx context.Context, scrollID string) error
}

// Engine caches Execute responses in a key-value store.
// Scroll calls are stateful on the engine side and pass through.
type Engine struct {
	inner   engine
	store   store
	ttl     time.Duration
	prefix  string
	metrics *metrics.Engine
	logger  *zap.Logger
}

// New creates a caching decorator. Cache failures are logged and bypassed.
func New(inner engine, s store, ttl time.Duration, prefix string, m *metrics.Engine, logger *zap.Logger) *Engine {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{inner: inner, store: s, ttl: ttl, prefix: prefix, metrics: m, logger: logger}
}

// Execute returns a cached response or calls the inner engine.
func (e *Engine) Execute(ctx context.Context, req *request.Request) (result.Response, error) {
	key, err := e.cacheKey(req)
	if err != nil {
		e.logger.Warn("Failed to build response cache key", zap.Error(err))
		return e.inner.Execute(ctx, req) //nolint:wrapcheck // decorator is transparent
	}

	if resp, ok := e.getFromCache(ctx, key); ok {
		e.metrics.CacheResult(true)
		return resp, nil
	}
	e.metrics.CacheResult(false)

	resp, err := e.inner.Execute(ctx, req)
	if err != nil {
		return result.Response{}, err //nolint:wrapcheck // decorator is transparent
	}

	e.putToCache(ctx, key, resp)
	return resp, nil
}

// OpenScroll delegates to the inner engine.
func (e *Engine) OpenScroll(ctx context.Context, req *request.Request, keepAlive string) (result.Response, error) {
	return e.inner.OpenScroll(ctx, req, keepAlive) //nolint:wrapcheck // decorator is transparent
}

// ContinueScroll delegates to the inner engine.
func (e *Engine) ContinueScroll(
	ctx context.Context, req *request.Request, scrollID, keepAlive string,
) (result.Response, error) {
	return e.inner.ContinueScroll(ctx, req, scrollID, keepAlive) //nolint:wrapcheck // decorator is transparent
}

// CloseScroll delegates to the inner engine.
func (e *Engine) CloseScroll(ctx context.Context, scrollID string) error {
	return e.inner.CloseScroll(ctx, scrollID) //nolint:wrapcheck // decorator is transparent
}

type keyMaterial struct {
	Indices []string       `json:"indices"`
	Type    string         `json:"type"`
	Body    map[string]any `json:"body"`
}

// cacheKey hashes the rendered request. encoding/json sorts map keys, so equal requests hash equally.
func (e *Engine) cacheKey(req *request.Request) (string, error) {
	data, err := json.Marshal(keyMaterial{Indices: req.Indices, Type: req.Type, Body: req.Body()})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	h := sha256.Sum256(data)
	return e.prefix + hex.EncodeToString(h[:]), nil
}

func (e *Engine) getFromCache(ctx context.Context, key string) (result.Response, bool) {
	data, err := e.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			e.logger.Warn("Failed to get cached response", zap.String("key", key), zap.Error(err))
		}
		return result.Response{}, false
	}
	if len(data) == 0 {
		return result.Response{}, false
	}

	var resp result.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		e.logger.Warn("Failed to parse cached response", zap.String("key", key), zap.Error(err))
		return result.Response{}, false
	}
	return resp, true
}

func (e *Engine) putToCache(ctx context.Context, key string, resp result.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		e.logger.Warn("Failed to encode response for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := e.store.SetWithTTL(ctx, key, data, e.ttl); err != nil {
		e.logger.Warn("Failed to cache response", zap.String("key", key), zap.Error(err))
	}
}
