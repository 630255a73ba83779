package esb

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esb/internal/db"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	engine Engine

	username   string
	password   string
	timeout    time.Duration
	httpClient *http.Client

	cacheDriver   CacheDriver
	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration
	cacheStore    db.Store
	cachePrefix   string

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithEngine replaces the Elasticsearch transport. Hosts are still validated.
func WithEngine(e Engine) Option {
	return func(c *clientConfig) {
		c.engine = e
	}
}

// WithBasicAuth sets cluster credentials.
func WithBasicAuth(username, password string) Option {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
	}
}

// WithTimeout bounds every engine HTTP call. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithHTTPClient sets the HTTP client used to reach the cluster.
// Overrides WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = hc
	}
}

// WithRedisCache caches search responses in Redis for ttl.
// Scrolls are never cached. Cache failures are logged and bypassed.
func WithRedisCache(addrs []string, password string, ttl time.Duration) Option {
	return func(c *clientConfig) {
		c.cacheAddrs = addrs
		c.cachePassword = password
		c.cacheTTL = ttl
	}
}

// CacheDriver selects the Redis client library backing the response cache.
type CacheDriver string

// Cache drivers.
const (
	CacheDriverRueidis CacheDriver = "rueidis"
	CacheDriverGoRedis CacheDriver = "go-redis"
)

// WithCacheDriver picks the Redis client of WithRedisCache. Default: rueidis.
func WithCacheDriver(d CacheDriver) Option {
	return func(c *clientConfig) {
		c.cacheDriver = d
	}
}

// WithCacheKeyPrefix sets the key namespace of cached responses. Default: "esb:resp:".
func WithCacheKeyPrefix(prefix string) Option {
	return func(c *clientConfig) {
		c.cachePrefix = prefix
	}
}

// withCacheStore injects a ready cache store (tests).
func withCacheStore(s db.Store, ttl time.Duration) Option {
	return func(c *clientConfig) {
		c.cacheStore = s
		c.cacheTTL = ttl
	}
}

// WithLogger enables structured logging of engine calls.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithPrometheus registers engine metrics (operation counts, durations,
// cache hits) on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return func(c *clientConfig) {
		c.metricsReg = reg
	}
}
