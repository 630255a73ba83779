package esb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/esb/internal/db"
	"github.com/kailas-cloud/esb/internal/db/goredis"
	dbRedis "github.com/kailas-cloud/esb/internal/db/redis"
	"github.com/kailas-cloud/esb/internal/domain"
	"github.com/kailas-cloud/esb/internal/domain/registry"
	"github.com/kailas-cloud/esb/internal/metrics"
	"github.com/kailas-cloud/esb/internal/repository/respcache"
	"github.com/kailas-cloud/esb/internal/transport/elastic"
	searchuc "github.com/kailas-cloud/esb/internal/usecase/search"
)

const (
	defaultTimeout          = 30 * time.Second
	defaultCacheTTL         = time.Minute
	defaultReadinessTimeout = 10 * time.Second
)

// Config binds record kinds to the cluster.
type Config struct {
	// Hosts lists cluster addresses. The first one is used.
	Hosts []string
	// Types maps a record kind to its engine type name.
	Types map[string]string
	// Indexes maps a record kind to its index name.
	Indexes map[string]string
}

// Engine executes requests against a search cluster.
type Engine = searchuc.Engine

// Client opens searches by record kind. Safe for concurrent use.
type Client struct {
	registry  *registry.Registry
	searchSvc *searchuc.Service
	store     db.Store
	pinger    pinger
	baseURL   string
}

type pinger interface {
	Ping(ctx context.Context) error
}

// New validates cfg and creates a Client.
// With WithRedisCache the context bounds the initial Redis readiness check.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	cc := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o(cc)
	}

	if len(cfg.Hosts) == 0 || strings.TrimSpace(cfg.Hosts[0]) == "" {
		return nil, fmt.Errorf("esb: %w: hosts are required", domain.ErrInvalidConfiguration)
	}
	reg, err := registry.New(cfg.Types, cfg.Indexes)
	if err != nil {
		return nil, fmt.Errorf("esb: %w", err)
	}

	logger := cc.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var m *metrics.Engine
	if cc.metricsReg != nil {
		m, err = metrics.NewEngine(cc.metricsReg)
		if err != nil {
			return nil, err
		}
	}

	baseURL := elastic.BaseURL(cfg.Hosts[0])
	engine := cc.engine
	if engine == nil {
		ee, err := elastic.New(elastic.Config{
			Hosts:      cfg.Hosts,
			Username:   cc.username,
			Password:   cc.password,
			Timeout:    cc.timeout,
			HTTPClient: cc.httpClient,
		})
		if err != nil {
			return nil, fmt.Errorf("esb: %w", err)
		}
		engine = ee
	}

	p, _ := engine.(pinger)

	store, err := createCacheStore(ctx, cc)
	if err != nil {
		return nil, err
	}
	if store != nil {
		ttl := cc.cacheTTL
		if ttl <= 0 {
			ttl = defaultCacheTTL
		}
		engine = respcache.New(engine, store, ttl, cc.cachePrefix, m, logger)
	}

	return &Client{
		registry:  reg,
		searchSvc: searchuc.New(engine, logger, m),
		store:     store,
		pinger:    p,
		baseURL:   baseURL,
	}, nil
}

func createCacheStore(ctx context.Context, cc *clientConfig) (db.Store, error) {
	if cc.cacheStore != nil {
		return cc.cacheStore, nil
	}
	if len(cc.cacheAddrs) == 0 {
		return nil, nil
	}
	var (
		s   db.Store
		err error
	)
	switch cc.cacheDriver {
	case "", CacheDriverRueidis:
		s, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cc.cacheAddrs,
			Password: cc.cachePassword,
		})
	case CacheDriverGoRedis:
		s, err = goredis.NewStore(goredis.Config{
			Addrs:    cc.cacheAddrs,
			Password: cc.cachePassword,
		})
	default:
		return nil, fmt.Errorf("esb: %w: unknown cache driver %q", domain.ErrInvalidConfiguration, cc.cacheDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("esb: create redis store: %w", err)
	}
	if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		s.Close()
		return nil, fmt.Errorf("esb: redis not ready: %w", err)
	}
	return s, nil
}

// Close releases the cache connection, if any.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks the cluster. Engines set with WithEngine that cannot ping report nil.
func (c *Client) Ping(ctx context.Context) error {
	if c.pinger == nil {
		return nil
	}
	if err := c.pinger.Ping(ctx); err != nil {
		return fmt.Errorf("esb: ping: %w", err)
	}
	return nil
}

// PingCache checks the response cache. Reports nil without a cache.
func (c *Client) PingCache(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("esb: ping cache: %w", err)
	}
	return nil
}

// HasCache reports whether responses are cached.
func (c *Client) HasCache() bool { return c.store != nil }

// BaseURL returns the cluster URL derived from the first host.
func (c *Client) BaseURL() string { return c.baseURL }

// Kinds returns the configured record kinds, sorted.
func (c *Client) Kinds() []string { return c.registry.Kinds() }

// Search opens a new search on the index bound to kind.
func (c *Client) Search(kind string) (*SearchBuilder, error) {
	b, err := c.registry.Resolve(kind)
	if err != nil {
		return nil, fmt.Errorf("esb: %w", err)
	}
	return newSearchBuilder(c.searchSvc, kind, b), nil
}
