package respcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/esb/internal/db"
	"github.com/kailas-cloud/esb/internal/domain/search/request"
	"github.com/kailas-cloud/esb/internal/domain/search/result"
)

type mockEngine struct {
	resp       result.Response
	err        error
	execCalls  int
	openCalls  int
	nextCalls  int
	closeCalls int
}

func (m *mockEngine) Execute(_ context.Context, _ *request.Request) (result.Response, error) {
	m.execCalls++
	return m.resp, m.err
}

func (m *mockEngine) OpenScroll(_ context.Context, _ *request.Request, _ string) (result.Response, error) {
	m.openCalls++
	return m.resp, m.err
}

func (m *mockEngine) ContinueScroll(_ context.Context, _ *request.Request, _, _ string) (result.Response, error) {
	m.nextCalls++
	return m.resp, m.err
}

func (m *mockEngine) CloseScroll(_ context.Context, _ string) error {
	m.closeCalls++
	return m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestEngine(t *testing.T, inner *mockEngine) (*Engine, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	return New(inner, ms, time.Minute, "", nil, zap.NewNop()), ms
}
