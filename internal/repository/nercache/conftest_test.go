package nercache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qou/internal/db"
	"github.com/kailas-cloud/qou/internal/domain"
)

type mockExtractor struct {
	result    domain.ExtractionResult
	err       error
	calls     int
	healthErr error
}

func (m *mockExtractor) Extract(_ context.Context, _ string) (domain.ExtractionResult, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockExtractor) HealthCheck(_ context.Context) error {
	return m.healthErr
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

func newTestCachedExtractor(t *testing.T, inner *mockExtractor) (*CachedExtractor, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	ce := New(inner, ms, "qou:", time.Hour, nil, zap.NewNop())
	return ce, ms
}
