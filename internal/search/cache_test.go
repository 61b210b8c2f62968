package search

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	entries map[string]string
	ttls    map[string]time.Duration
	getErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Get(ctx context.Context, key string) *redis.StringCmd {
	if m.getErr != nil {
		return redis.NewStringResult("", m.getErr)
	}
	v, ok := m.entries[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.entries[key] = string(value.([]byte))
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

type scriptedSearcher struct {
	result *Result
	err    error
	calls  int
}

func (s *scriptedSearcher) Search(ctx context.Context, q Query) (*Result, error) {
	s.calls++
	return s.result, s.err
}

func TestCachedSearcherStoresFoundResults(t *testing.T) {
	next := &scriptedSearcher{result: &Result{
		Meta: Meta{Name: "Sol", Type: TypeExact},
		Data: []Candidate{{Name: "Sol", ID64: 10477373803, Similarity: floatPtr(1)}},
	}}
	cache := newMemoryCache()
	cs := newCachedSearcher(next, cache, time.Minute, slog.Default())
	q := Query{Name: "Sol", Present: true}

	first, err := cs.Search(context.Background(), q)
	require.NoError(t, err)
	second, err := cs.Search(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, time.Minute, cache.ttls[cacheKey(q)])
}

func TestCachedSearcherSkipsNotFound(t *testing.T) {
	next := &scriptedSearcher{result: notFound("System not found.")}
	cache := newMemoryCache()
	cs := newCachedSearcher(next, cache, time.Minute, slog.Default())
	q := Query{Name: "Nowhere", Present: true}

	_, err := cs.Search(context.Background(), q)
	require.NoError(t, err)
	_, err = cs.Search(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 2, next.calls)
	assert.Empty(t, cache.entries)
}

func TestCachedSearcherKeysByFastFlag(t *testing.T) {
	assert.NotEqual(t,
		cacheKey(Query{Name: "Sol", Present: true}),
		cacheKey(Query{Name: "Sol", Present: true, Fast: true}))
}

func TestCachedSearcherFallsBackOnCacheErrors(t *testing.T) {
	next := &scriptedSearcher{result: &Result{Meta: Meta{Name: "Sol", Type: TypeExact}, Data: []Candidate{{Name: "Sol"}}}}
	cache := newMemoryCache()
	cache.getErr = stderrors.New("connection refused")
	cs := newCachedSearcher(next, cache, time.Minute, slog.Default())

	res, err := cs.Search(context.Background(), Query{Name: "Sol", Present: true})
	require.NoError(t, err)
	assert.Equal(t, TypeExact, res.Meta.Type)
	assert.Equal(t, 1, next.calls)
}

func TestCachedSearcherIgnoresCorruptEntries(t *testing.T) {
	want := &Result{Meta: Meta{Name: "Sol", Type: TypeExact}, Data: []Candidate{{Name: "Sol"}}}
	next := &scriptedSearcher{result: want}
	cache := newMemoryCache()
	q := Query{Name: "Sol", Present: true}
	cache.entries[cacheKey(q)] = "{not json"
	cs := newCachedSearcher(next, cache, time.Minute, slog.Default())

	res, err := cs.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, want, res)

	var stored Result
	require.NoError(t, json.Unmarshal([]byte(cache.entries[cacheKey(q)]), &stored))
	assert.Equal(t, "Sol", stored.Meta.Name)
}

func TestNewCachedSearcherWithoutRedis(t *testing.T) {
	next := &scriptedSearcher{}
	assert.Same(t, next, NewCachedSearcher(next, nil, time.Minute, slog.Default()))
}
