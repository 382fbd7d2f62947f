package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache stores JSON like redis does so decoding paths are exercised.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	failGet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = payload
	return nil
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return errors.New("connection refused")
	}
	payload, ok := m.entries[key]
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func TestExamCache(t *testing.T) {
	ctx := context.Background()
	store := newMemoryCache()
	c := NewExamCache(store, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	exam := &models.Exam{
		ID:     4,
		Title:  "History",
		Status: models.ExamStatusScheduled,
		Questions: []models.Question{
			{ID: "q1", Text: "When?", MaxScore: 3, Body: models.MultipleChoice{Options: []string{"1066", "1215"}, CorrectAnswer: "1066"}},
		},
	}

	assert.Nil(t, c.Get(ctx, 4))

	c.Put(ctx, exam)
	cached := c.Get(ctx, 4)
	require.NotNil(t, cached)
	assert.Equal(t, "History", cached.Title)
	require.Len(t, cached.Questions, 1)
	assert.Equal(t, models.QuestionKindMCQ, cached.Questions[0].Kind())

	c.Invalidate(ctx, 4)
	assert.Nil(t, c.Get(ctx, 4))

	c.Put(ctx, exam)
	store.failGet = true
	assert.Nil(t, c.Get(ctx, 4), "read failures degrade to a miss")
}

func TestExamCacheFlush(t *testing.T) {
	ctx := context.Background()
	store := newMemoryCache()
	c := NewExamCache(store, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	c.Put(ctx, &models.Exam{ID: 1, Title: "Algebra"})
	c.Put(ctx, &models.Exam{ID: 2, Title: "Geometry"})
	require.NoError(t, store.Set(ctx, "session:abc", "keep", time.Minute))

	require.NoError(t, c.Flush(ctx))

	assert.Nil(t, c.Get(ctx, 1))
	assert.Nil(t, c.Get(ctx, 2))
	var other string
	require.NoError(t, store.Get(ctx, "session:abc", &other))
	assert.Equal(t, "keep", other)
}

func TestExamCacheWithoutBackend(t *testing.T) {
	c := NewExamCache(nil, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.Put(context.Background(), &models.Exam{ID: 1})
	assert.Nil(t, c.Get(context.Background(), 1))
}
