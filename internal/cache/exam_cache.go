package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/exam-service/internal/models"
)

const examKeyPrefix = "exam:"

// ExamCache is a read-through cache of exam documents. Cache failures are
// logged and reported as misses so the store stays the source of truth.
type ExamCache struct {
	cache  CacheService
	ttl    time.Duration
	logger *slog.Logger
}

func NewExamCache(cache CacheService, ttl time.Duration, logger *slog.Logger) *ExamCache {
	if cache == nil {
		cache = NewNoopCache()
	}
	return &ExamCache{cache: cache, ttl: ttl, logger: logger}
}

func examKey(id uint) string {
	return fmt.Sprintf("%s%d", examKeyPrefix, id)
}

// Get returns the cached exam, or nil on a miss.
func (c *ExamCache) Get(ctx context.Context, id uint) *models.Exam {
	var exam models.Exam
	if err := c.cache.Get(ctx, examKey(id), &exam); err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("Exam cache read failed", "exam_id", id, "error", err)
		}
		return nil
	}
	return &exam
}

func (c *ExamCache) Put(ctx context.Context, exam *models.Exam) {
	if err := c.cache.Set(ctx, examKey(exam.ID), exam, c.ttl); err != nil {
		c.logger.Warn("Exam cache write failed", "exam_id", exam.ID, "error", err)
	}
}

func (c *ExamCache) Invalidate(ctx context.Context, id uint) {
	if err := c.cache.Delete(ctx, examKey(id)); err != nil {
		c.logger.Warn("Exam cache invalidation failed", "exam_id", id, "error", err)
	}
}

// Flush drops every cached exam.
func (c *ExamCache) Flush(ctx context.Context) error {
	return c.cache.DeletePattern(ctx, examKeyPrefix+"*")
}
