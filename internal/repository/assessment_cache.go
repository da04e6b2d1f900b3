package repository

import (
	"context"
	"errors"
	"time"

	"LoanPredictor/internal/domain/models"
	"LoanPredictor/internal/domain/repository"
	"LoanPredictor/pkg/cache"
	"LoanPredictor/pkg/logger"
)

// AssessmentCache stores scored results in any cache.Service backend.
type AssessmentCache struct {
	svc cache.Service
	ttl time.Duration
	log *logger.Logger
}

func NewAssessmentCache(svc cache.Service, ttl time.Duration, log *logger.Logger) *AssessmentCache {
	if log == nil {
		log = logger.Nop()
	}
	return &AssessmentCache{svc: svc, ttl: ttl, log: log}
}

// Get treats backend failures as misses so a cache outage only costs a
// recomputation.
func (c *AssessmentCache) Get(ctx context.Context, key string) (*models.Assessment, bool) {
	var a models.Assessment
	if err := c.svc.Get(ctx, key, &a); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.log.Warn("assessment cache read failed", logger.String("key", key), logger.Error(err))
		}
		return nil, false
	}
	return &a, true
}

func (c *AssessmentCache) Set(ctx context.Context, key string, a *models.Assessment) error {
	return c.svc.Set(ctx, key, a, c.ttl)
}

var _ repository.AssessmentCache = (*AssessmentCache)(nil)
