package repository

import (
	"context"
	"time"

	"LoanPredictor/internal/domain/models"
)

// DecisionSink receives every completed assessment (audit trail).
type DecisionSink interface {
	Name() string
	Write(ctx context.Context, rec models.DecisionRecord) error
	Close() error
}

// DecisionStore persists decisions and serves the history endpoint.
type DecisionStore interface {
	DecisionSink
	Init(ctx context.Context) error
	List(ctx context.Context, from, to time.Time, limit int) ([]models.DecisionRecord, error)
	Health(ctx context.Context) error
}

// AssessmentCache memoizes assessments by input key.
type AssessmentCache interface {
	Get(ctx context.Context, key string) (*models.Assessment, bool)
	Set(ctx context.Context, key string, a *models.Assessment) error
}

type Metrics interface {
	RecordPrediction(category string, eligible bool, source string)
	RecordRiskScore(score float64)
	RecordError(kind string)
	RecordCacheResult(hit bool)
	RecordLatency(op string, seconds float64)
}
