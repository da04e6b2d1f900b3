package service

import (
	"context"

	"LoanPredictor/internal/domain/models"
)

// Classifier is the narrow capability the Scorer needs from a model.
// X rows are already standardized; y holds 0/1 labels.
type Classifier interface {
	Name() string
	Fit(ctx context.Context, X [][]float64, y []int) error
	PredictProbability(ctx context.Context, x []float64) (float64, error)
}

// Scorer produces a ScoreResult for one application.
type Scorer interface {
	Predict(ctx context.Context, in models.ApplicationInput) (models.ScoreResult, error)
	Info() models.ModelInfo
}

// Advisor derives affordability metrics and tips from a score.
type Advisor interface {
	Advise(score models.ScoreResult, in models.ApplicationInput) (models.Recommendation, error)
}
