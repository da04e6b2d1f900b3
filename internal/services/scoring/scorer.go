package scoring

import (
	"context"
	"fmt"
	"math"

	"LoanPredictor/internal/domain/models"
	domsvc "LoanPredictor/internal/domain/service"
)

// Scorer holds the fitted scaler and classifier. A fitted Scorer is
// read-only and safe for concurrent use.
type Scorer struct {
	cfg    *ModelConfig
	clf    domsvc.Classifier
	scaler *StandardScaler
}

// Train fits the scaler and the classifier on cfg.Examples and returns a
// ready Scorer.
func Train(ctx context.Context, cfg *ModelConfig, clf domsvc.Classifier) (*Scorer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("train: %w: nil model config", models.ErrModelNotReady)
	}
	if clf == nil {
		return nil, fmt.Errorf("train: %w: nil classifier", models.ErrModelNotReady)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	X, y := cfg.Dataset()
	scaler, err := FitScaler(X)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	Xs, err := scaler.TransformAll(X)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	if err := clf.Fit(ctx, Xs, y); err != nil {
		return nil, fmt.Errorf("train %s: %w", clf.Name(), err)
	}
	return &Scorer{cfg: cfg, clf: clf, scaler: scaler}, nil
}

// Predict scores one application.
func (s *Scorer) Predict(ctx context.Context, in models.ApplicationInput) (models.ScoreResult, error) {
	var res models.ScoreResult
	if s == nil || s.scaler == nil || s.clf == nil {
		return res, models.ErrModelNotReady
	}

	risk, err := RiskScore(s.cfg.Weights, in)
	if err != nil {
		return res, err
	}

	x, err := s.scaler.Transform(in.Features())
	if err != nil {
		return res, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	prob, err := s.clf.PredictProbability(ctx, x)
	if err != nil {
		return res, fmt.Errorf("classify: %w", err)
	}

	res.Eligible = prob > s.cfg.EligibleThreshold
	res.Confidence = prob * 100
	res.RiskScore = risk
	res.RiskCategory = Categorize(risk, s.cfg.LowRiskBelow, s.cfg.MediumRiskBelow)
	return res, nil
}

// Info reports the fitted parameters.
func (s *Scorer) Info() models.ModelInfo {
	info := models.ModelInfo{
		Means:   map[string]float64{},
		StdDevs: map[string]float64{},
	}
	if s == nil || s.scaler == nil {
		return info
	}
	info.Classifier = s.clf.Name()
	info.Seed = s.cfg.Seed
	info.Examples = len(s.cfg.Examples)
	if f, ok := s.clf.(*RandomForest); ok {
		info.Trees = f.Trees()
	}
	mean, std := s.scaler.Mean(), s.scaler.StdDev()
	for i, name := range models.FeatureNames {
		info.Means[name] = mean[i]
		info.StdDevs[name] = std[i]
	}
	return info
}

// RiskScore is the classifier-independent composite risk in [0,100].
func RiskScore(w RiskWeights, in models.ApplicationInput) (float64, error) {
	if in.MonthlyIncome == 0 {
		return 0, models.ErrDivisionByZero
	}
	dti := (in.MonthlyExpenses + in.LoanAmount*w.LoanDTIFactor) / in.MonthlyIncome
	creditRisk := math.Max(0, (w.CreditCeiling-float64(in.CreditScore))/w.CreditCeiling*100)
	loanToIncome := in.LoanAmount / (in.MonthlyIncome * 12) * 100

	score := dti*w.DTI +
		creditRisk*w.CreditRisk +
		loanToIncome*w.LoanToIncome +
		float64(in.ExistingLoans)*w.ExistingLoans
	return math.Max(0, math.Min(100, score)), nil
}

// Categorize maps a risk score onto the Low/Medium/High buckets.
func Categorize(score, lowBelow, mediumBelow float64) models.RiskCategory {
	switch {
	case score < lowBelow:
		return models.RiskLow
	case score < mediumBelow:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

var _ domsvc.Scorer = (*Scorer)(nil)
