package models

import (
	"fmt"
	"math"
	"time"
)

// ApplicationInput holds the raw fields of a single loan application.
type ApplicationInput struct {
	MonthlyIncome   float64
	LoanAmount      float64
	CreditScore     int
	ExistingLoans   int
	MonthlyExpenses float64
	EmploymentYears int
}

// Features returns the classifier feature vector in training column order.
func (in ApplicationInput) Features() []float64 {
	return []float64{
		in.MonthlyIncome,
		in.LoanAmount,
		float64(in.CreditScore),
		float64(in.ExistingLoans),
		in.MonthlyExpenses,
		float64(in.EmploymentYears),
	}
}

// Validate rejects values no amount of defaulting can make meaningful.
// A zero income is valid here; it is reported by the scorer as
// ErrDivisionByZero.
func (in ApplicationInput) Validate() error {
	floats := map[string]float64{
		"monthly_income":   in.MonthlyIncome,
		"loan_amount":      in.LoanAmount,
		"monthly_expenses": in.MonthlyExpenses,
	}
	for _, name := range []string{"monthly_income", "loan_amount", "monthly_expenses"} {
		v := floats[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidInput, name)
		}
		if v < 0 {
			return fmt.Errorf("%w: %s must be >= 0", ErrInvalidInput, name)
		}
	}
	if in.CreditScore < 300 || in.CreditScore > 900 {
		return fmt.Errorf("%w: credit_score must be between 300 and 900", ErrInvalidInput)
	}
	if in.ExistingLoans < 0 {
		return fmt.Errorf("%w: existing_loans must be >= 0", ErrInvalidInput)
	}
	if in.EmploymentYears < 0 {
		return fmt.Errorf("%w: employment_years must be >= 0", ErrInvalidInput)
	}
	return nil
}

// FeatureNames lists the feature columns in the order returned by Features.
var FeatureNames = []string{
	"monthly_income",
	"loan_amount",
	"credit_score",
	"existing_loans",
	"monthly_expenses",
	"employment_years",
}

// TrainingExample is one labelled row of the embedded training set.
type TrainingExample struct {
	Input ApplicationInput
	Label int // 1 = approved, 0 = rejected
}

type RiskCategory string

const (
	RiskLow    RiskCategory = "Low Risk"
	RiskMedium RiskCategory = "Medium Risk"
	RiskHigh   RiskCategory = "High Risk"
)

// ScoreResult is the Scorer output.
type ScoreResult struct {
	Eligible     bool
	Confidence   float64 // class-1 probability in percent
	RiskScore    float64 // 0..100
	RiskCategory RiskCategory
}

// Recommendation holds the derived affordability metrics and tips.
type Recommendation struct {
	MonthlyPayment   float64
	DisposableIncome float64
	DebtToIncome     float64 // percent
	Tips             []string
}

// Assessment is the complete outcome for one application.
type Assessment struct {
	ID        string
	CreatedAt time.Time
	Input     ApplicationInput
	Score     ScoreResult
	Advice    Recommendation
	Source    string
	Cached    bool
}

// Assessment sources.
const (
	SourceHTTP      = "http"
	SourceWebSocket = "ws"
	SourceKafka     = "kafka"
)
