package models

import (
	"time"

	"LoanPredictor/pkg/util"
)

// PredictRequest is the JSON body of POST /predict. Fields accept JSON
// numbers or numeric strings. Absent fields default to zero and an absent
// credit_score to 300; an explicit null is rejected. Integer fields are
// truncated toward zero.
type PredictRequest struct {
	MonthlyIncome   util.Number `json:"monthly_income" validate:"gte=0"`
	LoanAmount      util.Number `json:"loan_amount" validate:"gte=0"`
	CreditScore     util.Number `json:"credit_score" default:"300" validate:"gte=300,lte=900"`
	ExistingLoans   util.Number `json:"existing_loans" validate:"gte=0"`
	MonthlyExpenses util.Number `json:"monthly_expenses" validate:"gte=0"`
	EmploymentYears util.Number `json:"employment_years" validate:"gte=0"`
}

func (r *PredictRequest) ToInput() ApplicationInput {
	return ApplicationInput{
		MonthlyIncome:   r.MonthlyIncome.Float(),
		LoanAmount:      r.LoanAmount.Float(),
		CreditScore:     r.CreditScore.Int(),
		ExistingLoans:   r.ExistingLoans.Int(),
		MonthlyExpenses: r.MonthlyExpenses.Float(),
		EmploymentYears: r.EmploymentYears.Int(),
	}
}

// PredictResponse is the flat union of score and recommendation fields.
type PredictResponse struct {
	Eligible         bool     `json:"eligible"`
	Confidence       float64  `json:"confidence"`
	RiskScore        float64  `json:"risk_score"`
	RiskCategory     string   `json:"risk_category"`
	MonthlyEMI       float64  `json:"monthly_emi"`
	DisposableIncome float64  `json:"disposable_income"`
	DebtToIncome     float64  `json:"debt_to_income"`
	Tips             []string `json:"tips"`
}

func NewPredictResponse(a *Assessment) PredictResponse {
	return PredictResponse{
		Eligible:         a.Score.Eligible,
		Confidence:       a.Score.Confidence,
		RiskScore:        a.Score.RiskScore,
		RiskCategory:     string(a.Score.RiskCategory),
		MonthlyEMI:       a.Advice.MonthlyPayment,
		DisposableIncome: a.Advice.DisposableIncome,
		DebtToIncome:     a.Advice.DebtToIncome,
		Tips:             a.Advice.Tips,
	}
}

// DecisionsRequest filters GET /api/decisions.
type DecisionsRequest struct {
	Limit int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=1000"`
	From  string `query:"from" json:"from"`
	To    string `query:"to" json:"to"`
}

// DecisionRecord is the persisted and published form of an Assessment.
type DecisionRecord struct {
	ID               string    `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	Source           string    `json:"source"`
	MonthlyIncome    float64   `json:"monthly_income"`
	LoanAmount       float64   `json:"loan_amount"`
	CreditScore      int       `json:"credit_score"`
	ExistingLoans    int       `json:"existing_loans"`
	MonthlyExpenses  float64   `json:"monthly_expenses"`
	EmploymentYears  int       `json:"employment_years"`
	Eligible         bool      `json:"eligible"`
	Confidence       float64   `json:"confidence"`
	RiskScore        float64   `json:"risk_score"`
	RiskCategory     string    `json:"risk_category"`
	MonthlyEMI       float64   `json:"monthly_emi"`
	DisposableIncome float64   `json:"disposable_income"`
	DebtToIncome     float64   `json:"debt_to_income"`
}

func NewDecisionRecord(a *Assessment) DecisionRecord {
	return DecisionRecord{
		ID:               a.ID,
		CreatedAt:        a.CreatedAt,
		Source:           a.Source,
		MonthlyIncome:    a.Input.MonthlyIncome,
		LoanAmount:       a.Input.LoanAmount,
		CreditScore:      a.Input.CreditScore,
		ExistingLoans:    a.Input.ExistingLoans,
		MonthlyExpenses:  a.Input.MonthlyExpenses,
		EmploymentYears:  a.Input.EmploymentYears,
		Eligible:         a.Score.Eligible,
		Confidence:       a.Score.Confidence,
		RiskScore:        a.Score.RiskScore,
		RiskCategory:     string(a.Score.RiskCategory),
		MonthlyEMI:       a.Advice.MonthlyPayment,
		DisposableIncome: a.Advice.DisposableIncome,
		DebtToIncome:     a.Advice.DebtToIncome,
	}
}

// ModelInfo describes the fitted scorer for GET /api/model.
type ModelInfo struct {
	Classifier string             `json:"classifier"`
	Trees      int                `json:"trees,omitempty"`
	Seed       int64              `json:"seed"`
	Examples   int                `json:"examples"`
	Means      map[string]float64 `json:"means"`
	StdDevs    map[string]float64 `json:"std_devs"`
}
