package scoring

import (
	"fmt"

	"LoanPredictor/internal/domain/models"
)

// RiskWeights are the composite risk-score coefficients. They carry no
// documented derivation and are kept as configuration constants.
type RiskWeights struct {
	DTI           float64
	CreditRisk    float64
	LoanToIncome  float64
	ExistingLoans float64
	// LoanDTIFactor is the share of the loan amount counted as a monthly
	// obligation in the simplified DTI.
	LoanDTIFactor float64
	CreditCeiling float64
}

// ModelConfig is built once during service initialization and shared by
// reference. It must not be modified after Train.
type ModelConfig struct {
	Classifier        string
	Examples          []models.TrainingExample
	Seed              int64
	Trees             int
	EligibleThreshold float64
	LowRiskBelow      float64
	MediumRiskBelow   float64
	Weights           RiskWeights
}

// TrainingSet is the embedded ten-row dataset every classifier is fit on.
var TrainingSet = []models.TrainingExample{
	{Input: models.ApplicationInput{MonthlyIncome: 50000, LoanAmount: 500000, CreditScore: 750, ExistingLoans: 0, MonthlyExpenses: 20000, EmploymentYears: 5}, Label: 1},
	{Input: models.ApplicationInput{MonthlyIncome: 80000, LoanAmount: 1000000, CreditScore: 800, ExistingLoans: 1, MonthlyExpenses: 30000, EmploymentYears: 8}, Label: 1},
	{Input: models.ApplicationInput{MonthlyIncome: 30000, LoanAmount: 300000, CreditScore: 650, ExistingLoans: 2, MonthlyExpenses: 15000, EmploymentYears: 2}, Label: 0},
	{Input: models.ApplicationInput{MonthlyIncome: 120000, LoanAmount: 2000000, CreditScore: 850, ExistingLoans: 0, MonthlyExpenses: 40000, EmploymentYears: 10}, Label: 1},
	{Input: models.ApplicationInput{MonthlyIncome: 25000, LoanAmount: 400000, CreditScore: 600, ExistingLoans: 1, MonthlyExpenses: 18000, EmploymentYears: 1}, Label: 0},
	{Input: models.ApplicationInput{MonthlyIncome: 90000, LoanAmount: 1500000, CreditScore: 780, ExistingLoans: 1, MonthlyExpenses: 35000, EmploymentYears: 7}, Label: 1},
	{Input: models.ApplicationInput{MonthlyIncome: 45000, LoanAmount: 600000, CreditScore: 720, ExistingLoans: 0, MonthlyExpenses: 22000, EmploymentYears: 4}, Label: 1},
	{Input: models.ApplicationInput{MonthlyIncome: 150000, LoanAmount: 3000000, CreditScore: 900, ExistingLoans: 0, MonthlyExpenses: 50000, EmploymentYears: 15}, Label: 1},
	{Input: models.ApplicationInput{MonthlyIncome: 20000, LoanAmount: 250000, CreditScore: 550, ExistingLoans: 2, MonthlyExpenses: 12000, EmploymentYears: 1}, Label: 0},
	{Input: models.ApplicationInput{MonthlyIncome: 70000, LoanAmount: 900000, CreditScore: 760, ExistingLoans: 1, MonthlyExpenses: 28000, EmploymentYears: 6}, Label: 1},
}

// DefaultModelConfig returns the reference configuration: 100 trees,
// seed 42, breakpoints 30/60 and weights 30/40/0.3/10.
func DefaultModelConfig() *ModelConfig {
	examples := make([]models.TrainingExample, len(TrainingSet))
	copy(examples, TrainingSet)
	return &ModelConfig{
		Classifier:        ClassifierForest,
		Examples:          examples,
		Seed:              42,
		Trees:             100,
		EligibleThreshold: 0.5,
		LowRiskBelow:      30,
		MediumRiskBelow:   60,
		Weights: RiskWeights{
			DTI:           30,
			CreditRisk:    40,
			LoanToIncome:  0.3,
			ExistingLoans: 10,
			LoanDTIFactor: 0.01,
			CreditCeiling: 850,
		},
	}
}

// Validate checks the configuration is usable for training.
func (c *ModelConfig) Validate() error {
	if len(c.Examples) == 0 {
		return fmt.Errorf("model: training set is empty")
	}
	if c.Trees <= 0 {
		return fmt.Errorf("model: trees must be positive, got %d", c.Trees)
	}
	if c.LowRiskBelow >= c.MediumRiskBelow {
		return fmt.Errorf("model: low risk breakpoint %.2f must be below medium %.2f", c.LowRiskBelow, c.MediumRiskBelow)
	}
	if c.EligibleThreshold <= 0 || c.EligibleThreshold >= 1 {
		return fmt.Errorf("model: eligible threshold must be in (0,1), got %.2f", c.EligibleThreshold)
	}
	if c.Weights.CreditCeiling <= 0 {
		return fmt.Errorf("model: credit ceiling must be positive")
	}
	return nil
}

// Dataset returns the raw feature matrix and labels of the training set.
func (c *ModelConfig) Dataset() ([][]float64, []int) {
	X := make([][]float64, len(c.Examples))
	y := make([]int, len(c.Examples))
	for i, ex := range c.Examples {
		X[i] = ex.Input.Features()
		y[i] = ex.Label
	}
	return X, y
}
