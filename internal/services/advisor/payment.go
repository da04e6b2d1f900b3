package advisor

import (
	"fmt"
	"math"

	"LoanPredictor/internal/domain/models"
)

// Terms are the loan terms used for the affordability estimate.
type Terms struct {
	AnnualRatePercent float64
	Years             int
}

// DefaultTerms is 8.5% over 20 years.
var DefaultTerms = Terms{AnnualRatePercent: 8.5, Years: 20}

// MonthlyPayment is the standard amortizing-loan payment (EMI).
func MonthlyPayment(principal, annualRatePercent float64, years int) (float64, error) {
	if years <= 0 {
		return 0, fmt.Errorf("%w: loan term must be positive, got %d years", models.ErrInvalidInput, years)
	}
	r := annualRatePercent / 12 / 100
	n := float64(years * 12)
	if r == 0 {
		return principal / n, nil
	}
	factor := math.Pow(1+r, n)
	return principal * r * factor / (factor - 1), nil
}

// DisposableIncome is what remains after expenses and the loan payment.
func DisposableIncome(income, expenses, monthlyPayment float64) float64 {
	return income - expenses - monthlyPayment
}

// DebtToIncomePercent is (expenses + payment) as a percentage of income.
func DebtToIncomePercent(income, expenses, monthlyPayment float64) (float64, error) {
	if income == 0 {
		return 0, models.ErrDivisionByZero
	}
	return (expenses + monthlyPayment) / income * 100, nil
}
