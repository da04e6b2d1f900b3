package advisor

import (
	"fmt"
	"math"

	"LoanPredictor/internal/domain/models"

	"github.com/shopspring/decimal"
)

// Advisor combines a ScoreResult with the derived affordability metrics.
// It is stateless; the zero value is not usable, use New.
type Advisor struct {
	terms Terms
	rules TipRules
}

func New(terms Terms, rules TipRules) *Advisor {
	return &Advisor{terms: terms, rules: rules}
}

// Advise builds the Recommendation. Monetary values are rounded to 2 decimals.
func (a *Advisor) Advise(score models.ScoreResult, in models.ApplicationInput) (models.Recommendation, error) {
	var rec models.Recommendation

	emi, err := MonthlyPayment(in.LoanAmount, a.terms.AnnualRatePercent, a.terms.Years)
	if err != nil {
		return rec, fmt.Errorf("monthly payment: %w", err)
	}
	dti, err := DebtToIncomePercent(in.MonthlyIncome, in.MonthlyExpenses, emi)
	if err != nil {
		return rec, err
	}
	tips, err := GenerateTips(a.rules, score, in)
	if err != nil {
		return rec, err
	}

	disposable := DisposableIncome(in.MonthlyIncome, in.MonthlyExpenses, emi)
	for _, v := range []float64{emi, disposable, dti} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return rec, fmt.Errorf("%w: affordability metrics out of range", models.ErrInvalidInput)
		}
	}

	rec.MonthlyPayment = round2(emi)
	rec.DisposableIncome = round2(disposable)
	rec.DebtToIncome = round2(dti)
	rec.Tips = tips
	return rec, nil
}

func (a *Advisor) Terms() Terms { return a.terms }

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
