package advisor

import "LoanPredictor/internal/domain/models"

const (
	TipHighRisk        = "⚠️ Your application shows high risk. Consider improving your financial profile before applying."
	TipImproveCredit   = "📈 Improve your credit score to 750+ for better loan terms. Pay bills on time and reduce credit utilization."
	TipGoodCredit      = "📊 Good credit score! Aim for 750+ to get the best interest rates."
	TipExcellentCredit = "✅ Excellent credit score! You qualify for premium loan rates."
	TipHighDTI         = "💰 Your debt-to-income ratio is high (>50%). Reduce monthly expenses or increase income."
	TipElevatedDTI     = "💡 Consider reducing your loan amount or monthly expenses to improve affordability."
	TipManyLoans       = "🏦 You have multiple existing loans. Try consolidating or paying off some before applying."
	TipNoLoans         = "✨ No existing loans! This strengthens your application."
	TipLoanHigh        = "📉 Loan amount is high relative to annual income. Consider a lower amount or co-applicant."
	TipEligibleDocs    = "🎉 You're likely eligible! Prepare documents: ID proof, income proof, bank statements."
	TipEligibleCompare = "💼 Compare offers from 3-4 banks to get the best interest rate."
	TipRejectedSave    = "🔄 Build your profile: Save for a larger down payment to reduce loan amount."
	TipRejectedWait    = "📅 Wait 6-12 months while improving credit score and reducing expenses."
	TipEmergencyFund   = "📚 Consider financial planning: Emergency fund should be 6 months of expenses."
)

// TipRules are the thresholds of the tip table.
type TipRules struct {
	GoodCreditFrom      int
	ExcellentCreditFrom int
	HighDTIAbove        float64
	ElevatedDTIAbove    float64
	ManyLoansAbove      int
	LoanIncomeMultiple  float64
	LoanDTIFactor       float64
}

var DefaultTipRules = TipRules{
	GoodCreditFrom:      700,
	ExcellentCreditFrom: 750,
	HighDTIAbove:        0.5,
	ElevatedDTIAbove:    0.36,
	ManyLoansAbove:      2,
	LoanIncomeMultiple:  36,
	LoanDTIFactor:       0.01,
}

// GenerateTips evaluates the rule table in fixed order. Each rule appends
// at most one tip, except the eligibility branch which appends two.
func GenerateTips(rules TipRules, score models.ScoreResult, in models.ApplicationInput) ([]string, error) {
	if in.MonthlyIncome == 0 {
		return nil, models.ErrDivisionByZero
	}
	tips := make([]string, 0, 8)

	if score.RiskCategory == models.RiskHigh {
		tips = append(tips, TipHighRisk)
	}

	switch {
	case in.CreditScore < rules.GoodCreditFrom:
		tips = append(tips, TipImproveCredit)
	case in.CreditScore < rules.ExcellentCreditFrom:
		tips = append(tips, TipGoodCredit)
	default:
		tips = append(tips, TipExcellentCredit)
	}

	dti := (in.MonthlyExpenses + in.LoanAmount*rules.LoanDTIFactor) / in.MonthlyIncome
	switch {
	case dti > rules.HighDTIAbove:
		tips = append(tips, TipHighDTI)
	case dti > rules.ElevatedDTIAbove:
		tips = append(tips, TipElevatedDTI)
	}

	switch {
	case in.ExistingLoans > rules.ManyLoansAbove:
		tips = append(tips, TipManyLoans)
	case in.ExistingLoans == 0:
		tips = append(tips, TipNoLoans)
	}

	if in.LoanAmount > in.MonthlyIncome*rules.LoanIncomeMultiple {
		tips = append(tips, TipLoanHigh)
	}

	if score.Eligible {
		tips = append(tips, TipEligibleDocs, TipEligibleCompare)
	} else {
		tips = append(tips, TipRejectedSave, TipRejectedWait)
	}

	return append(tips, TipEmergencyFund), nil
}
