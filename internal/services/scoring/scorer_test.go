package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LoanPredictor/internal/domain/models"
)

var trainingRow = models.ApplicationInput{
	MonthlyIncome:   50000,
	LoanAmount:      500000,
	CreditScore:     750,
	ExistingLoans:   0,
	MonthlyExpenses: 20000,
	EmploymentYears: 5,
}

func trainForest(t *testing.T) *Scorer {
	t.Helper()
	cfg := DefaultModelConfig()
	s, err := Train(context.Background(), cfg, NewRandomForest(cfg.Trees, cfg.Seed))
	require.NoError(t, err)
	return s
}

func TestPredict_TrainingRow(t *testing.T) {
	s := trainForest(t)

	res, err := s.Predict(context.Background(), trainingRow)
	require.NoError(t, err)
	assert.True(t, res.Eligible)
	assert.InDelta(t, 88.0, res.Confidence, 1e-9)
	assert.Equal(t, 100.0, res.RiskScore)
	assert.Equal(t, models.RiskHigh, res.RiskCategory)
}

// Recorded outputs of the seed-42, 100-tree forest. Any change to bootstrap
// sampling, feature order or split selection moves these.
func TestPredict_ForestBaseline(t *testing.T) {
	s := trainForest(t)

	tests := []struct {
		name       string
		in         models.ApplicationInput
		confidence float64
		eligible   bool
	}{
		{"training row", trainingRow, 88, true},
		{"strong applicant", models.ApplicationInput{MonthlyIncome: 80000, LoanAmount: 1000000, CreditScore: 800, ExistingLoans: 1, MonthlyExpenses: 30000, EmploymentYears: 8}, 100, true},
		{"weak applicant", models.ApplicationInput{MonthlyIncome: 22000, LoanAmount: 350000, CreditScore: 580, ExistingLoans: 3, MonthlyExpenses: 15000, EmploymentYears: 1}, 3, false},
		{"middle applicant", models.ApplicationInput{MonthlyIncome: 60000, LoanAmount: 800000, CreditScore: 700, ExistingLoans: 1, MonthlyExpenses: 25000, EmploymentYears: 3}, 83, true},
		{"excellent credit", models.ApplicationInput{MonthlyIncome: 100000, LoanAmount: 1200000, CreditScore: 820, ExistingLoans: 0, MonthlyExpenses: 30000, EmploymentYears: 12}, 100, true},
		{"defaulted credit", models.ApplicationInput{MonthlyIncome: 1000, CreditScore: 300}, 12, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Predict(context.Background(), tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.confidence, res.Confidence, 1e-9)
			assert.Equal(t, tt.eligible, res.Eligible)
		})
	}
}

func TestPredict_IsIdempotent(t *testing.T) {
	s := trainForest(t)
	in := models.ApplicationInput{MonthlyIncome: 42000, LoanAmount: 350000, CreditScore: 690, ExistingLoans: 1, MonthlyExpenses: 17000, EmploymentYears: 3}

	first, err := s.Predict(context.Background(), in)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := s.Predict(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestTrain_SameSeedSameModel(t *testing.T) {
	a, b := trainForest(t), trainForest(t)
	for _, ex := range TrainingSet {
		ra, err := a.Predict(context.Background(), ex.Input)
		require.NoError(t, err)
		rb, err := b.Predict(context.Background(), ex.Input)
		require.NoError(t, err)
		assert.Equal(t, ra, rb)
	}
}

func TestPredict_ZeroIncome(t *testing.T) {
	s := trainForest(t)
	in := trainingRow
	in.MonthlyIncome = 0

	_, err := s.Predict(context.Background(), in)
	assert.ErrorIs(t, err, models.ErrDivisionByZero)
}

func TestPredict_UnfittedScorer(t *testing.T) {
	var s *Scorer
	_, err := s.Predict(context.Background(), trainingRow)
	assert.ErrorIs(t, err, models.ErrModelNotReady)

	_, err = (&Scorer{}).Predict(context.Background(), trainingRow)
	assert.ErrorIs(t, err, models.ErrModelNotReady)
}

func TestTrain_Logistic(t *testing.T) {
	cfg := DefaultModelConfig()
	cfg.Classifier = ClassifierLogistic
	s, err := Train(context.Background(), cfg, NewLogisticClassifier())
	require.NoError(t, err)

	res, err := s.Predict(context.Background(), TrainingSet[7].Input)
	require.NoError(t, err)
	assert.True(t, res.Eligible)

	res, err = s.Predict(context.Background(), TrainingSet[8].Input)
	require.NoError(t, err)
	assert.False(t, res.Eligible)

	assert.Equal(t, ClassifierLogistic, s.Info().Classifier)
	assert.Zero(t, s.Info().Trees)
}

func TestTrain_RejectsBadConfig(t *testing.T) {
	cfg := DefaultModelConfig()
	cfg.Trees = 0
	_, err := Train(context.Background(), cfg, NewRandomForest(1, 1))
	assert.Error(t, err)

	_, err = Train(context.Background(), nil, NewRandomForest(1, 1))
	assert.ErrorIs(t, err, models.ErrModelNotReady)

	cfg = DefaultModelConfig()
	cfg.LowRiskBelow = 70
	_, err = Train(context.Background(), cfg, NewRandomForest(1, 1))
	assert.Error(t, err)
}

func TestInfo(t *testing.T) {
	info := trainForest(t).Info()
	assert.Equal(t, ClassifierForest, info.Classifier)
	assert.Equal(t, 100, info.Trees)
	assert.Equal(t, int64(42), info.Seed)
	assert.Equal(t, 10, info.Examples)
	assert.InDelta(t, 68000.0, info.Means["monthly_income"], 1e-9)
	assert.Len(t, info.StdDevs, len(models.FeatureNames))
}

func TestRiskScore(t *testing.T) {
	w := DefaultModelConfig().Weights

	score, err := RiskScore(w, trainingRow)
	require.NoError(t, err)
	assert.Equal(t, 100.0, score)

	// a perfect credit score contributes no credit risk
	score, err = RiskScore(w, models.ApplicationInput{MonthlyIncome: 100000, CreditScore: 850})
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)

	// above the ceiling is clamped, not negative
	score, err = RiskScore(w, models.ApplicationInput{MonthlyIncome: 100000, CreditScore: 900})
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)

	// 10000/100000*30 + 0 + 120000/1.2M*100*0.3 + 1*10 = 3 + 3 + 10
	score, err = RiskScore(w, models.ApplicationInput{MonthlyIncome: 100000, LoanAmount: 120000, CreditScore: 850, ExistingLoans: 1, MonthlyExpenses: 8800})
	require.NoError(t, err)
	assert.InDelta(t, 16.0, score, 1e-9)

	_, err = RiskScore(w, models.ApplicationInput{CreditScore: 700})
	assert.ErrorIs(t, err, models.ErrDivisionByZero)
}

func TestRiskScoreStaysInRange(t *testing.T) {
	w := DefaultModelConfig().Weights
	for _, ex := range TrainingSet {
		score, err := RiskScore(w, ex.Input)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		score float64
		want  models.RiskCategory
	}{
		{0, models.RiskLow},
		{29.99, models.RiskLow},
		{30, models.RiskMedium},
		{59.99, models.RiskMedium},
		{60, models.RiskHigh},
		{100, models.RiskHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Categorize(tt.score, 30, 60), "score %v", tt.score)
	}
}
