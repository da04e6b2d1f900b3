package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LoanPredictor/internal/domain/models"
	"LoanPredictor/internal/service/ratelimit"
	"LoanPredictor/internal/services/advisor"
	"LoanPredictor/internal/services/scoring"
	"LoanPredictor/internal/usecase"
	xhttp "LoanPredictor/pkg/http"
	"LoanPredictor/pkg/metrics"
)

type fakeStore struct {
	rows      []models.DecisionRecord
	err       error
	from, to  time.Time
	lastLimit int
}

func (f *fakeStore) Name() string                                       { return "fake" }
func (f *fakeStore) Write(context.Context, models.DecisionRecord) error { return nil }
func (f *fakeStore) Close() error                                       { return nil }
func (f *fakeStore) Init(context.Context) error                         { return nil }
func (f *fakeStore) Health(context.Context) error                       { return nil }
func (f *fakeStore) List(_ context.Context, from, to time.Time, limit int) ([]models.DecisionRecord, error) {
	f.from, f.to, f.lastLimit = from, to, limit
	return f.rows, f.err
}

func newAssessor(t *testing.T) *usecase.LoanAssessor {
	t.Helper()
	cfg := scoring.DefaultModelConfig()
	scorer, err := scoring.Train(context.Background(), cfg, scoring.NewRandomForest(cfg.Trees, cfg.Seed))
	require.NoError(t, err)
	adv := advisor.New(advisor.DefaultTerms, advisor.DefaultTipRules)
	return usecase.NewLoanAssessor(scorer, adv, nil, nil, metrics.New(prometheus.NewRegistry()), nil)
}

func newEcho(h *PredictEchoHandler) *echo.Echo {
	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body xhttp.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestPredict_TrainingRowIsApprovedWithHighRisk(t *testing.T) {
	e := newEcho(NewPredictEchoHandler(nil, newAssessor(t), nil, RateLimit{}))

	body := `{"monthly_income":50000,"loan_amount":500000,"credit_score":750,"existing_loans":0,"monthly_expenses":20000,"employment_years":5}`
	for _, path := range []string{"/predict", "/api/predict"} {
		rec := do(e, http.MethodPost, path, body)
		require.Equal(t, http.StatusOK, rec.Code, path)

		var resp models.PredictResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Eligible)
		assert.Greater(t, resp.Confidence, 50.0)
		assert.Equal(t, 100.0, resp.RiskScore)
		assert.Equal(t, "High Risk", resp.RiskCategory)
		assert.Greater(t, resp.MonthlyEMI, 0.0)
		assert.NotEmpty(t, resp.Tips)
	}
}

func TestPredict_ResponseShape(t *testing.T) {
	e := newEcho(NewPredictEchoHandler(nil, newAssessor(t), nil, RateLimit{}))

	rec := do(e, http.MethodPost, "/predict", `{"monthly_income":80000,"loan_amount":1000000,"credit_score":800,"existing_loans":1,"monthly_expenses":30000,"employment_years":8}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	for _, k := range []string{"eligible", "confidence", "risk_score", "risk_category", "monthly_emi", "disposable_income", "debt_to_income", "tips"} {
		assert.Contains(t, raw, k)
	}
	assert.Len(t, raw, 8)
}

func TestPredict_Errors(t *testing.T) {
	e := newEcho(NewPredictEchoHandler(nil, newAssessor(t), nil, RateLimit{}))

	tests := []struct {
		name   string
		body   string
		status int
		msg    string
	}{
		{"zero income", `{"loan_amount":1000}`, http.StatusBadRequest, "monthly income must be greater than zero"},
		{"empty object", `{}`, http.StatusBadRequest, "monthly income must be greater than zero"},
		{"string number", `{"monthly_income":"abc"}`, http.StatusBadRequest, "invalid request body"},
		{"malformed", `{"monthly_income":`, http.StatusBadRequest, "invalid request body"},
		{"negative", `{"monthly_income":-1}`, http.StatusBadRequest, "monthly_income must be greater than or equal to 0"},
		{"credit too high", `{"monthly_income":1000,"credit_score":901}`, http.StatusBadRequest, "credit_score must be less than or equal to 900"},
		{"explicit zero credit", `{"monthly_income":1000,"credit_score":0}`, http.StatusBadRequest, "credit_score must be greater than or equal to 300"},
		{"null credit", `{"monthly_income":1000,"credit_score":null}`, http.StatusBadRequest, "invalid request body"},
		{"boolean income", `{"monthly_income":true}`, http.StatusBadRequest, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/predict", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, errorMessage(t, rec))
		})
	}
}

func TestPredict_AcceptsNumericForms(t *testing.T) {
	e := newEcho(NewPredictEchoHandler(nil, newAssessor(t), nil, RateLimit{}))

	decode := func(body string) models.PredictResponse {
		rec := do(e, http.MethodPost, "/predict", body)
		require.Equal(t, http.StatusOK, rec.Code, body)
		var resp models.PredictResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}

	want := decode(`{"monthly_income":50000,"loan_amount":500000,"credit_score":750,"monthly_expenses":20000,"employment_years":5}`)
	for _, body := range []string{
		`{"monthly_income":50000,"loan_amount":500000,"credit_score":750.0,"monthly_expenses":20000,"employment_years":5.0}`,
		`{"monthly_income":"50000","loan_amount":"500000","credit_score":"750","monthly_expenses":"20000","employment_years":"5"}`,
		`{"monthly_income":50000,"loan_amount":500000,"credit_score":750.9,"monthly_expenses":20000,"employment_years":5}`,
	} {
		assert.Equal(t, want, decode(body), body)
	}
}

func TestHealth(t *testing.T) {
	e := newEcho(NewPredictEchoHandler(nil, newAssessor(t), nil, RateLimit{}))

	for _, path := range []string{"/health", "/api/health"} {
		rec := do(e, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	}
}

func TestModel(t *testing.T) {
	e := newEcho(NewPredictEchoHandler(nil, newAssessor(t), nil, RateLimit{}))

	rec := do(e, http.MethodGet, "/api/model", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var info models.ModelInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "forest", info.Classifier)
	assert.Equal(t, 100, info.Trees)
	assert.Equal(t, int64(42), info.Seed)
	assert.Equal(t, 10, info.Examples)
	assert.Len(t, info.Means, 6)
}

func TestDecisions_Disabled(t *testing.T) {
	e := newEcho(NewPredictEchoHandler(nil, newAssessor(t), nil, RateLimit{}))

	rec := do(e, http.MethodGet, "/api/decisions", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "decision history disabled", errorMessage(t, rec))
}

func TestDecisions_List(t *testing.T) {
	store := &fakeStore{rows: []models.DecisionRecord{{ID: "b"}, {ID: "a"}}}
	h := NewPredictEchoHandler(nil, newAssessor(t), store, RateLimit{})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }
	e := newEcho(h)

	rec := do(e, http.MethodGet, "/api/decisions?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Rows  []models.DecisionRecord `json:"rows"`
		Total int64                   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, "b", resp.Rows[0].ID)
	assert.Equal(t, 5, store.lastLimit)
	assert.Equal(t, now, store.to)
	assert.Equal(t, now.Add(-decisionsWindow), store.from)
}

func TestDecisions_BadInput(t *testing.T) {
	store := &fakeStore{}
	e := newEcho(NewPredictEchoHandler(nil, newAssessor(t), store, RateLimit{}))

	rec := do(e, http.MethodGet, "/api/decisions?from=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/api/decisions?limit=5000", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecisions_StoreFailureIsGeneric(t *testing.T) {
	store := &fakeStore{err: errors.New("code: 60, table does not exist")}
	e := newEcho(NewPredictEchoHandler(nil, newAssessor(t), store, RateLimit{}))

	rec := do(e, http.MethodGet, "/api/decisions", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", errorMessage(t, rec))
}

func TestPredict_RateLimited(t *testing.T) {
	limit := RateLimit{Limiter: ratelimit.New(), Capacity: 1, RefillPerSec: 0.001}
	e := newEcho(NewPredictEchoHandler(nil, newAssessor(t), nil, limit))

	body := `{"monthly_income":50000,"loan_amount":500000,"credit_score":750}`
	assert.Equal(t, http.StatusOK, do(e, http.MethodPost, "/predict", body).Code)

	rec := do(e, http.MethodPost, "/predict", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate limit exceeded", errorMessage(t, rec))

	// health is never limited
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/health", "").Code)
}

func TestToAppError(t *testing.T) {
	tests := []struct {
		err    error
		code   string
		status int
	}{
		{fmt.Errorf("x: %w", models.ErrInvalidInput), xhttp.CodeInvalidInput, http.StatusBadRequest},
		{models.ErrDivisionByZero, xhttp.CodeDivisionByZero, http.StatusBadRequest},
		{fmt.Errorf("classify: %w", models.ErrModelNotReady), xhttp.CodeModelNotReady, http.StatusServiceUnavailable},
		{errors.New("boom"), xhttp.CodeInternal, http.StatusInternalServerError},
		{xhttp.TooManyRequestsError("slow down"), xhttp.CodeTooManyRequests, http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		got := ToAppError(tt.err)
		assert.Equal(t, tt.code, got.Code, tt.err.Error())
		assert.Equal(t, tt.status, got.Status, tt.err.Error())
	}
	assert.NotContains(t, ToAppError(errors.New("secret dsn")).Message, "secret")
}
