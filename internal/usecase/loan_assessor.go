package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"LoanPredictor/internal/domain/models"
	domrepo "LoanPredictor/internal/domain/repository"
	domsvc "LoanPredictor/internal/domain/service"
	"LoanPredictor/pkg/cache"
	"LoanPredictor/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// LoanAssessor runs one application through validation, scoring, advice,
// caching, metrics and the audit sinks.
type LoanAssessor struct {
	scorer  domsvc.Scorer
	advisor domsvc.Advisor
	cache   domrepo.AssessmentCache
	sinks   []domrepo.DecisionSink
	metrics domrepo.Metrics
	log     *logger.Logger

	auditTimeout time.Duration
	flight       singleflight.Group
	now          func() time.Time
	newID        func() string
}

// NewLoanAssessor wires the use case. cache may be nil; sinks may be empty.
func NewLoanAssessor(
	scorer domsvc.Scorer,
	advisor domsvc.Advisor,
	cache domrepo.AssessmentCache,
	sinks []domrepo.DecisionSink,
	metrics domrepo.Metrics,
	log *logger.Logger,
) *LoanAssessor {
	if log == nil {
		log = logger.Nop()
	}
	return &LoanAssessor{
		scorer:       scorer,
		advisor:      advisor,
		cache:        cache,
		sinks:        sinks,
		metrics:      metrics,
		log:          log,
		auditTimeout: 5 * time.Second,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        func() string { return uuid.NewString() },
	}
}

// Assess scores an application received over HTTP.
func (a *LoanAssessor) Assess(ctx context.Context, in models.ApplicationInput) (*models.Assessment, error) {
	return a.AssessFrom(ctx, in, models.SourceHTTP)
}

// AssessFrom scores an application and tags the decision with its source.
func (a *LoanAssessor) AssessFrom(ctx context.Context, in models.ApplicationInput, source string) (*models.Assessment, error) {
	start := time.Now()
	defer func() { a.metrics.RecordLatency("assess", time.Since(start).Seconds()) }()

	if err := in.Validate(); err != nil {
		a.metrics.RecordError(ErrorKind(err))
		return nil, err
	}

	key := CacheKey(in)
	result, cached, err := a.evaluate(ctx, key, in)
	if err != nil {
		a.metrics.RecordError(ErrorKind(err))
		return nil, err
	}

	out := &models.Assessment{
		ID:        a.newID(),
		CreatedAt: a.now(),
		Input:     in,
		Score:     result.Score,
		Advice:    result.Advice,
		Source:    source,
		Cached:    cached,
	}
	a.metrics.RecordPrediction(string(out.Score.RiskCategory), out.Score.Eligible, source)
	a.metrics.RecordRiskScore(out.Score.RiskScore)

	a.audit(ctx, out)
	return out, nil
}

// evaluate returns the scored result for in, from the cache when possible.
// Concurrent identical applications share one computation.
func (a *LoanAssessor) evaluate(ctx context.Context, key string, in models.ApplicationInput) (*models.Assessment, bool, error) {
	if a.cache != nil {
		hit, ok := a.cache.Get(ctx, key)
		a.metrics.RecordCacheResult(ok)
		if ok {
			return hit, true, nil
		}
	}

	v, err, _ := a.flight.Do(key, func() (interface{}, error) {
		// followers share this call; the leader's cancellation must not fail them
		ctx := context.WithoutCancel(ctx)
		scoreStart := time.Now()
		score, err := a.scorer.Predict(ctx, in)
		a.metrics.RecordLatency("predict", time.Since(scoreStart).Seconds())
		if err != nil {
			return nil, err
		}
		advice, err := a.advisor.Advise(score, in)
		if err != nil {
			return nil, err
		}
		res := &models.Assessment{Input: in, Score: score, Advice: advice}
		if a.cache != nil {
			if err := a.cache.Set(ctx, key, res); err != nil {
				a.log.Warn("assessment cache write failed", logger.Error(err))
				a.metrics.RecordError("cache_write")
			}
		}
		return res, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*models.Assessment), false, nil
}

// audit hands the decision to every sink in parallel. Sink failures are
// logged and counted but never returned.
func (a *LoanAssessor) audit(ctx context.Context, out *models.Assessment) {
	if len(a.sinks) == 0 {
		return
	}
	rec := models.NewDecisionRecord(out)

	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.auditTimeout)
	defer cancel()

	var g errgroup.Group
	for _, sink := range a.sinks {
		sink := sink
		g.Go(func() error {
			if err := sink.Write(actx, rec); err != nil {
				a.metrics.RecordError("audit_" + sink.Name())
				a.log.Error("decision audit failed",
					logger.String("sink", sink.Name()),
					logger.String("id", rec.ID),
					logger.Error(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Info exposes the fitted model description.
func (a *LoanAssessor) Info() models.ModelInfo {
	return a.scorer.Info()
}

// CacheKey is a stable hash of the six input fields.
func CacheKey(in models.ApplicationInput) string {
	parts := []string{
		strconv.FormatFloat(in.MonthlyIncome, 'g', -1, 64),
		strconv.FormatFloat(in.LoanAmount, 'g', -1, 64),
		strconv.Itoa(in.CreditScore),
		strconv.Itoa(in.ExistingLoans),
		strconv.FormatFloat(in.MonthlyExpenses, 'g', -1, 64),
		strconv.Itoa(in.EmploymentYears),
	}
	return cache.GenerateKey("assessment", cache.HashKey(strings.Join(parts, "|")))
}

// ErrorKind classifies an assessment error for metrics and HTTP mapping.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, models.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, models.ErrDivisionByZero):
		return "division_by_zero"
	case errors.Is(err, models.ErrModelNotReady):
		return "model_not_ready"
	default:
		return "internal"
	}
}
