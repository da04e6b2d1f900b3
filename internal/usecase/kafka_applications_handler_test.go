package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LoanPredictor/internal/domain/models"
	pkgkafka "LoanPredictor/pkg/kafka"
)

func TestKafkaApplicationsHandler(t *testing.T) {
	sink := &fakeSink{name: "kafka"}
	m := &fakeMetrics{}
	h := NewKafkaApplicationsHandler("loan.applications", newTestAssessor(&fakeScorer{}, nil, m, sink), m, nil)

	assert.Equal(t, "loan.applications", h.Topic())

	// credit_score missing: defaults to 300
	require.NoError(t, h.Handle(context.Background(), []byte(`{"monthly_income":1000,"loan_amount":5000}`)))
	require.Len(t, sink.recs, 1)
	assert.Equal(t, models.SourceKafka, sink.recs[0].Source)
	assert.Equal(t, 300, sink.recs[0].CreditScore)
}

func TestKafkaApplicationsHandler_PermanentFailures(t *testing.T) {
	m := &fakeMetrics{}
	h := NewKafkaApplicationsHandler("apps", newTestAssessor(&fakeScorer{}, nil, m), m, nil)

	err := h.Handle(context.Background(), []byte(`{"monthly_income":`))
	assert.ErrorIs(t, err, pkgkafka.ErrPermanent)

	err = h.Handle(context.Background(), []byte(`{"monthly_income":1000,"credit_score":950}`))
	assert.ErrorIs(t, err, pkgkafka.ErrPermanent)
	assert.Contains(t, m.errs, "consumer_unmarshal")
}

func TestKafkaApplicationsHandler_NumericForms(t *testing.T) {
	sink := &fakeSink{name: "kafka"}
	m := &fakeMetrics{}
	h := NewKafkaApplicationsHandler("apps", newTestAssessor(&fakeScorer{}, nil, m, sink), m, nil)

	require.NoError(t, h.Handle(context.Background(), []byte(`{"monthly_income":"1000","credit_score":720.0,"existing_loans":"1"}`)))
	require.Len(t, sink.recs, 1)
	assert.Equal(t, 1000.0, sink.recs[0].MonthlyIncome)
	assert.Equal(t, 720, sink.recs[0].CreditScore)
	assert.Equal(t, 1, sink.recs[0].ExistingLoans)

	for _, body := range []string{
		`{"monthly_income":1000,"credit_score":0}`,
		`{"monthly_income":1000,"credit_score":null}`,
	} {
		err := h.Handle(context.Background(), []byte(body))
		assert.ErrorIs(t, err, pkgkafka.ErrPermanent, body)
	}
	assert.Len(t, sink.recs, 1)
}

func TestKafkaApplicationsHandler_DivisionByZeroIsPermanent(t *testing.T) {
	m := &fakeMetrics{}
	h := NewKafkaApplicationsHandler("apps", newTestAssessor(&fakeScorer{err: models.ErrDivisionByZero}, nil, m), m, nil)

	err := h.Handle(context.Background(), []byte(`{"monthly_income":0}`))
	assert.ErrorIs(t, err, pkgkafka.ErrPermanent)
}

func TestKafkaApplicationsHandler_TransientFailureIsRetryable(t *testing.T) {
	m := &fakeMetrics{}
	h := NewKafkaApplicationsHandler("apps", newTestAssessor(&fakeScorer{err: models.ErrModelNotReady}, nil, m), m, nil)

	err := h.Handle(context.Background(), []byte(`{"monthly_income":1000}`))
	require.Error(t, err)
	assert.False(t, errors.Is(err, pkgkafka.ErrPermanent))
	assert.ErrorIs(t, err, models.ErrModelNotReady)
}
