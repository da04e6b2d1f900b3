package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"LoanPredictor/internal/domain/models"
	domrepo "LoanPredictor/internal/domain/repository"
	pkgkafka "LoanPredictor/pkg/kafka"
	"LoanPredictor/pkg/logger"

	"github.com/creasty/defaults"
)

// KafkaApplicationsHandler scores applications arriving on a Kafka topic.
// The resulting decisions reach the audit sinks through the assessor.
type KafkaApplicationsHandler struct {
	topic    string
	assessor *LoanAssessor
	metrics  domrepo.Metrics
	log      *logger.Logger
}

func NewKafkaApplicationsHandler(topic string, assessor *LoanAssessor, metrics domrepo.Metrics, log *logger.Logger) *KafkaApplicationsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &KafkaApplicationsHandler{topic: topic, assessor: assessor, metrics: metrics, log: log}
}

func (h *KafkaApplicationsHandler) Topic() string { return h.topic }

// incoming message schema: the POST /predict body
func (h *KafkaApplicationsHandler) Handle(ctx context.Context, b []byte) error {
	var req models.PredictRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode application: %v: %w", err, pkgkafka.ErrPermanent)
	}
	if err := defaults.Set(&req); err != nil {
		return fmt.Errorf("application defaults: %v: %w", err, pkgkafka.ErrPermanent)
	}

	a, err := h.assessor.AssessFrom(ctx, req.ToInput(), models.SourceKafka)
	if err != nil {
		// bad applications will not get better on retry
		if errors.Is(err, models.ErrInvalidInput) || errors.Is(err, models.ErrDivisionByZero) {
			h.log.Warn("kafka application rejected", logger.String("topic", h.topic), logger.Error(err))
			return fmt.Errorf("%v: %w", err, pkgkafka.ErrPermanent)
		}
		return err
	}

	h.log.Debug("kafka application scored",
		logger.String("id", a.ID),
		logger.String("risk_category", string(a.Score.RiskCategory)),
		logger.Float64("risk_score", a.Score.RiskScore),
		logger.Bool("eligible", a.Score.Eligible),
	)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaApplicationsHandler)(nil)
