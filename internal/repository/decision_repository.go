package repository

import (
	"context"
	"fmt"
	"time"

	"LoanPredictor/internal/domain/models"
	"LoanPredictor/internal/domain/repository"
	pkgch "LoanPredictor/pkg/clickhouse"
)

const decisionColumns = "id, created_at, source, monthly_income, loan_amount, credit_score, existing_loans, " +
	"monthly_expenses, employment_years, eligible, confidence, risk_score, risk_category, " +
	"monthly_emi, disposable_income, debt_to_income"

// ClickHouseDecisionStore keeps the decision history in a MergeTree table.
type ClickHouseDecisionStore struct {
	client   *pkgch.Client
	database string
	table    string
}

// NewClickHouseDecisionStore creates the store; call Init before use.
func NewClickHouseDecisionStore(client *pkgch.Client, database, table string) *ClickHouseDecisionStore {
	return &ClickHouseDecisionStore{client: client, database: database, table: table}
}

func (s *ClickHouseDecisionStore) Name() string { return "clickhouse" }

func (s *ClickHouseDecisionStore) qualified() string {
	return fmt.Sprintf("%s.%s", s.database, s.table)
}

// DecisionSchema returns the idempotent DDL for the decisions table.
func DecisionSchema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
	id                String,
	created_at        DateTime64(3, 'UTC'),
	source            LowCardinality(String),
	monthly_income    Float64,
	loan_amount       Float64,
	credit_score      Int32,
	existing_loans    Int32,
	monthly_expenses  Float64,
	employment_years  Int32,
	eligible          Bool,
	confidence        Float64,
	risk_score        Float64,
	risk_category     LowCardinality(String),
	monthly_emi       Float64,
	disposable_income Float64,
	debt_to_income    Float64
) ENGINE = MergeTree
PARTITION BY toYYYYMM(created_at)
ORDER BY (created_at, id)`, database, table),
	}
}

func (s *ClickHouseDecisionStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, DecisionSchema(s.database, s.table))
}

func (s *ClickHouseDecisionStore) Write(ctx context.Context, r models.DecisionRecord) error {
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.qualified(), decisionColumns)
	_, err := s.client.DB().ExecContext(ctx, q,
		r.ID,
		r.CreatedAt,
		r.Source,
		r.MonthlyIncome,
		r.LoanAmount,
		int32(r.CreditScore),
		int32(r.ExistingLoans),
		r.MonthlyExpenses,
		int32(r.EmploymentYears),
		r.Eligible,
		r.Confidence,
		r.RiskScore,
		r.RiskCategory,
		r.MonthlyEMI,
		r.DisposableIncome,
		r.DebtToIncome,
	)
	if err != nil {
		return fmt.Errorf("insert decision %s: %w", r.ID, err)
	}
	return nil
}

// List returns decisions in [from, to], newest first.
func (s *ClickHouseDecisionStore) List(ctx context.Context, from, to time.Time, limit int) ([]models.DecisionRecord, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE created_at >= ? AND created_at <= ? ORDER BY created_at DESC LIMIT ?", decisionColumns, s.qualified())
	rows, err := s.client.DB().QueryContext(ctx, q, from.UTC(), to.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	out := make([]models.DecisionRecord, 0, limit)
	for rows.Next() {
		var (
			r                         models.DecisionRecord
			credit, loans, employment int32
		)
		if err := rows.Scan(
			&r.ID,
			&r.CreatedAt,
			&r.Source,
			&r.MonthlyIncome,
			&r.LoanAmount,
			&credit,
			&loans,
			&r.MonthlyExpenses,
			&employment,
			&r.Eligible,
			&r.Confidence,
			&r.RiskScore,
			&r.RiskCategory,
			&r.MonthlyEMI,
			&r.DisposableIncome,
			&r.DebtToIncome,
		); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		r.CreditScore, r.ExistingLoans, r.EmploymentYears = int(credit), int(loans), int(employment)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ClickHouseDecisionStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

// Close is a no-op; the pool belongs to the clickhouse client.
func (s *ClickHouseDecisionStore) Close() error {
	return nil
}

// Publisher is the slice of the Kafka producer the decision publisher needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
}

// KafkaDecisionPublisher emits every decision to a topic keyed by its id.
type KafkaDecisionPublisher struct {
	producer Publisher
	topic    string
}

// NewKafkaDecisionPublisher creates a Kafka decision sink.
func NewKafkaDecisionPublisher(producer Publisher, topic string) *KafkaDecisionPublisher {
	return &KafkaDecisionPublisher{producer: producer, topic: topic}
}

func (p *KafkaDecisionPublisher) Name() string { return "kafka" }

func (p *KafkaDecisionPublisher) Write(ctx context.Context, r models.DecisionRecord) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(r.ID), r); err != nil {
		return fmt.Errorf("publish decision %s: %w", r.ID, err)
	}
	return nil
}

// Close is a no-op; the producer is shared and closed by the app.
func (p *KafkaDecisionPublisher) Close() error {
	return nil
}

var (
	_ repository.DecisionStore = (*ClickHouseDecisionStore)(nil)
	_ repository.DecisionSink  = (*KafkaDecisionPublisher)(nil)
)
