//go:build wireinject
// +build wireinject

package di

import (
	"LoanPredictor/pkg/config"
	"LoanPredictor/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Model
		ProvideModelConfig,
		ProvideClassifier,
		ProvideScorer,
		ProvideAdvisor,

		// Infrastructure clients
		ProvideCache,
		ProvideKafkaProducer,
		ProvideClickHouseClient,

		// Repositories
		ProvideAssessmentCache,
		ProvideDecisionStore,
		ProvideDecisionSinks,

		// Use cases
		ProvideLoanAssessor,
		ProvideApplicationsHandler,

		// Transport
		ProvideRateLimiter,
		ProvideHTTPHandlers,
		ProvideHTTPServer,
		ProvideKafkaConsumer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
