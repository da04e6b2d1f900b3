package di

import (
	"context"
	"fmt"
	"time"

	"LoanPredictor/internal/domain/repository"
	domsvc "LoanPredictor/internal/domain/service"
	"LoanPredictor/internal/handler/api"
	"LoanPredictor/internal/handler/ws"
	internalrepo "LoanPredictor/internal/repository"
	"LoanPredictor/internal/service/ratelimit"
	"LoanPredictor/internal/services/advisor"
	"LoanPredictor/internal/services/analytics"
	"LoanPredictor/internal/services/scoring"
	"LoanPredictor/internal/usecase"
	"LoanPredictor/pkg/cache"
	pkgch "LoanPredictor/pkg/clickhouse"
	"LoanPredictor/pkg/config"
	xhttp "LoanPredictor/pkg/http"
	pkgkafka "LoanPredictor/pkg/kafka"
	"LoanPredictor/pkg/logger"
	"LoanPredictor/pkg/metrics"
	"LoanPredictor/pkg/server"
)

const (
	connectTimeout = 10 * time.Second
	trainTimeout   = 30 * time.Second

	maxApplicationBytes = 64 << 10
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(logger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry
// so /metrics exposes it next to the HTTP and Kafka collectors.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New(nil)
}

// ProvideModelConfig maps the YAML model section onto the scoring config.
func ProvideModelConfig(cfg *config.Config) *scoring.ModelConfig {
	mc := scoring.DefaultModelConfig()
	mc.Classifier = cfg.Model.Classifier
	mc.Trees = cfg.Model.Trees
	mc.Seed = cfg.Model.Seed
	mc.EligibleThreshold = cfg.Model.EligibleThreshold
	mc.LowRiskBelow = cfg.Model.Risk.LowBelow
	mc.MediumRiskBelow = cfg.Model.Risk.MediumBelow
	mc.Weights = scoring.RiskWeights{
		DTI:           cfg.Model.Risk.WeightDTI,
		CreditRisk:    cfg.Model.Risk.WeightCreditRisk,
		LoanToIncome:  cfg.Model.Risk.WeightLoanToIncome,
		ExistingLoans: cfg.Model.Risk.WeightExistingLoans,
		LoanDTIFactor: cfg.Model.Risk.LoanDTIFactor,
		CreditCeiling: cfg.Model.Risk.CreditCeiling,
	}
	return mc
}

// ProvideClassifier picks the classifier implementation by name.
func ProvideClassifier(cfg *config.Config) (domsvc.Classifier, error) {
	switch cfg.Model.Classifier {
	case scoring.ClassifierForest:
		return scoring.NewRandomForest(cfg.Model.Trees, cfg.Model.Seed), nil
	case scoring.ClassifierLogistic:
		return scoring.NewLogisticClassifier(), nil
	case scoring.ClassifierRemote:
		return analytics.NewRemoteClassifier(cfg.Model.Remote.URL, cfg.Model.Remote.Timeout, cfg.Model.Remote.Retries), nil
	default:
		return nil, fmt.Errorf("unknown classifier %q", cfg.Model.Classifier)
	}
}

// ProvideScorer trains the scorer once at startup.
func ProvideScorer(mc *scoring.ModelConfig, clf domsvc.Classifier, l *logger.Logger) (*scoring.Scorer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), trainTimeout)
	defer cancel()

	start := time.Now()
	s, err := scoring.Train(ctx, mc, clf)
	if err != nil {
		return nil, fmt.Errorf("train model: %w", err)
	}
	l.Info("model trained",
		logger.String("classifier", clf.Name()),
		logger.Int("examples", len(mc.Examples)),
		logger.Any("feature_means", s.Info().Means),
		logger.Duration("took", time.Since(start)),
	)
	return s, nil
}

// ProvideAdvisor creates the affordability advisor.
func ProvideAdvisor(cfg *config.Config) *advisor.Advisor {
	rules := advisor.DefaultTipRules
	rules.LoanDTIFactor = cfg.Model.Risk.LoanDTIFactor
	return advisor.New(advisor.Terms{
		AnnualRatePercent: cfg.Model.Loan.AnnualRatePercent,
		Years:             cfg.Model.Loan.Years,
	}, rules)
}

// ProvideCache builds the configured cache backend; nil when caching is off.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	redisOpts := func() []cache.RedisOption {
		return []cache.RedisOption{
			cache.WithRedisAddr(cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
			cache.WithRedisAuth(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
			cache.WithRedisPool(10, 2, 30*time.Second),
		}
	}

	switch cfg.Cache.Type {
	case "none":
		return nil, nil
	case "memory":
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.MaxSize),
			cache.WithMemoryTTL(cfg.Cache.TTL),
		), nil
	case "redis", "layered":
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		rc, err := cache.NewRedisCache(ctx, redisOpts()...)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		if cfg.Cache.Type == "redis" {
			return rc, nil
		}
		return cache.NewLayeredCache(rc, cache.WithLayeredMemory(cfg.Cache.MaxSize, cfg.Cache.TTL)), nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Cache.Type)
	}
}

// ProvideAssessmentCache adapts the cache backend to the use case.
func ProvideAssessmentCache(svc cache.Service, cfg *config.Config, l *logger.Logger) repository.AssessmentCache {
	if svc == nil {
		return nil
	}
	return internalrepo.NewAssessmentCache(svc, cfg.Cache.TTL, l)
}

// ProvideKafkaProducer creates a Kafka producer; nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideClickHouseClient creates a ClickHouse client; nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideDecisionStore creates the decision history table; nil without
// ClickHouse.
func ProvideDecisionStore(client *pkgch.Client, cfg *config.Config) (repository.DecisionStore, error) {
	if client == nil {
		return nil, nil
	}
	store := internalrepo.NewClickHouseDecisionStore(client, cfg.ClickHouse.Database, cfg.ClickHouse.Table)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideDecisionSinks collects every enabled audit sink.
func ProvideDecisionSinks(producer *pkgkafka.Producer, store repository.DecisionStore, cfg *config.Config) []repository.DecisionSink {
	var sinks []repository.DecisionSink
	if producer != nil && cfg.Kafka.DecisionsTopic != "" {
		sinks = append(sinks, internalrepo.NewKafkaDecisionPublisher(producer, cfg.Kafka.DecisionsTopic))
	}
	if store != nil {
		sinks = append(sinks, store)
	}
	return sinks
}

// ProvideLoanAssessor creates the assessment use case.
func ProvideLoanAssessor(
	scorer *scoring.Scorer,
	adv *advisor.Advisor,
	c repository.AssessmentCache,
	sinks []repository.DecisionSink,
	m *metrics.Recorder,
	l *logger.Logger,
) *usecase.LoanAssessor {
	return usecase.NewLoanAssessor(scorer, adv, c, sinks, m, l)
}

// ProvideRateLimiter creates the per-client limiter; nil when disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New()
}

// ProvideHTTPHandlers registers the REST and WebSocket routes.
func ProvideHTTPHandlers(
	cfg *config.Config,
	l *logger.Logger,
	assessor *usecase.LoanAssessor,
	store repository.DecisionStore,
	limiter *ratelimit.Limiter,
) []xhttp.Handler {
	limit := api.RateLimit{Capacity: cfg.RateLimit.Capacity, RefillPerSec: cfg.RateLimit.RefillPerSec}
	if limiter != nil {
		limit.Limiter = limiter
	}
	return []xhttp.Handler{
		api.NewPredictEchoHandler(l, assessor, store, limit),
		ws.NewPredictWSHandler(l, assessor),
	}
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, l *logger.Logger, handlers []xhttp.Handler) *xhttp.Server {
	return xhttp.NewServer(l, handlers,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(!cfg.Server.DisableCORS),
		xhttp.WithMetrics(cfg.Metrics.Path, cfg.Metrics.SlowThreshold),
	)
}

// ProvideKafkaConsumer creates the application intake consumer; nil unless
// an applications topic is configured.
func ProvideKafkaConsumer(cfg *config.Config, l *logger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.ApplicationsTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(
		pkgkafka.PayloadLimitHook{MaxBytes: maxApplicationBytes},
		pkgkafka.TracingHook{Log: l},
	))
	l.Info("kafka intake enabled",
		logger.Strings("brokers", cfg.Kafka.Brokers),
		logger.String("topic", cfg.Kafka.ApplicationsTopic),
		logger.String("dlq", cfg.Kafka.Consumer.DLQTopic),
	)
	return consumer, nil
}

// ProvideApplicationsHandler scores applications from the intake topic.
func ProvideApplicationsHandler(cfg *config.Config, assessor *usecase.LoanAssessor, m *metrics.Recorder, l *logger.Logger) *usecase.KafkaApplicationsHandler {
	return usecase.NewKafkaApplicationsHandler(cfg.Kafka.ApplicationsTopic, assessor, m, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	apps *usecase.KafkaApplicationsHandler,
	producer *pkgkafka.Producer,
	chClient *pkgch.Client,
	cacheSvc cache.Service,
	limiter *ratelimit.Limiter,
) *server.App {
	app := server.New(cfg, l, httpServer)
	if consumer != nil {
		consumer.RegisterHandler(apps)
		app.SetConsumer(consumer)
	}
	if producer != nil {
		app.SetProducer(producer)
		if cfg.Kafka.LogTopic != "" {
			l.AddCollector(&logger.CollectionConfig{
				TimeInterval:   30 * time.Second,
				CountThreshold: 100,
				Topic:          cfg.Kafka.LogTopic,
				Publisher:      producer,
			})
		}
	}
	if chClient != nil {
		app.AddCloser("clickhouse", chClient)
	}
	if cacheSvc != nil {
		app.AddCloser("cache", cacheSvc)
	}
	if limiter != nil {
		app.SetLimiter(limiter)
	}
	return app
}
