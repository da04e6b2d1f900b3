package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"LoanPredictor/pkg/config"
	xhttp "LoanPredictor/pkg/http"
	pkgkafka "LoanPredictor/pkg/kafka"
	applogger "LoanPredictor/pkg/logger"
)

const limiterIdle = 10 * time.Minute

// Sweeper forgets idle rate-limit buckets.
type Sweeper interface {
	Sweep(idle time.Duration) int
}

type namedCloser struct {
	name string
	c    io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	consumer   *pkgkafka.Consumer
	producer   *pkgkafka.Producer
	limiter    Sweeper
	closers    []namedCloser

	signals chan os.Signal
}

// New creates a new App around the HTTP server; optional parts are attached
// with the setters before Run.
func New(cfg *config.Config, log *applogger.Logger, httpServer *xhttp.Server) *App {
	if log == nil {
		log = applogger.Nop()
	}
	return &App{cfg: cfg, log: log, httpServer: httpServer}
}

// SetConsumer attaches the Kafka application intake.
func (a *App) SetConsumer(c *pkgkafka.Consumer) { a.consumer = c }

// SetProducer attaches the shared Kafka producer, closed last.
func (a *App) SetProducer(p *pkgkafka.Producer) { a.producer = p }

// SetLimiter enables periodic sweeping of idle rate-limit buckets.
func (a *App) SetLimiter(l Sweeper) { a.limiter = l }

// AddCloser registers a resource closed during shutdown, in order.
func (a *App) AddCloser(name string, c io.Closer) {
	a.closers = append(a.closers, namedCloser{name: name, c: c})
}

// Run starts the application and blocks until interrupted or the HTTP
// listener fails.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.consumer != nil {
		if err := a.consumer.Start(); err != nil {
			return fmt.Errorf("kafka consumer: %w", err)
		}
	}
	if a.limiter != nil {
		go a.sweep(ctx)
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		_ = a.shutdown()
		return err
	}
	a.log.Info("loan predictor started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("classifier", a.cfg.Model.Classifier),
		applogger.String("cache", a.cfg.Cache.Type),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
		applogger.Bool("clickhouse", a.cfg.ClickHouse.Enabled),
	)

	if a.signals == nil {
		a.signals = make(chan os.Signal, 1)
		signal.Notify(a.signals, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(a.signals)
	}

	var runErr error
	select {
	case sig := <-a.signals:
		a.log.Info("shutdown signal received", applogger.String("signal", sig.String()))
	case err := <-a.httpServer.Errors():
		a.log.Error("http server failed", applogger.Error(err))
		runErr = err
	}

	cancel()
	if err := a.shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (a *App) sweep(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.limiter.Sweep(limiterIdle); n > 0 {
				a.log.Debug("rate limit buckets swept", applogger.Int("removed", n))
			}
		}
	}
}

// shutdown stops intake first, then drains outputs: HTTP, consumer, log
// collector, producer and finally the stores.
func (a *App) shutdown() error {
	a.log.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		keep(err)
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
			keep(err)
		}
	}

	// flushes pending aggregated errors through the producer
	a.log.RemoveCollector()

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
			keep(err)
		}
	}

	for _, nc := range a.closers {
		if err := nc.c.Close(); err != nil {
			a.log.Warn("close error", applogger.String("resource", nc.name), applogger.Error(err))
			keep(err)
		}
	}

	a.log.Info("shutdown complete")
	return firstErr
}
