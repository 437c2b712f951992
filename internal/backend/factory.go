package backend

import (
	"context"
	"errors"
	"fmt"

	"costbook/internal/amqp"
	applog "costbook/internal/log"
	"costbook/internal/rates"
	"costbook/internal/report"
	"costbook/internal/services"
	"costbook/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Component(applog.ComponentBackend)
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend opens the store and wires the rate table, reports and cost
// service around it. AMQP failures are logged and leave events disabled.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Backend, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backend config: %w", err)
	}

	store, err := storage.Open(ctx, storage.Options{
		Dir:     config.DBDir,
		Name:    config.DBName,
		Version: config.DBVersion,
		Now:     config.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cost store: %w", err)
	}

	book := rates.NewBook(config.RatesURL)
	fetcher := rates.NewFetcher(book, config.RatesFetchTimeout)
	refresher := rates.NewRefresher(fetcher, config.RatesPolicy, config.RatesRefreshInterval)

	var publisher services.EventPublisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without cost events", applog.FieldError, err)
		} else {
			publisher = client
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	costs := services.NewCostService(store, publisher)

	f.logger.Info("Initialized backend",
		applog.FieldDBPath, store.Path(),
		applog.FieldRatesURL, config.RatesURL,
		applog.FieldRatesPolicy, refresher.Policy(),
		"amqp_enabled", publisher != nil)

	return &Backend{
		Store:     store,
		Rates:     book,
		Fetcher:   fetcher,
		Refresher: refresher,
		Reports:   report.NewBuilder(store, refresher),
		Costs:     costs,
		Cleanup:   costs.Close,
	}, nil
}

// ErrNoBackend is returned by Close on a nil backend.
var ErrNoBackend = errors.New("backend not initialized")

// Close runs the backend's cleanup.
func (b *Backend) Close() error {
	if b == nil {
		return ErrNoBackend
	}
	if b.Cleanup == nil {
		return nil
	}
	return b.Cleanup()
}
