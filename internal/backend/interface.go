package backend

import (
	"context"
	"time"

	"costbook/internal/rates"
	"costbook/internal/report"
	"costbook/internal/services"
	"costbook/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Backend is the application context: the one store and the one rate table,
// plus everything built on them. Handlers receive it explicitly.
type Backend struct {
	Store     *storage.Store
	Rates     *rates.Book
	Fetcher   *rates.Fetcher
	Refresher *rates.Refresher
	Reports   *report.Builder
	Costs     *services.CostService
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Backend, error)
}

// Config holds configuration for backend creation
type Config struct {
	DBDir     string
	DBName    string
	DBVersion int
	// Now stamps new costs; nil means time.Now.
	Now func() time.Time

	RatesURL             string
	RatesPolicy          rates.Policy
	RatesRefreshInterval time.Duration
	RatesFetchTimeout    time.Duration

	// AMQP is optional; empty URL disables cost events.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}
