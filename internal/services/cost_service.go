package services

import (
	"context"
	"fmt"

	"costbook/internal/core"
	applog "costbook/internal/log"
)

// CostStore is the persistence the service drives.
type CostStore interface {
	CreateCost(ctx context.Context, in core.CostInput) (core.CostRecord, error)
	GetCostsForPeriod(ctx context.Context, year, month int) ([]core.CostRecord, error)
	GetAllCosts(ctx context.Context) ([]core.CostRecord, error)
	ClearAll(ctx context.Context) error
	Close() error
}

// EventPublisher announces stored costs to other processes.
type EventPublisher interface {
	PublishCostCreated(ctx context.Context, rec core.CostRecord) error
	Close() error
}

// CostService orchestrates cost operations across the store and AMQP.
type CostService struct {
	store     CostStore
	publisher EventPublisher
	logger    *applog.Logger
}

// NewCostService wires store and an optional publisher; pass nil to disable events.
func NewCostService(store CostStore, publisher EventPublisher) *CostService {
	return &CostService{
		store:     store,
		publisher: publisher,
		logger:    applog.Component(applog.ComponentCosts),
	}
}

// AddCost stores in and then publishes its creation event. Publishing is
// best effort: the cost is already saved when it fails.
func (s *CostService) AddCost(ctx context.Context, in core.CostInput) (core.CostInput, error) {
	rec, err := s.store.CreateCost(ctx, in)
	if err != nil {
		return core.CostInput{}, fmt.Errorf("add cost: %w", err)
	}

	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not configured, skipping cost event", applog.FieldCostID, rec.ID)
		return rec.Input(), nil
	}
	if err := s.publisher.PublishCostCreated(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish cost event",
			applog.FieldCostID, rec.ID,
			applog.FieldError, err)
	}
	return rec.Input(), nil
}

func (s *CostService) GetCostsForPeriod(ctx context.Context, year, month int) ([]core.CostRecord, error) {
	costs, err := s.store.GetCostsForPeriod(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("get costs for period: %w", err)
	}
	return costs, nil
}

func (s *CostService) GetAllCosts(ctx context.Context) ([]core.CostRecord, error) {
	costs, err := s.store.GetAllCosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("get all costs: %w", err)
	}
	return costs, nil
}

// ClearAll deletes every stored cost. Exported sheet rows are left alone.
func (s *CostService) ClearAll(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear costs: %w", err)
	}
	return nil
}

// Close closes both storage and AMQP connections
func (s *CostService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close cost service: %v", errs)
	}

	return nil
}
