package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"costbook/internal/core"
)

type fakeStore struct {
	records  []core.CostRecord
	err      error
	closed   bool
	cleared  bool
	closeErr error
}

func (f *fakeStore) CreateCost(_ context.Context, in core.CostInput) (core.CostRecord, error) {
	if f.err != nil {
		return core.CostRecord{}, f.err
	}
	if err := in.Validate(); err != nil {
		return core.CostRecord{}, err
	}
	rec := core.NewCostRecord(in, time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC))
	rec.ID = int64(len(f.records) + 1)
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeStore) GetCostsForPeriod(context.Context, int, int) ([]core.CostRecord, error) {
	return f.records, f.err
}

func (f *fakeStore) GetAllCosts(context.Context) ([]core.CostRecord, error) {
	return f.records, f.err
}

func (f *fakeStore) ClearAll(context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.cleared = true
	f.records = nil
	return nil
}

func (f *fakeStore) Close() error {
	f.closed = true
	return f.closeErr
}

type fakePublisher struct {
	published []core.CostRecord
	err       error
	closed    bool
}

func (f *fakePublisher) PublishCostCreated(_ context.Context, rec core.CostRecord) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, rec)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

var lunch = core.CostInput{Sum: 25.5, Currency: core.USD, Category: "Food", Description: "Lunch"}

func TestCostService_AddCostPublishes(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := NewCostService(store, pub)

	got, err := svc.AddCost(context.Background(), lunch)
	if err != nil {
		t.Fatalf("AddCost: %v", err)
	}
	if got != lunch {
		t.Fatalf("got %+v, want %+v", got, lunch)
	}
	if len(pub.published) != 1 || pub.published[0].ID != 1 || pub.published[0].Day != 15 {
		t.Fatalf("unexpected published events: %+v", pub.published)
	}
}

func TestCostService_AddCostSurvivesPublishFailure(t *testing.T) {
	store := &fakeStore{}
	svc := NewCostService(store, &fakePublisher{err: errors.New("broker down")})

	if _, err := svc.AddCost(context.Background(), lunch); err != nil {
		t.Fatalf("publish failure must not fail AddCost: %v", err)
	}
	if len(store.records) != 1 {
		t.Fatalf("cost should be stored, got %d records", len(store.records))
	}
}

func TestCostService_AddCostWithoutPublisher(t *testing.T) {
	svc := NewCostService(&fakeStore{}, nil)
	if _, err := svc.AddCost(context.Background(), lunch); err != nil {
		t.Fatalf("AddCost: %v", err)
	}
}

func TestCostService_AddCostErrors(t *testing.T) {
	pub := &fakePublisher{}

	svc := NewCostService(&fakeStore{}, pub)
	_, err := svc.AddCost(context.Background(), core.CostInput{Sum: 0, Currency: core.USD, Category: "c", Description: "d"})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	svc = NewCostService(&fakeStore{err: core.ErrNotReady}, pub)
	_, err = svc.AddCost(context.Background(), lunch)
	if !errors.Is(err, core.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}

	if len(pub.published) != 0 {
		t.Fatal("failed adds must not publish")
	}
}

func TestCostService_ClearAll(t *testing.T) {
	store := &fakeStore{}
	svc := NewCostService(store, nil)
	svc.AddCost(context.Background(), lunch)

	if err := svc.ClearAll(context.Background()); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	all, err := svc.GetAllCosts(context.Background())
	if err != nil || len(all) != 0 {
		t.Fatalf("expected empty store, got %v (err=%v)", all, err)
	}
}

func TestCostService_Close(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		service := &CostService{}
		if err := service.Close(); err != nil {
			t.Fatalf("Close should not return error with nil components: %v", err)
		}
	})

	t.Run("closes both", func(t *testing.T) {
		store := &fakeStore{closeErr: errors.New("busy")}
		pub := &fakePublisher{}
		err := NewCostService(store, pub).Close()
		if err == nil {
			t.Fatal("expected store close error to surface")
		}
		if !store.closed || !pub.closed {
			t.Fatal("both store and publisher should be closed")
		}
	})
}
