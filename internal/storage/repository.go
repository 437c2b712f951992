package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"costbook/internal/core"
	applog "costbook/internal/log"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// Options identifies the database to open.
type Options struct {
	Dir     string // directory holding <Name>.db
	Name    string
	Version int
	// Now stamps new records; defaults to time.Now.
	Now func() time.Time
}

// Store owns the persisted cost records. A nil or closed Store answers every
// operation with core.ErrNotReady.
type Store struct {
	mu      sync.RWMutex
	db      *sql.DB
	queries *Queries
	path    string
	now     func() time.Time
	logger  *applog.Logger
}

// Open opens (creating if needed) the database and migrates it to opts.Version.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if !slices.Contains(sql.Drivers(), driverName) {
		return nil, core.ErrStorageUnavailable
	}
	if opts.Version < 1 {
		return nil, fmt.Errorf("%w: schema version must be positive, got %d", core.ErrOpen, opts.Version)
	}
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: database name is empty", core.ErrOpen)
	}

	dbPath := filepath.Join(opts.Dir, name+".db")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: create db directory: %v", core.ErrOpen, err)
	}

	db, err := sql.Open(driverName, dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite database: %v", core.ErrOpen, err)
	}
	// One connection: SQLite serializes writers anyway and this keeps
	// concurrent AddCost calls from racing into SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %v", core.ErrOpen, err)
	}

	if err := RunMigrations(dbPath, uint(opts.Version)); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", core.ErrOpen, err)
	}

	s := newStore(db, opts.Now)
	s.path = dbPath
	s.logger.InfoContext(ctx, "Cost store opened",
		applog.FieldDBPath, dbPath,
		"schema_version", opts.Version)
	return s, nil
}

func newStore(db *sql.DB, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		db:      db,
		queries: New(db),
		now:     now,
		logger:  applog.Component(applog.ComponentStorage),
	}
}

// Path returns the database file path.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close releases the database. Later operations fail with core.ErrNotReady.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.queries = nil
	return err
}

// acquire read-locks the store for one operation. Callers must call the
// returned release func.
func (s *Store) acquire() (*Queries, func(), error) {
	if s == nil {
		return nil, func() {}, core.ErrNotReady
	}
	s.mu.RLock()
	if s.queries == nil {
		s.mu.RUnlock()
		return nil, func() {}, core.ErrNotReady
	}
	return s.queries, s.mu.RUnlock, nil
}

// Ping checks that the store is open and the engine answers.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil {
		return core.ErrNotReady
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return core.ErrNotReady
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStorageRead, err)
	}
	return nil
}

// AddCost validates in, stamps it with the current date and persists it.
// It returns the caller-facing subset of the stored record.
func (s *Store) AddCost(ctx context.Context, in core.CostInput) (core.CostInput, error) {
	rec, err := s.CreateCost(ctx, in)
	if err != nil {
		return core.CostInput{}, err
	}
	return rec.Input(), nil
}

// CreateCost is AddCost returning the full stored record, id and date included.
func (s *Store) CreateCost(ctx context.Context, in core.CostInput) (core.CostRecord, error) {
	q, release, err := s.acquire()
	if err != nil {
		return core.CostRecord{}, err
	}
	defer release()

	if err := in.Validate(); err != nil {
		return core.CostRecord{}, err
	}

	rec := core.NewCostRecord(in, s.now())
	id, err := q.CreateCost(ctx, CreateCostParams{
		Sum:         rec.Sum,
		Currency:    string(rec.Currency),
		Category:    rec.Category,
		Description: rec.Description,
		Date:        rec.Date,
		Year:        int64(rec.Year),
		Month:       int64(rec.Month),
		Day:         int64(rec.Day),
	})
	if err != nil {
		return core.CostRecord{}, fmt.Errorf("%w: insert cost: %v", core.ErrStorageWrite, err)
	}
	rec.ID = id

	s.logger.InfoContext(ctx, "Cost saved",
		applog.FieldCostID, rec.ID,
		applog.FieldSum, rec.Sum,
		applog.FieldCurrency, rec.Currency,
		applog.FieldCategory, rec.Category,
		applog.FieldYear, rec.Year,
		applog.FieldMonth, rec.Month)

	return rec, nil
}

// GetCostsForPeriod returns every record of year/month ordered by id.
// No conversion is applied.
func (s *Store) GetCostsForPeriod(ctx context.Context, year, month int) ([]core.CostRecord, error) {
	q, release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	if err := core.ValidateYear(year); err != nil {
		return nil, err
	}
	if err := core.ValidateMonth(month); err != nil {
		return nil, err
	}

	rows, err := q.ListCostsByPeriod(ctx, int64(year), int64(month))
	if err != nil {
		return nil, fmt.Errorf("%w: list costs for %d-%02d: %v", core.ErrStorageRead, year, month, err)
	}
	return toRecords(rows), nil
}

// GetAllCosts returns every record ordered by id.
func (s *Store) GetAllCosts(ctx context.Context) ([]core.CostRecord, error) {
	q, release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := q.ListCosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list costs: %v", core.ErrStorageRead, err)
	}
	return toRecords(rows), nil
}

// ClearAll deletes every record. Ids are never handed out again.
func (s *Store) ClearAll(ctx context.Context) error {
	q, release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()

	n, err := q.DeleteAllCosts(ctx)
	if err != nil {
		return fmt.Errorf("%w: delete costs: %v", core.ErrStorageWrite, err)
	}
	s.logger.WarnContext(ctx, "All costs cleared", "deleted", n)
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	q, release, err := s.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	n, err := q.CountCosts(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: count costs: %v", core.ErrStorageRead, err)
	}
	return n, nil
}

func toRecords(rows []Cost) []core.CostRecord {
	out := make([]core.CostRecord, len(rows))
	for i, c := range rows {
		out[i] = core.CostRecord{
			ID:          c.ID,
			Sum:         c.Sum,
			Currency:    core.Currency(c.Currency),
			Category:    c.Category,
			Description: c.Description,
			Date:        c.Date,
			Year:        int(c.Year),
			Month:       int(c.Month),
			Day:         int(c.Day),
		}
	}
	return out
}
