package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DBTX is the subset of *sql.DB the queries need.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Cost mirrors a row of the costs table.
type Cost struct {
	ID          int64
	Sum         float64
	Currency    string
	Category    string
	Description string
	Date        time.Time
	Year        int64
	Month       int64
	Day         int64
}

const createCost = `INSERT INTO costs (sum, currency, category, description, date, year, month, day)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

type CreateCostParams struct {
	Sum         float64
	Currency    string
	Category    string
	Description string
	Date        time.Time
	Year        int64
	Month       int64
	Day         int64
}

func (q *Queries) CreateCost(ctx context.Context, arg CreateCostParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createCost,
		arg.Sum,
		arg.Currency,
		arg.Category,
		arg.Description,
		arg.Date.Format(time.RFC3339Nano),
		arg.Year,
		arg.Month,
		arg.Day,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const listCostsByPeriod = `SELECT id, sum, currency, category, description, date, year, month, day
FROM costs
WHERE year = ? AND month = ?
ORDER BY id ASC`

func (q *Queries) ListCostsByPeriod(ctx context.Context, year, month int64) ([]Cost, error) {
	rows, err := q.db.QueryContext(ctx, listCostsByPeriod, year, month)
	if err != nil {
		return nil, err
	}
	return scanCosts(rows)
}

const listCosts = `SELECT id, sum, currency, category, description, date, year, month, day
FROM costs
ORDER BY id ASC`

func (q *Queries) ListCosts(ctx context.Context) ([]Cost, error) {
	rows, err := q.db.QueryContext(ctx, listCosts)
	if err != nil {
		return nil, err
	}
	return scanCosts(rows)
}

const deleteAllCosts = `DELETE FROM costs`

func (q *Queries) DeleteAllCosts(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteAllCosts)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countCosts = `SELECT COUNT(*) FROM costs`

func (q *Queries) CountCosts(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countCosts).Scan(&n)
	return n, err
}

func scanCosts(rows *sql.Rows) ([]Cost, error) {
	defer rows.Close()
	items := []Cost{}
	for rows.Next() {
		var (
			c    Cost
			date string
		)
		if err := rows.Scan(
			&c.ID,
			&c.Sum,
			&c.Currency,
			&c.Category,
			&c.Description,
			&date,
			&c.Year,
			&c.Month,
			&c.Day,
		); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, date)
		if err != nil {
			return nil, fmt.Errorf("parse date of cost %d: %w", c.ID, err)
		}
		c.Date = t
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
