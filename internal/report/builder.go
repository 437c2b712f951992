package report

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"costbook/internal/core"
	applog "costbook/internal/log"
	"costbook/internal/rates"
)

// CostLister is the read side of the cost store.
type CostLister interface {
	GetCostsForPeriod(ctx context.Context, year, month int) ([]core.CostRecord, error)
}

// RateProvider yields the table a report converts with.
type RateProvider interface {
	CurrentRates(ctx context.Context) rates.Table
}

// Builder turns stored costs into currency-normalized summaries. Reports are
// computed on every call and never cached.
type Builder struct {
	costs  CostLister
	rates  RateProvider
	logger *applog.Logger
}

func NewBuilder(costs CostLister, rp RateProvider) *Builder {
	return &Builder{
		costs:  costs,
		rates:  rp,
		logger: applog.Component(applog.ComponentReport),
	}
}

// BuildReport converts every cost of year/month into target and totals them.
func (b *Builder) BuildReport(ctx context.Context, year, month int, target core.Currency) (core.Report, error) {
	if !target.Valid() {
		return core.Report{}, core.NewValidationError("currency", "must be one of USD, ILS, GBP, EURO")
	}
	table := b.rates.CurrentRates(ctx)
	return b.build(ctx, year, month, target, table)
}

func (b *Builder) build(ctx context.Context, year, month int, target core.Currency, table rates.Table) (core.Report, error) {
	records, err := b.costs.GetCostsForPeriod(ctx, year, month)
	if err != nil {
		return core.Report{}, fmt.Errorf("build report %d-%02d: %w", year, month, err)
	}

	rep := core.Report{
		Year:  year,
		Month: month,
		Costs: make([]core.LineItem, 0, len(records)),
		Total: core.ReportTotal{Currency: target},
	}
	for _, rec := range records {
		sum := rates.Convert(rec.Sum, rec.Currency, target, table)
		rep.Costs = append(rep.Costs, core.LineItem{
			Sum:         sum,
			Currency:    target,
			Category:    rec.Category,
			Description: rec.Description,
			Day:         rec.Day,
		})
		rep.Total.Total += sum
	}

	b.logger.DebugContext(ctx, "Report built",
		applog.FieldOperation, applog.OpReport,
		applog.FieldYear, year,
		applog.FieldMonth, month,
		applog.FieldCurrency, target,
		"items", len(rep.Costs),
		"total", rep.Total.Total)
	return rep, nil
}

// ByCategory sums a report's line items per category in first-seen order.
func ByCategory(rep core.Report) core.CategoryBreakdown {
	out := core.CategoryBreakdown{
		Labels:   []string{},
		Values:   []float64{},
		Currency: rep.Total.Currency,
	}
	index := make(map[string]int)
	for _, item := range rep.Costs {
		i, ok := index[item.Category]
		if !ok {
			i = len(out.Labels)
			index[item.Category] = i
			out.Labels = append(out.Labels, item.Category)
			out.Values = append(out.Values, 0)
		}
		out.Values[i] += item.Sum
	}
	return out
}

// CategoryBreakdown builds the report for year/month and groups it by category.
func (b *Builder) CategoryBreakdown(ctx context.Context, year, month int, target core.Currency) (core.CategoryBreakdown, error) {
	rep, err := b.BuildReport(ctx, year, month, target)
	if err != nil {
		return core.CategoryBreakdown{}, err
	}
	return ByCategory(rep), nil
}

const yearWorkers = 4

// YearOverview returns the report total of each month of year, January first.
// One rate table is used for all twelve months.
func (b *Builder) YearOverview(ctx context.Context, year int, target core.Currency) (core.YearOverview, error) {
	if !target.Valid() {
		return core.YearOverview{}, core.NewValidationError("currency", "must be one of USD, ILS, GBP, EURO")
	}
	if err := core.ValidateYear(year); err != nil {
		return core.YearOverview{}, err
	}
	table := b.rates.CurrentRates(ctx)

	months := make([]core.MonthTotal, 12)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(yearWorkers)
	for i := range months {
		month := i + 1
		g.Go(func() error {
			rep, err := b.build(gctx, year, month, target, table)
			if err != nil {
				return err
			}
			months[i] = core.MonthTotal{Month: month, Total: rep.Total.Total}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.YearOverview{}, fmt.Errorf("year overview %d: %w", year, err)
	}

	return core.YearOverview{Year: year, Currency: target, Months: months}, nil
}
