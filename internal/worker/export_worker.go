package worker

import (
	"context"
	"fmt"
	"time"

	"costbook/internal/amqp"
	"costbook/internal/cache"
	"costbook/internal/core"
	applog "costbook/internal/log"
	"costbook/internal/sheets"
)

// Redeliveries are remembered for this long, up to maxRemembered ids.
const (
	maxRemembered = 10000
	rememberFor   = 24 * time.Hour
)

// ExportWorker copies cost events into a spreadsheet.
type ExportWorker struct {
	exporter sheets.CostExporter
	logger   *applog.Logger
	// exported maps cost id to the row reference it was written to.
	exported *cache.LRU[int64, string]
}

func NewExportWorker(exporter sheets.CostExporter) *ExportWorker {
	return &ExportWorker{
		exporter: exporter,
		logger:   applog.Component(applog.ComponentWorker),
		exported: cache.NewLRU[int64, string](maxRemembered, rememberFor),
	}
}

// HandleCostCreated appends the cost carried by msg. A message redelivered
// after a successful export is acknowledged without writing a second row.
func (w *ExportWorker) HandleCostCreated(ctx context.Context, msg *amqp.CostCreatedMessage) error {
	if ref, ok := w.exported.Get(msg.ID); ok {
		w.logger.InfoContext(ctx, "Cost already exported, skipping",
			applog.FieldCostID, msg.ID,
			"sheets_ref", ref)
		return nil
	}

	rec := core.CostRecord{
		ID:          msg.ID,
		Sum:         msg.Sum,
		Currency:    msg.Currency,
		Category:    msg.Category,
		Description: msg.Description,
		Year:        msg.Year,
		Month:       msg.Month,
		Day:         msg.Day,
	}

	ref, err := w.exporter.AppendCost(ctx, rec)
	if err != nil {
		return fmt.Errorf("export cost %d: %w", msg.ID, err)
	}
	w.exported.Set(msg.ID, ref)

	w.logger.InfoContext(ctx, "Successfully exported cost",
		applog.FieldOperation, applog.OpExport,
		applog.FieldCostID, msg.ID,
		"sheets_ref", ref,
		applog.FieldSum, core.FormatAmount(msg.Sum),
		applog.FieldCurrency, msg.Currency)
	return nil
}
