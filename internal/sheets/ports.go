package sheets

import (
	"context"

	"costbook/internal/core"
)

// Ports for outbound adapters.
type (
	// CostExporter appends stored costs to an external spreadsheet.
	CostExporter interface {
		AppendCost(ctx context.Context, rec core.CostRecord) (rowRef string, err error)
	}
)

// Header names the exported columns, in order.
var Header = []any{"Month", "Day", "Description", "Sum", "Currency", "Category"}

// CostRow renders rec as a spreadsheet row matching Header.
// The sum is written with two decimals.
func CostRow(rec core.CostRecord) []any {
	return []any{
		rec.Month,
		rec.Day,
		rec.Description,
		core.FormatAmount(rec.Sum),
		string(rec.Currency),
		rec.Category,
	}
}
