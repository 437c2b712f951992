package memory

import (
	"context"
	"fmt"
	"sync"

	"costbook/internal/core"
	ports "costbook/internal/sheets"
)

var _ ports.CostExporter = (*Exporter)(nil)

// Exporter keeps exported rows in memory. Used by tests and when no
// spreadsheet is configured.
type Exporter struct {
	mu   sync.Mutex
	rows [][]any
	ids  []int64
}

func New() *Exporter {
	return &Exporter{}
}

// AppendCost stores the row and returns a synthetic row reference.
func (e *Exporter) AppendCost(_ context.Context, rec core.CostRecord) (string, error) {
	if err := rec.Input().Validate(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = append(e.rows, ports.CostRow(rec))
	e.ids = append(e.ids, rec.ID)
	return fmt.Sprintf("mem:%d", len(e.rows)), nil
}

// Rows returns a copy of the exported rows in append order.
func (e *Exporter) Rows() [][]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]any, len(e.rows))
	for i, r := range e.rows {
		out[i] = append([]any(nil), r...)
	}
	return out
}

// IDs returns the ids of the exported costs in append order.
func (e *Exporter) IDs() []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int64(nil), e.ids...)
}
