package memory

import (
	"context"
	"testing"

	"costbook/internal/core"
)

func TestExporterAppendCost(t *testing.T) {
	e := New()

	ref, err := e.AppendCost(context.Background(), core.CostRecord{
		ID: 4, Sum: 3.5, Currency: core.ILS, Category: "Coffee", Description: "Espresso", Year: 2024, Month: 2, Day: 9,
	})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	rows := e.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	want := []any{2, 9, "Espresso", "3.50", "ILS", "Coffee"}
	for i, v := range want {
		if rows[0][i] != v {
			t.Errorf("column %d = %v, want %v", i, rows[0][i], v)
		}
	}
	if ids := e.IDs(); len(ids) != 1 || ids[0] != 4 {
		t.Errorf("unexpected ids %v", ids)
	}
}

func TestExporterRejectsInvalidCost(t *testing.T) {
	e := New()
	if _, err := e.AppendCost(context.Background(), core.CostRecord{Sum: 0, Currency: core.USD, Category: "c", Description: "d"}); err == nil {
		t.Fatal("expected validation error")
	}
	if len(e.Rows()) != 0 {
		t.Fatal("invalid costs must not be exported")
	}
}
