package rates

import (
	"math"
	"net/url"
	"strings"
	"sync"

	"costbook/internal/core"
)

// Table maps each supported currency to its value per 1 USD.
type Table struct {
	Rates     map[core.Currency]float64 `json:"rates"`
	SourceURL string                    `json:"source_url"`
}

// DefaultTable is the table in effect until a fetch or override replaces it.
func DefaultTable() Table {
	return Table{
		Rates: map[core.Currency]float64{
			core.USD:  1,
			core.GBP:  0.8,
			core.EURO: 0.85,
			core.ILS:  3.5,
		},
	}
}

// Rate returns the rate of c when it is present, positive and finite.
func (t Table) Rate(c core.Currency) (float64, bool) {
	r, ok := t.Rates[c]
	if !ok || !usableRate(r) {
		return 0, false
	}
	return r, true
}

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	out := Table{Rates: make(map[core.Currency]float64, len(t.Rates)), SourceURL: t.SourceURL}
	for c, r := range t.Rates {
		out.Rates[c] = r
	}
	return out
}

func usableRate(r float64) bool {
	return r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}

// Book holds the single in-memory rate table of the application.
// Readers always get a copy; writers swap the whole table.
type Book struct {
	mu    sync.RWMutex
	table Table
}

// NewBook starts from DefaultTable with the given source URL.
func NewBook(sourceURL string) *Book {
	t := DefaultTable()
	t.SourceURL = strings.TrimSpace(sourceURL)
	return &Book{table: t}
}

// Rates returns a copy of the current table.
func (b *Book) Rates() Table {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.Clone()
}

// SetRates overrides the table. Every supported currency must be present with a
// positive finite value and USD must be 1.
func (b *Book) SetRates(rates map[core.Currency]float64) error {
	next := make(map[core.Currency]float64, len(rates))
	for c, r := range rates {
		if !c.Valid() {
			return core.NewValidationError("rates", "unsupported currency "+string(c))
		}
		next[c] = r
	}
	for _, c := range core.Currencies() {
		r, ok := next[c]
		if !ok {
			return core.NewValidationError("rates", "missing rate for "+string(c))
		}
		if !usableRate(r) {
			return core.NewValidationError("rates", "rate for "+string(c)+" must be a positive number")
		}
	}
	if next[core.USD] != 1 {
		return core.NewValidationError("rates", "USD must be 1")
	}

	b.mu.Lock()
	b.table = Table{Rates: next, SourceURL: b.table.SourceURL}
	b.mu.Unlock()
	return nil
}

// URL returns the configured source URL, empty when fetching is disabled.
func (b *Book) URL() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.SourceURL
}

// SetURL changes the source URL used by the next refresh. An empty URL
// disables fetching.
func (b *Book) SetURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if err := ValidateSourceURL(raw); err != nil {
		return err
	}
	b.mu.Lock()
	b.table.SourceURL = raw
	b.mu.Unlock()
	return nil
}

// ValidateSourceURL accepts an empty string or an absolute http(s) URL.
func ValidateSourceURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return core.NewValidationError("url", "must be an absolute http or https URL")
	}
	return nil
}

// merge swaps in a table built from the current one with fetched overriding
// the matching currencies, and records sourceURL as the active source.
func (b *Book) merge(fetched map[core.Currency]float64, sourceURL string) Table {
	b.mu.Lock()
	defer b.mu.Unlock()
	next := b.table.Clone()
	for c, r := range fetched {
		next.Rates[c] = r
	}
	next.SourceURL = sourceURL
	b.table = next
	return next.Clone()
}
