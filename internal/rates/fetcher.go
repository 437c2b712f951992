package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"costbook/internal/core"
	applog "costbook/internal/log"
)

// DefaultFetchTimeout bounds a single rate request.
const DefaultFetchTimeout = 10 * time.Second

const maxPayloadBytes = 1 << 20

// Fetcher pulls rate tables from a remote JSON endpoint into a Book.
type Fetcher struct {
	book   *Book
	client *http.Client
	group  singleflight.Group
	logger *applog.Logger
}

// NewFetcher returns a Fetcher writing into book. A non-positive timeout
// falls back to DefaultFetchTimeout.
func NewFetcher(book *Book, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Fetcher{
		book:   book,
		client: &http.Client{Timeout: timeout},
		logger: applog.Component(applog.ComponentRates),
	}
}

// Book returns the table the fetcher updates.
func (f *Fetcher) Book() *Book {
	return f.book
}

// Refresh fetches from the book's configured source URL.
func (f *Fetcher) Refresh(ctx context.Context) Table {
	return f.FetchRates(ctx, f.book.URL())
}

// FetchRates replaces the table with the payload served at sourceURL and
// returns the table in effect afterwards. An empty URL makes no request.
// Failures are logged and leave the table untouched; they are never returned.
func (f *Fetcher) FetchRates(ctx context.Context, sourceURL string) Table {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		f.logger.DebugContext(ctx, "Rate fetch skipped, no source configured")
		return f.book.Rates()
	}

	v, err, shared := f.group.Do(sourceURL, func() (any, error) {
		fetched, err := f.fetch(ctx, sourceURL)
		if err != nil {
			return nil, err
		}
		return f.book.merge(fetched, sourceURL), nil
	})
	if err != nil {
		f.logger.WarnContext(ctx, "Rate fetch failed, keeping current table",
			applog.FieldOperation, applog.OpFetch,
			applog.FieldRatesURL, sourceURL,
			applog.FieldError, err)
		return f.book.Rates()
	}

	table := v.(Table)
	f.logger.InfoContext(ctx, "Rates refreshed",
		applog.FieldRatesURL, sourceURL,
		"shared", shared,
		"rates", table.Rates)
	return table.Clone()
}

func (f *Fetcher) fetch(ctx context.Context, sourceURL string) (map[core.Currency]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", core.ErrRateFetch, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "costbook/rates")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrRateFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", core.ErrRateFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", core.ErrRateFetch, err)
	}
	return parsePayload(body)
}

// remoteKeys lists the accepted payload keys per currency, in priority order.
var remoteKeys = map[core.Currency][]string{
	core.USD:  {"USD"},
	core.GBP:  {"GBP"},
	core.ILS:  {"ILS"},
	core.EURO: {"EURO", "EUR"},
}

// parsePayload reads a flat object or one nested under "rates". Keys are
// matched case-insensitively; non-numeric or non-positive values count as
// absent. A USD entry other than 1 rebases the result onto USD.
func parsePayload(body []byte) (map[core.Currency]float64, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", core.ErrRateFetch, err)
	}

	fields := top
	for k, raw := range top {
		if strings.EqualFold(k, "rates") {
			var nested map[string]json.RawMessage
			if err := json.Unmarshal(raw, &nested); err == nil {
				fields = nested
			}
			break
		}
	}

	upper := make(map[string]json.RawMessage, len(fields))
	for k, raw := range fields {
		upper[strings.ToUpper(k)] = raw
	}

	found := make(map[core.Currency]float64, len(remoteKeys))
	for _, c := range core.Currencies() {
		for _, key := range remoteKeys[c] {
			raw, ok := upper[key]
			if !ok {
				continue
			}
			var r float64
			if err := json.Unmarshal(raw, &r); err != nil || !usableRate(r) {
				continue
			}
			found[c] = r
			break
		}
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: payload has no supported currency", core.ErrRateFetch)
	}

	if usd, ok := found[core.USD]; ok && usd != 1 {
		for c, r := range found {
			found[c] = r / usd
		}
		found[core.USD] = 1
	}
	return found, nil
}
