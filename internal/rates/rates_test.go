package rates

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costbook/internal/core"
)

func TestConvertILSToEuro(t *testing.T) {
	table := Table{Rates: map[core.Currency]float64{core.USD: 1, core.ILS: 3.5, core.EURO: 0.85}}
	got := Convert(100, core.ILS, core.EURO, table)
	assert.InDelta(t, 100/3.5*0.85, got, 1e-12)
	assert.InDelta(t, 24.2857, got, 1e-4)
}

func TestConvertSameCurrencyIsExact(t *testing.T) {
	table := DefaultTable()
	for _, c := range core.Currencies() {
		for _, a := range []float64{0.01, 1, 25.5, 123456.789, math.Pi} {
			assert.Equal(t, a, Convert(a, c, c, table))
		}
	}
	// Identity holds even when the rate is absent.
	assert.Equal(t, 7.0, Convert(7, core.GBP, core.GBP, Table{}))
}

func TestConvertRoundTrip(t *testing.T) {
	table := DefaultTable()
	for _, a := range core.Currencies() {
		for _, b := range core.Currencies() {
			for _, amount := range []float64{0.01, 3, 99.99, 1e6} {
				back := Convert(Convert(amount, a, b, table), b, a, table)
				assert.InEpsilon(t, amount, back, 1e-9, "%s->%s->%s", a, b, a)
			}
		}
	}
}

func TestConvertMissingRate(t *testing.T) {
	table := Table{Rates: map[core.Currency]float64{core.USD: 1, core.GBP: 0}}

	assert.Equal(t, 40.0, Convert(40, core.ILS, core.USD, table))
	assert.Equal(t, 40.0, Convert(40, core.USD, core.GBP, table))

	_, err := ConvertStrict(40, core.ILS, core.USD, table)
	assert.ErrorIs(t, err, core.ErrMissingRate)
	_, err = ConvertStrict(40, core.USD, core.GBP, table)
	assert.ErrorIs(t, err, core.ErrMissingRate)
}

func TestBookSetRates(t *testing.T) {
	b := NewBook("")

	require.NoError(t, b.SetRates(map[core.Currency]float64{core.USD: 1, core.GBP: 1.8, core.EURO: 0.7, core.ILS: 3.4}))
	assert.Equal(t, 1.8, b.Rates().Rates[core.GBP])

	bad := []map[core.Currency]float64{
		{core.USD: 1, core.GBP: 1.8, core.EURO: 0.7},
		{core.USD: 2, core.GBP: 1.8, core.EURO: 0.7, core.ILS: 3.4},
		{core.USD: 1, core.GBP: -1, core.EURO: 0.7, core.ILS: 3.4},
		{core.USD: 1, core.GBP: 1, core.EURO: 0.7, core.ILS: 3.4, "JPY": 150},
	}
	for _, m := range bad {
		err := b.SetRates(m)
		require.ErrorIs(t, err, core.ErrValidation)
	}
	assert.Equal(t, 1.8, b.Rates().Rates[core.GBP], "rejected overrides must not change the table")
}

func TestBookRatesReturnsCopy(t *testing.T) {
	b := NewBook("")
	r := b.Rates()
	r.Rates[core.ILS] = 99
	assert.Equal(t, 3.5, b.Rates().Rates[core.ILS])
}

func TestBookSetURL(t *testing.T) {
	b := NewBook("https://rates.example.com/latest")
	assert.Equal(t, "https://rates.example.com/latest", b.URL())

	require.NoError(t, b.SetURL(""))
	assert.Empty(t, b.URL())
	require.NoError(t, b.SetURL(" http://localhost:9000/rates "))
	assert.Equal(t, "http://localhost:9000/rates", b.URL())

	for _, raw := range []string{"rates.example.com", "ftp://x/y", "/relative"} {
		require.ErrorIs(t, b.SetURL(raw), core.ErrValidation, raw)
	}
}

func TestFetchRatesEmptyURLMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	f := NewFetcher(NewBook(""), time.Second)
	before := f.Book().Rates()
	got := f.FetchRates(context.Background(), "")

	assert.Equal(t, before, got)
	assert.Equal(t, before, f.Book().Rates())
	assert.Zero(t, hits.Load())
}

func TestFetchRatesSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"USD": 1, "GBP": 0.79, "EUR": 0.92, "ILS": 3.7}`)
	}))
	defer srv.Close()

	f := NewFetcher(NewBook(""), time.Second)
	got := f.FetchRates(context.Background(), srv.URL)

	assert.Equal(t, map[core.Currency]float64{core.USD: 1, core.GBP: 0.79, core.EURO: 0.92, core.ILS: 3.7}, got.Rates)
	assert.Equal(t, srv.URL, got.SourceURL)
	assert.Equal(t, got, f.Book().Rates())
}

func TestFetchRatesPartialNestedAndRebased(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"base": "USD", "rates": {"usd": 2, "ils": 7, "gbp": "n/a"}}`)
	}))
	defer srv.Close()

	f := NewFetcher(NewBook(""), time.Second)
	got := f.FetchRates(context.Background(), srv.URL)

	assert.Equal(t, 1.0, got.Rates[core.USD])
	assert.Equal(t, 3.5, got.Rates[core.ILS])
	assert.Equal(t, 0.8, got.Rates[core.GBP], "missing field keeps previous value")
	assert.Equal(t, 0.85, got.Rates[core.EURO])
}

func TestFetchRatesFailuresKeepTable(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
		"malformed json": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"USD": 1,`)
		},
		"no supported fields": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"JPY": 150, "CHF": 0.9}`)
		},
		"array payload": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `[1, 2, 3]`)
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			b := NewBook("")
			before := b.Rates()
			f := NewFetcher(b, time.Second)

			got := f.FetchRates(context.Background(), srv.URL)
			assert.Equal(t, before, got)
			assert.Equal(t, before, b.Rates())
		})
	}
}

func TestFetchRatesUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	b := NewBook(addr)
	before := b.Rates()
	got := NewFetcher(b, 500*time.Millisecond).Refresh(context.Background())
	assert.Equal(t, before, got)
}

func TestFetchRatesTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	b := NewBook("")
	before := b.Rates()
	got := NewFetcher(b, 50*time.Millisecond).FetchRates(context.Background(), srv.URL)
	assert.Equal(t, before, got)
}

func TestConcurrentFetchesCollapse(t *testing.T) {
	var hits atomic.Int32
	gate := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-gate
		fmt.Fprint(w, `{"USD": 1, "ILS": 3.6}`)
	}))
	defer srv.Close()

	f := NewFetcher(NewBook(""), 5*time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := f.FetchRates(context.Background(), srv.URL)
			assert.Equal(t, 3.6, got.Rates[core.ILS])
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{"": PolicyOnDemand, "on-demand": PolicyOnDemand, "Per-Report": PolicyPerReport, "interval": PolicyInterval} {
		got, err := ParsePolicy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParsePolicy("always")
	assert.Error(t, err)
}

func TestRefresherPolicies(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"ILS": 4}`)
	}))
	defer srv.Close()

	onDemand := NewRefresher(NewFetcher(NewBook(srv.URL), time.Second), PolicyOnDemand, 0)
	assert.Equal(t, 3.5, onDemand.CurrentRates(context.Background()).Rates[core.ILS])
	assert.Zero(t, hits.Load())

	assert.Equal(t, 4.0, onDemand.Refresh(context.Background()).Rates[core.ILS])
	assert.Equal(t, int32(1), hits.Load())

	perReport := NewRefresher(NewFetcher(NewBook(srv.URL), time.Second), PolicyPerReport, 0)
	assert.Equal(t, 4.0, perReport.CurrentRates(context.Background()).Rates[core.ILS])
	assert.Equal(t, int32(2), hits.Load())
}

func TestRefresherRunInterval(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"GBP": 0.75}`)
	}))
	defer srv.Close()

	r := NewRefresher(NewFetcher(NewBook(srv.URL), time.Second), PolicyInterval, 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return hits.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, 0.75, r.CurrentRates(context.Background()).Rates[core.GBP])
}

func TestRefresherRunReturnsForOtherPolicies(t *testing.T) {
	r := NewRefresher(NewFetcher(NewBook(""), time.Second), PolicyOnDemand, time.Millisecond)
	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run should return immediately for on-demand")
	}
}
