package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"costbook/internal/core"
)

func TestParseMonthParams(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		query     url.Values
		wantYear  int
		wantMonth int
		wantField string
	}{
		{name: "both values provided", query: url.Values{"year": {"2023"}, "month": {"12"}}, wantYear: 2023, wantMonth: 12},
		{name: "defaults to now", query: url.Values{}, wantYear: 2024, wantMonth: 3},
		{name: "only month", query: url.Values{"month": {" 5 "}}, wantYear: 2024, wantMonth: 5},
		{name: "out of range passes through", query: url.Values{"month": {"13"}}, wantYear: 2024, wantMonth: 13},
		{name: "non-numeric year", query: url.Values{"year": {"abc"}}, wantField: "year"},
		{name: "non-numeric month", query: url.Values{"month": {"1.5"}}, wantField: "month"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonthParams(tt.query, now)
			if tt.wantField != "" {
				if field, _ := core.ValidationField(err); field != tt.wantField {
					t.Fatalf("expected validation error on %s, got %v", tt.wantField, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Year != tt.wantYear || got.Month != tt.wantMonth {
				t.Errorf("got %d-%d, want %d-%d", got.Year, got.Month, tt.wantYear, tt.wantMonth)
			}
		})
	}
}

func TestParseCurrencyParam(t *testing.T) {
	if c, err := ParseCurrencyParam(url.Values{}); err != nil || c != core.USD {
		t.Errorf("empty currency: %v %v", c, err)
	}
	if c, err := ParseCurrencyParam(url.Values{"currency": {"ils"}}); err != nil || c != core.ILS {
		t.Errorf("lower case currency: %v %v", c, err)
	}
	if _, err := ParseCurrencyParam(url.Values{"currency": {"JPY"}}); !errors.Is(err, core.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func parserFor(body string) *RequestBodyParser {
	return NewRequestBodyParser(httptest.NewRequest(http.MethodPost, "/costs", strings.NewReader(body)))
}

func TestParseCostInput(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		want      core.CostInput
		wantField string
		malformed bool
	}{
		{
			name: "json number",
			body: `{"sum": 25.5, "currency": "USD", "category": "Food", "description": "Lunch"}`,
			want: core.CostInput{Sum: 25.5, Currency: core.USD, Category: "Food", Description: "Lunch"},
		},
		{
			name: "numeric string with comma",
			body: `{"sum": "12,30", "currency": "ILS", "category": "Coffee", "description": "Espresso"}`,
			want: core.CostInput{Sum: 12.3, Currency: core.ILS, Category: "Coffee", Description: "Espresso"},
		},
		{
			name: "form data",
			body: "sum=7&currency=GBP&category=Books&description=Novel",
			want: core.CostInput{Sum: 7, Currency: core.GBP, Category: "Books", Description: "Novel"},
		},
		{name: "missing sum", body: `{"currency": "USD", "category": "c", "description": "d"}`, wantField: "sum"},
		{name: "zero sum", body: `{"sum": 0, "currency": "USD", "category": "c", "description": "d"}`, wantField: "sum"},
		{name: "boolean sum", body: `{"sum": true, "currency": "USD", "category": "c", "description": "d"}`, wantField: "sum"},
		{name: "sum checked before currency", body: `{"sum": -1, "currency": 5}`, wantField: "sum"},
		{name: "currency not a string", body: `{"sum": 1, "currency": 5, "category": "c", "description": "d"}`, wantField: "currency"},
		{name: "unknown currency", body: `{"sum": 1, "currency": "JPY", "category": "c", "description": "d"}`, wantField: "currency"},
		{name: "category not a string", body: `{"sum": 1, "currency": "USD", "category": 3, "description": "d"}`, wantField: "category"},
		{name: "blank description", body: `{"sum": 1, "currency": "USD", "category": "c", "description": "   "}`, wantField: "description"},
		{name: "malformed json", body: `{"sum": `, malformed: true},
		{name: "array body", body: `[1,2]`, malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCostInput(parserFor(tt.body))
			switch {
			case tt.malformed:
				if !errors.Is(err, errMalformedBody) {
					t.Fatalf("expected malformed body error, got %v", err)
				}
			case tt.wantField != "":
				if field, _ := core.ValidationField(err); field != tt.wantField {
					t.Fatalf("expected validation error on %s, got %v", tt.wantField, err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("got %+v, want %+v", got, tt.want)
				}
			}
		})
	}
}

func TestRequestBodyParser_SanitizesStrings(t *testing.T) {
	p := parserFor(`{"description": "  Taxi\u0000 ride\n "}`)
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	if !p.IsJSON() {
		t.Error("expected JSON body")
	}
	if got := p.String("description"); got != "Taxi ride" {
		t.Errorf("String = %q", got)
	}
	if got := p.String("missing"); got != "" {
		t.Errorf("missing field = %q", got)
	}
}

func TestRequestBodyParser_TooLarge(t *testing.T) {
	p := parserFor(`{"description": "` + strings.Repeat("x", maxBodyBytes) + `"}`)
	if err := p.Parse(); !errors.Is(err, errMalformedBody) {
		t.Fatalf("expected size error, got %v", err)
	}
}

func TestParseRatesAndSource(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/rates", strings.NewReader(`{"rates": {"USD": 1, "ILS": 3.6, "GBP": 0.8, "EURO": 0.9}}`))
	m, err := ParseRates(req)
	if err != nil || m[core.ILS] != 3.6 || len(m) != 4 {
		t.Fatalf("ParseRates = %v, %v", m, err)
	}

	req = httptest.NewRequest(http.MethodPut, "/rates", strings.NewReader(`{}`))
	if _, err := ParseRates(req); !errors.Is(err, core.ErrValidation) {
		t.Errorf("missing rates should be a validation error, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPut, "/rates", strings.NewReader(`{"rates": {"USD": "one"}}`))
	if _, err := ParseRates(req); !errors.Is(err, errMalformedBody) {
		t.Errorf("non-numeric rate should be malformed, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPut, "/rates/source", strings.NewReader(`{"url": ""}`))
	if u, err := ParseSourceURL(req); err != nil || u != "" {
		t.Errorf("empty url should be accepted: %q %v", u, err)
	}

	req = httptest.NewRequest(http.MethodPut, "/rates/source", strings.NewReader(`{}`))
	if _, err := ParseSourceURL(req); !errors.Is(err, core.ErrValidation) {
		t.Errorf("missing url should be a validation error, got %v", err)
	}
}
