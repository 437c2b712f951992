// Package http provides the JSON API over the cost book.
//
// This file holds the request parsing shared by the handlers: period and
// currency query parameters and cost bodies sent as JSON or form data.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"costbook/internal/core"
)

// maxBodyBytes caps request bodies read by the parser.
const maxBodyBytes = 1 << 20

// errMalformedBody marks bodies that are neither a JSON object nor form data.
var errMalformedBody = errors.New("malformed request body")

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams reads year and month from the query, defaulting each to
// now. Present but non-numeric values are validation errors; range checks
// are left to the store.
func ParseMonthParams(query url.Values, now time.Time) (MonthParams, error) {
	params := MonthParams{Year: now.Year(), Month: int(now.Month())}

	var err error
	if params.Year, err = intParam(query, "year", params.Year); err != nil {
		return MonthParams{}, err
	}
	if params.Month, err = intParam(query, "month", params.Month); err != nil {
		return MonthParams{}, err
	}
	return params, nil
}

func intParam(query url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, core.NewValidationError(key, "must be an integer")
	}
	return n, nil
}

// ParseCurrencyParam reads the report currency; empty means USD.
func ParseCurrencyParam(query url.Values) (core.Currency, error) {
	v := strings.TrimSpace(query.Get("currency"))
	if v == "" {
		return core.USD, nil
	}
	return core.ParseCurrency(v)
}

// RequestBodyParser reads a body once and exposes its fields, whether it was
// sent as a JSON object or as form data.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads at most maxBodyBytes of r's body.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = fmt.Errorf("%w: body exceeds %d bytes", errMalformedBody, maxBodyBytes)
	}
	return p
}

// Parse decodes the body. A body starting with '{' must be a JSON object.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	switch {
	case trimmed == "":
		p.formData = url.Values{}
	case trimmed[0] == '{':
		dec := json.NewDecoder(strings.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: %v", errMalformedBody, err)
		}
	case trimmed[0] == '[':
		p.err = fmt.Errorf("%w: expected a JSON object", errMalformedBody)
	default:
		p.formData, p.err = url.ParseQuery(trimmed)
		if p.err != nil {
			p.err = fmt.Errorf("%w: %v", errMalformedBody, p.err)
		}
	}
	return p.err
}

// Value returns the raw field. JSON numbers come back as json.Number.
func (p *RequestBodyParser) Value(key string) (any, bool) {
	if p.jsonData != nil {
		v, ok := p.jsonData[key]
		return v, ok
	}
	if p.formData != nil {
		if _, ok := p.formData[key]; ok {
			return p.formData.Get(key), true
		}
	}
	return nil, false
}

// String returns the field when it is a string, else "".
func (p *RequestBodyParser) String(key string) string {
	v, _ := p.Value(key)
	s, _ := v.(string)
	return sanitizeInput(s)
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// ParseCostInput builds a cost from the parsed body, checking fields in the
// order sum, currency, category, description.
func ParseCostInput(p *RequestBodyParser) (core.CostInput, error) {
	if err := p.Parse(); err != nil {
		return core.CostInput{}, err
	}

	sum, err := parseSum(p)
	if err != nil {
		return core.CostInput{}, err
	}

	raw, _ := p.Value("currency")
	cur, ok := raw.(string)
	if !ok {
		return core.CostInput{}, core.NewValidationError("currency", "must be a string")
	}

	in := core.CostInput{
		Sum:         sum,
		Currency:    core.Currency(strings.TrimSpace(cur)),
		Category:    p.String("category"),
		Description: p.String("description"),
	}
	if err := in.Validate(); err != nil {
		return core.CostInput{}, err
	}
	return in, nil
}

func parseSum(p *RequestBodyParser) (float64, error) {
	raw, ok := p.Value("sum")
	if !ok || raw == nil {
		return 0, core.NewValidationError("sum", "must be a number")
	}
	switch v := raw.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, core.NewValidationError("sum", "must be a number")
		}
		return f, core.ValidateSum(f)
	case string:
		return core.ParseAmount(v)
	default:
		return 0, core.NewValidationError("sum", "must be a number")
	}
}

// ParseRates decodes a {"rates": {...}} body. Unknown keys are kept so the
// book can reject them by name.
func ParseRates(r *http.Request) (map[core.Currency]float64, error) {
	var body struct {
		Rates map[core.Currency]float64 `json:"rates"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return nil, err
	}
	if body.Rates == nil {
		return nil, core.NewValidationError("rates", "must be an object of currency to rate")
	}
	return body.Rates, nil
}

// ParseSourceURL decodes a {"url": "..."} body.
func ParseSourceURL(r *http.Request) (string, error) {
	var body struct {
		URL *string `json:"url"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return "", err
	}
	if body.URL == nil {
		return "", core.NewValidationError("url", "is required")
	}
	return *body.URL, nil
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("%w: empty body", errMalformedBody)
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

// sanitizeInput drops control characters other than tab and newlines and trims.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}
