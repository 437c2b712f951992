package core

import (
	"math"
	"strings"
	"time"
)

const (
	USD  Currency = "USD"
	ILS  Currency = "ILS"
	GBP  Currency = "GBP"
	EURO Currency = "EURO"
)

type (
	// Currency is one of the supported currency codes.
	Currency string

	// CostInput is what a caller submits to record a cost.
	CostInput struct {
		Sum         float64  `json:"sum"`
		Currency    Currency `json:"currency"`
		Category    string   `json:"category"`
		Description string   `json:"description"`
	}

	// CostRecord is a persisted cost. Year, Month and Day are derived from Date.
	CostRecord struct {
		ID          int64     `json:"id"`
		Sum         float64   `json:"sum"`
		Currency    Currency  `json:"currency"`
		Category    string    `json:"category"`
		Description string    `json:"description"`
		Date        time.Time `json:"date"`
		Year        int       `json:"year"`
		Month       int       `json:"month"` // 1-12
		Day         int       `json:"day"`   // 1-31
	}
)

// Currencies lists the supported currencies in a stable order.
func Currencies() []Currency {
	return []Currency{USD, ILS, GBP, EURO}
}

// Valid reports whether c is a supported currency code.
func (c Currency) Valid() bool {
	switch c {
	case USD, ILS, GBP, EURO:
		return true
	default:
		return false
	}
}

func (c Currency) String() string {
	return string(c)
}

// ParseCurrency normalizes s (trim, upper case) and checks it is supported.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", NewValidationError("currency", "must be one of USD, ILS, GBP, EURO")
	}
	return c, nil
}

// ValidateSum checks that sum is a finite number greater than zero.
func ValidateSum(sum float64) error {
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return NewValidationError("sum", "must be a finite number")
	}
	if sum <= 0 {
		return NewValidationError("sum", "must be greater than 0")
	}
	return nil
}

// ValidateMonth checks that month is within 1..12.
func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return NewValidationError("month", "must be between 1 and 12")
	}
	return nil
}

// ValidateYear checks that year has four digits.
func ValidateYear(year int) error {
	if year < 1000 || year > 9999 {
		return NewValidationError("year", "must be a 4-digit year")
	}
	return nil
}

// Validate checks fields in order; the first failure is returned.
func (in CostInput) Validate() error {
	if err := ValidateSum(in.Sum); err != nil {
		return err
	}
	if !in.Currency.Valid() {
		return NewValidationError("currency", "must be one of USD, ILS, GBP, EURO")
	}
	if strings.TrimSpace(in.Category) == "" {
		return NewValidationError("category", "must be a non-empty string")
	}
	if strings.TrimSpace(in.Description) == "" {
		return NewValidationError("description", "must be a non-empty string")
	}
	return nil
}

// NewCostRecord stamps in with at, decomposing the date for period queries.
// The ID is left for the store to assign.
func NewCostRecord(in CostInput, at time.Time) CostRecord {
	return CostRecord{
		Sum:         in.Sum,
		Currency:    in.Currency,
		Category:    in.Category,
		Description: in.Description,
		Date:        at,
		Year:        at.Year(),
		Month:       int(at.Month()),
		Day:         at.Day(),
	}
}

// Input returns the caller-facing subset of the record.
func (r CostRecord) Input() CostInput {
	return CostInput{
		Sum:         r.Sum,
		Currency:    r.Currency,
		Category:    r.Category,
		Description: r.Description,
	}
}
