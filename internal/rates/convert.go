package rates

import (
	"fmt"

	"costbook/internal/core"
	applog "costbook/internal/log"
)

// Convert turns amount in from into to through the USD pivot:
// amount / rate[from] * rate[to]. Same currency returns amount untouched.
// When either rate is missing the amount comes back unconverted and a
// warning is logged; use ConvertStrict to get the error instead.
func Convert(amount float64, from, to core.Currency, t Table) float64 {
	v, err := ConvertStrict(amount, from, to, t)
	if err != nil {
		applog.Component(applog.ComponentRates).Warn("Conversion skipped",
			applog.FieldOperation, applog.OpConvert,
			"from", from,
			"to", to,
			applog.FieldError, err)
		return amount
	}
	return v
}

// ConvertStrict is Convert reporting core.ErrMissingRate instead of
// falling back to the unconverted amount.
func ConvertStrict(amount float64, from, to core.Currency, t Table) (float64, error) {
	if from == to {
		return amount, nil
	}
	rf, ok := t.Rate(from)
	if !ok {
		return 0, fmt.Errorf("%w: %s", core.ErrMissingRate, from)
	}
	rt, ok := t.Rate(to)
	if !ok {
		return 0, fmt.Errorf("%w: %s", core.ErrMissingRate, to)
	}
	return amount / rf * rt, nil
}
