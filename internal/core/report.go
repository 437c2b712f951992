package core

// LineItem is one converted cost in a report.
type LineItem struct {
	Sum         float64  `json:"sum"`
	Currency    Currency `json:"currency"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Day         int      `json:"day"`
}

// ReportTotal is the sum of a report's line items in the report currency.
type ReportTotal struct {
	Currency Currency `json:"currency"`
	Total    float64  `json:"total"`
}

// Report is a currency-normalized summary of one month. It is never persisted.
type Report struct {
	Year  int         `json:"year"`
	Month int         `json:"month"` // 1-12
	Costs []LineItem  `json:"costs"`
	Total ReportTotal `json:"total"`
}

// CategoryBreakdown holds per-category sums as parallel label/value slices,
// in first-seen category order.
type CategoryBreakdown struct {
	Labels   []string  `json:"labels"`
	Values   []float64 `json:"values"`
	Currency Currency  `json:"currency"`
}

// MonthTotal is the report total of a single month.
type MonthTotal struct {
	Month int     `json:"month"`
	Total float64 `json:"total"`
}

// YearOverview always carries twelve entries, January first.
type YearOverview struct {
	Year     int          `json:"year"`
	Currency Currency     `json:"currency"`
	Months   []MonthTotal `json:"months"`
}
