package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldCostID      = "cost_id"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldSum         = "sum"
	FieldCurrency    = "currency"
	FieldCategory    = "category"
	FieldRatesURL    = "rates_url"
	FieldRatesPolicy = "rates_policy"
	FieldDBPath      = "db_path"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentRates     = "rates"
	ComponentReport    = "report"
	ComponentCosts     = "costs"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentBackend   = "backend"
	ComponentRateLimit = "rate_limit"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpList     = "list"
	OpClear    = "clear"
	OpFetch    = "fetch"
	OpConvert  = "convert"
	OpReport   = "report"
	OpExport   = "export"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
