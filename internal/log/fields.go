package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldProject     = "project_id"
	FieldAccount     = "account_id"
	FieldCategory    = "category_id"
	FieldTransaction = "transaction_id"
	FieldPair        = "pair_id"
	FieldBudget      = "budget_id"
	FieldForecast    = "forecast_id"
	FieldMonth       = "month"
	FieldValueCents  = "value_cents"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStorage = "storage"
	ComponentLedger  = "ledger"
	ComponentBudget  = "budget"
	ComponentReport  = "report"
)
