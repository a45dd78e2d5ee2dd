package log

// Attribute keys shared by every log record.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldReferer     = "referer"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldErrorKind   = "error_kind"
	FieldOperation   = "operation"
	FieldAccountID   = "account_id"
	FieldPaymentID   = "payment_id"
	FieldAmountCents = "amount_cents"
	FieldDeltaCents  = "delta_cents"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldChartKind   = "chart_kind"
	FieldFormat      = "format"
	FieldBytes       = "bytes"
)

const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentLedger   = "ledger"
	ComponentAccounts = "accounts"
	ComponentReports  = "reports"
	ComponentBudgets  = "budgets"
	ComponentPlanner  = "planner"
	ComponentSecurity = "security"
	ComponentTrace    = "trace"
)

// Operation names for the operation attribute.
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpIncome   = "apply_income"
	OpExpense  = "record_expense"
	OpEdit     = "edit_expense"
	OpReset    = "delete_all_transactions"
	OpLogin    = "login"
	OpSignup   = "signup"
	OpRender   = "render"
	OpExport   = "export"
	OpMigrate  = "migrate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields collects attributes for one record.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError is a no-op for a nil err.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithAccount(accountID int64) LogFields {
	f[FieldAccountID] = accountID
	return f
}

func (f LogFields) WithLedger(accountID, amountCents, deltaCents int64) LogFields {
	f[FieldAccountID] = accountID
	f[FieldAmountCents] = amountCents
	f[FieldDeltaCents] = deltaCents
	return f
}

// WithHTTPRequest omits an empty user agent or referer.
func (f LogFields) WithHTTPRequest(method, path, query, userAgent, referer string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	if referer != "" {
		f[FieldReferer] = referer
	}
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice flattens f into slog key/value pairs.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
