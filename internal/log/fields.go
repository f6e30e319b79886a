package log

import "tracker/internal/core"

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldErrorType     = "error_type"
	FieldOperation     = "operation"
	FieldStorageKey    = "storage_key"
	FieldBackend       = "backend"
	FieldTransactionID = "transaction_id"
	FieldTxName        = "transaction_name"
	FieldTxType        = "transaction_type"
	FieldTxDate        = "transaction_date"
	FieldAmount        = "amount"
	FieldCategory      = "category"
	FieldPeriod        = "period"
	FieldSearch        = "search"
	FieldCount         = "count"
	FieldInstance      = "instance"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentCLI     = "cli"
	ComponentStore   = "store"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentCache   = "cache"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpSave     = "save"
	OpAdd      = "add"
	OpRemove   = "remove"
	OpQuery    = "query"
	OpNotify   = "notify"
	OpReload   = "reload"
	OpValidate = "validate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeStorage       = "storage_error"
	ErrorTypeDecode        = "decode_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeNotFound      = "not_found_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error and error type fields
func (f LogFields) WithError(err error, errorType string) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
		f[FieldErrorType] = errorType
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithStorageKey adds the persistence key
func (f LogFields) WithStorageKey(key string) LogFields {
	f[FieldStorageKey] = key
	return f
}

// WithTransaction adds transaction fields. The amount is logged as its
// decimal string.
func (f LogFields) WithTransaction(t core.Transaction) LogFields {
	f[FieldTransactionID] = t.ID
	f[FieldTxName] = t.Name
	f[FieldTxType] = t.Type.String()
	f[FieldTxDate] = t.Date.String()
	f[FieldAmount] = t.Amount.String()
	f[FieldCategory] = t.Category
	return f
}

// WithQuery adds the view inputs
func (f LogFields) WithQuery(period core.Period, search string) LogFields {
	f[FieldPeriod] = period.String()
	f[FieldSearch] = search
	return f
}

// WithCount adds a count field
func (f LogFields) WithCount(n int) LogFields {
	f[FieldCount] = n
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
