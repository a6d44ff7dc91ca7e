package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRunID      = "run_id"
	FieldRequestID  = "request_id"
	FieldOperation  = "operation"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldStatusCode = "status_code"
	FieldYearID     = "academic_year_id"
	FieldTermID     = "term_id"
	FieldClassID    = "class_id"
	FieldStructID   = "structure_id"
	FieldParentID   = "parent_id"
	FieldDiscountID = "discount_id"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentAPI      = "api"
	ComponentSession  = "session"
	ComponentMatrix   = "matrix"
	ComponentStatus   = "status"
	ComponentRoster   = "roster"
	ComponentCache    = "cache"
	ComponentRender   = "render"
)
