package logging

// Standardized field names for structured logging.
// These constants ensure consistency across the application's log output,
// making logs easier to parse, filter, and analyze.
const (
	FieldFile       = "file_path"
	FieldBank       = "bank"
	FieldPage       = "page"
	FieldMethod     = "extraction_method"
	FieldStatus     = "status"
	FieldError      = "error"
	FieldDuration   = "duration"
	FieldCount      = "count"
	FieldRunID      = "run_id"
	FieldCacheKey   = "cache_key"
	FieldYear       = "statement_year"
	FieldInputFile  = "input_file"
	FieldOutputFile = "output_file"
)
