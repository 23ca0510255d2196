package logging

// Standardized field names for structured logging.
// These constants keep log output consistent between the reader, the
// aggregator and the exporters.
const (
	FieldFile        = "file_path"
	FieldComponent   = "component"
	FieldGame        = "game"
	FieldLine        = "line"
	FieldCategory    = "category"
	FieldTimeControl = "time_control"
	FieldEvent       = "event"
	FieldSide        = "side"
	FieldRating      = "rating"
	FieldRaw         = "raw"
	FieldReason      = "reason"
	FieldStrategy    = "strategy"
	FieldError       = "error"
	FieldCount       = "count"
	FieldSkipped     = "skipped"
	FieldCasual      = "casual"
	FieldInputFile   = "input_file"
	FieldOutputFile  = "output_file"
	FieldRunID       = "run_id"
)
