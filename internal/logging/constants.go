package logging

// Field names shared by all components so that JSON logs can be filtered
// consistently.
const (
	FieldFile       = "file_path"
	FieldReport     = "report"
	FieldStudent    = "student"
	FieldStudentID  = "student_id"
	FieldGrade      = "grade"
	FieldPage       = "page"
	FieldRow        = "row"
	FieldBackend    = "backend"
	FieldOperation  = "operation"
	FieldStatus     = "status"
	FieldReason     = "reason"
	FieldCount      = "count"
	FieldDuration   = "duration_ms"
	FieldRunID      = "run_id"
	FieldAttempt    = "attempt"
	FieldInputFile  = "input_file"
	FieldOutputFile = "output_file"
)
