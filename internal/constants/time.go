package constants

const (
	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// InterchangeTimeFormat is the UTC timestamp layout used by CSV export and import.
	InterchangeTimeFormat = "2006-01-02T15:04:05Z"
)
