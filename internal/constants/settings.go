package constants

const (
	// Config keys
	SettingDatabase   = "database"
	SettingTimezone   = "timezone"
	SettingWeekStart  = "week_start"
	SettingDebug      = "debug"
	SettingExportDir  = "export_dir"
	SettingServerAddr = "server.addr"

	// Default config values
	DefaultTimezone  = "Local" // Use system local timezone by default
	DefaultWeekStart = "sunday"
	DefaultDebug     = false
)
