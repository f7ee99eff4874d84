package constants

import "time"

const (
	AppName            = "habital"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/habital"
	DefaultDBName      = "habital.db"
	ConfigFileName     = "config"
	ConfigFileType     = "yaml"
	EnvPrefix          = "HABITAL"
	Version            = "v0.3.0"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habital-"
	BackupFileSuffix = ".db"

	// Interchange constants
	ExportFilePrefix       = "habital_export_"
	ExportFileSuffix       = ".csv"
	ExportFileTimeFormat   = "20060102_150405"
	ExportMIMEType         = "text/csv"
	InterchangeLockName    = "habital-interchange.lock"
	InterchangeLockRetries = 3
	InterchangeLockDelay   = 100 * time.Millisecond

	// Habit constraints
	MinIntensityLevel = 1
	MaxIntensityLevel = 4
	MaxRotationWeeks  = 4

	// XP constants
	XPPerIntensityLevel = 10
	XPBadHabitPenalty   = 25

	// Server defaults
	DefaultServerAddr = "127.0.0.1:8420"
)
