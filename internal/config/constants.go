package config

// Default paths for local application files
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./library.db"

	// DefaultTokenFilePath is where the encrypted station identity is
	// persisted between restarts
	DefaultTokenFilePath = "./.library-station"

	// DefaultAuditDir is where staff action audit records are written
	DefaultAuditDir = "./audit"
)
