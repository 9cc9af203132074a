package config

// Default paths and names for the store
const (
	// DefaultDatabasePath is the default path for the application database
	DefaultDatabasePath = "./grocery-share.db"

	// DefaultConnectionName identifies the store connection inside the process
	DefaultConnectionName = "grocery_share"
)
