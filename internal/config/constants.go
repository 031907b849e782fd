package config

const (
	// DefaultDatabasePath is the default path for the provenance database
	DefaultDatabasePath = "./studio.db"
)
