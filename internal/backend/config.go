package backend

import (
	"fmt"
	"time"

	"comptes/internal/config"
)

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// GraphQL specific
	GraphQLURL     string
	GraphQLTimeout time.Duration

	// SQLite specific
	SQLiteDBPath string

	// Memory backend specific
	DataDirectory string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:           backendType,
		GraphQLURL:     appConfig.GraphQLURL,
		GraphQLTimeout: appConfig.GraphQLTimeout,
		SQLiteDBPath:   appConfig.SQLiteDBPath,
		DataDirectory:  appConfig.DataSeedDir,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type %q, want one of %v", c.Type, GetBackendTypes())
	}

	switch c.Type {
	case GraphQLBackend:
		if c.GraphQLURL == "" {
			return fmt.Errorf("GraphQL URL is required for graphql backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case MemoryBackend:
		// DataDirectory defaults to "data" when empty
	}

	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{GraphQLBackend, MemoryBackend, SQLiteBackend}
}
