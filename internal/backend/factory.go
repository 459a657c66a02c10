package backend

import (
	"context"
	"fmt"
	"net/http"

	"comptes/internal/api/graphql"
	"comptes/internal/api/memory"
	applog "comptes/internal/log"
	"comptes/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger     *applog.Logger
	httpClient *http.Client
}

// NewFactory creates a new backend factory. httpClient may be nil, in which
// case the GraphQL backend builds one from the configured timeout.
func NewFactory(logger *applog.Logger, httpClient *http.Client) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger:     logger.WithComponent(applog.ComponentBackend),
		httpClient: httpClient,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(_ context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case GraphQLBackend:
		return f.createGraphQLBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type %q, want one of %v", config.Type, GetBackendTypes())
	}
}

func (f *DefaultFactory) createGraphQLBackend(config Config) (*BackendResult, error) {
	cli, err := graphql.New(config.GraphQLURL, f.httpClient, config.GraphQLTimeout, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GraphQL client: %w", err)
	}

	f.logger.Info("Initialized GraphQL backend",
		"endpoint", cli.Endpoint(),
		"timeout", config.GraphQLTimeout)

	return &BackendResult{Backend: cli}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	store := memory.NewFromFiles(dataDir)

	f.logger.Info("Initialized memory backend", "data_directory", dataDir)

	return &BackendResult{Backend: store}, nil
}
