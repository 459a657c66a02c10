package backend

import (
	"context"

	"comptes/internal/api"
)

// Backend represents a unified backend interface that provides all necessary operations
type Backend interface {
	api.AccountReader
	api.AccountWriter
	api.StatsReader
	api.TransactionReader
	api.TransactionWriter
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// BackendType represents the type of backend
type BackendType string

const (
	GraphQLBackend BackendType = "graphql"
	MemoryBackend  BackendType = "memory"
	SQLiteBackend  BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case GraphQLBackend, MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
