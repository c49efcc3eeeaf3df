package backend

import (
	"context"
	"time"

	"prodboard/internal/report"
	"prodboard/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult is everything the report service needs from a backend.
type BackendResult struct {
	Connector storage.Connector
	// Publisher is nil when report events are disabled or the broker was
	// unreachable at startup.
	Publisher report.EventPublisher
	// Ready backs the readiness check. It may be nil.
	Ready   func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	Database       string
	ConnectTimeout time.Duration

	// SQLite specific
	SQLiteDBPath string

	// Report events, optional for every backend
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	MySQLBackend  BackendType = "mysql"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MySQLBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
