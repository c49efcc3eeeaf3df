// Package backend builds the storage connector and optional event publisher
// selected by configuration.
package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"prodboard/internal/amqp"
	"prodboard/internal/log"
	"prodboard/internal/report"
	"prodboard/internal/storage"
)

// eventDrainTimeout bounds how long shutdown waits for queued report events.
const eventDrainTimeout = 5 * time.Second

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case MySQLBackend:
		result = f.createMySQLBackend(ctx, config)
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(ctx, config)
	default:
		err = fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	f.attachPublisher(ctx, config, result)
	return result, nil
}

func (f *DefaultFactory) storageOptions(config Config) storage.Options {
	return storage.Options{Database: config.Database, ConnectTimeout: config.ConnectTimeout}
}

func (f *DefaultFactory) createMySQLBackend(ctx context.Context, config Config) *BackendResult {
	connector := storage.NewSQLConnector(storage.MySQLDialect{}, f.storageOptions(config))

	f.logger.InfoContext(ctx, "Initialized MySQL backend",
		log.FieldDialect, "mysql",
		"database", config.Database,
		"connect_timeout", config.ConnectTimeout.String())

	return &BackendResult{Connector: connector}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if dir := filepath.Dir(config.SQLiteDBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create SQLite directory: %w", err)
		}
	}
	if err := storage.RunMigrations(config.SQLiteDBPath); err != nil {
		return nil, fmt.Errorf("failed to migrate SQLite database: %w", err)
	}

	path := config.SQLiteDBPath
	connector := storage.NewSQLConnector(storage.SQLiteDialect{Path: path}, f.storageOptions(config))

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		log.FieldDialect, "sqlite",
		"db_path", path)

	return &BackendResult{
		Connector: connector,
		Ready: func(context.Context) error {
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("database file unavailable: %w", err)
			}
			return nil
		},
	}, nil
}

// attachPublisher connects to the broker when configured. A broker that is
// down at startup disables events instead of failing the server.
func (f *DefaultFactory) attachPublisher(ctx context.Context, config Config, result *BackendResult) {
	if config.AMQPURL == "" {
		return
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without report events",
			log.FieldError, err.Error())
		return
	}

	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)

	events := report.NewAsyncPublisher(client, report.DefaultEventQueueSize, f.logger)
	result.Publisher = events
	result.Cleanup = func() error {
		drainCtx, cancel := context.WithTimeout(context.Background(), eventDrainTimeout)
		defer cancel()
		return errors.Join(events.Close(drainCtx), client.Close())
	}
}
