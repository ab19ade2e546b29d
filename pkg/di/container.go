// Package di provides dependency injection container
package di

import (
	"fmt"

	"go.uber.org/zap"

	"flatrec/pkg/config"
	"flatrec/pkg/record"
	"flatrec/pkg/store/pebblestore"
	"flatrec/pkg/store/sqlitestore"
)

// ClosableStore is a record store that owns a resource to release.
type ClosableStore interface {
	record.Store
	Close() error
}

// StoreFactory opens a record store for the given store configuration.
type StoreFactory func(cfg config.Store, logger *zap.Logger) (ClosableStore, error)

// Container holds all the dependencies for the application
type Container struct {
	storeFactory StoreFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		storeFactory: openStore,
	}
}

// OpenStore opens the configured store backend.
func (c *Container) OpenStore(cfg config.Store, logger *zap.Logger) (ClosableStore, error) {
	return c.storeFactory(cfg, logger)
}

// NewAccessor builds a record accessor over the given store.
func (c *Container) NewAccessor(store record.Store, logger *zap.Logger) *record.RecordAccessor {
	return record.NewRecordAccessor(store, logger)
}

// SetStoreFactory allows overriding the store factory (for testing)
func (c *Container) SetStoreFactory(factory StoreFactory) {
	c.storeFactory = factory
}

func openStore(cfg config.Store, logger *zap.Logger) (ClosableStore, error) {
	switch cfg.Backend {
	case config.BackendPebble:
		store, err := pebblestore.Open(pebblestore.Config{DataDir: cfg.DataDir}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendSQLite:
		store, err := sqlitestore.Open(sqlitestore.Config{
			Path:          cfg.SQLitePath,
			DisplayFields: cfg.DisplayFields,
		}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
