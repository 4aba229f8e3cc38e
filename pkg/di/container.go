// Package di provides dependency injection container
package di

import (
	"go.uber.org/zap"

	"github.com/Neopallium/sub-script/pkg/api"    //nolint:depguard
	"github.com/Neopallium/sub-script/pkg/engine" //nolint:depguard
	"github.com/Neopallium/sub-script/pkg/storage"
	"github.com/Neopallium/sub-script/pkg/types"
)

// LookupFactory builds the type registry
type LookupFactory func(opts engine.Options) (*types.Lookup, error)

// SnapshotStoreFactory opens the snapshot store at path
type SnapshotStoreFactory func(path string, log *zap.Logger) (*storage.SnapshotStore, error)

// Container holds all the dependencies for the application
type Container struct {
	lookupFactory   LookupFactory
	snapshotFactory SnapshotStoreFactory
	serverFactory   api.ServerFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		lookupFactory:   engine.New,
		snapshotFactory: storage.NewSnapshotStore,
		serverFactory:   api.NewServerFactory(),
	}
}

// GetLookupFactory returns the registry factory
func (c *Container) GetLookupFactory() LookupFactory {
	return c.lookupFactory
}

// GetSnapshotStoreFactory returns the snapshot store factory
func (c *Container) GetSnapshotStoreFactory() SnapshotStoreFactory {
	return c.snapshotFactory
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetLookupFactory allows overriding the registry factory (for testing)
func (c *Container) SetLookupFactory(factory LookupFactory) {
	c.lookupFactory = factory
}

// SetSnapshotStoreFactory allows overriding the snapshot store factory (for testing)
func (c *Container) SetSnapshotStoreFactory(factory SnapshotStoreFactory) {
	c.snapshotFactory = factory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}
