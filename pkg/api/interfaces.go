// Package api serves a registry over HTTP: type listings plus JSON to SCALE encode
// and decode endpoints.
package api

import (
	"context"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/Neopallium/sub-script/pkg/storage"
	"github.com/Neopallium/sub-script/pkg/types"
)

// TypeLookup is the part of *types.Lookup the server uses
type TypeLookup interface {
	ParseType(def string) (*types.TypeRef, error)
	Get(name string) (*types.TypeRef, bool)
	Names() []string
	Unresolved() []string
	Len() int
}

// SnapshotReader lists and loads stored schema snapshots
type SnapshotReader interface {
	List() ([]storage.SnapshotInfo, error)
	Load(id ksuid.KSUID) ([]byte, storage.SnapshotInfo, error)
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves until ctx is cancelled
	StartServer(ctx context.Context, lookup TypeLookup, snapshots SnapshotReader, config ServerConfig) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter logging to log
	CreateServerStarter(log *zap.Logger) ServerStarter
}
