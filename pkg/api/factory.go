package api

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter(log *zap.Logger) ServerStarter {
	return &DefaultServerStarter{log: log}
}

// DefaultServerStarter runs the HTTP server with a private metrics registry
type DefaultServerStarter struct {
	log *zap.Logger
}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(
	ctx context.Context,
	lookup TypeLookup,
	snapshots SnapshotReader,
	config ServerConfig,
) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return StartServer(ctx, NewServer(lookup, snapshots, config, NewMetrics(reg), s.log), reg)
}
