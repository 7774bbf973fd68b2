package backend

import (
	"context"
	"time"

	"ledger/internal/core"
	"ledger/internal/entity"
)

// Backends groups the per-resource backends every surface needs.
type Backends struct {
	Monies  entity.Backend[core.Money]
	Incomes entity.Backend[core.Income]
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backends and an optional cleanup function
type BackendResult struct {
	Backends
	Cleanup CleanupFunc
	// EventsEnabled is true when writes are announced on the broker.
	EventsEnabled bool
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Remote API
	APIBaseURL string
	APIToken   string
	APITimeout time.Duration

	// AMQP, optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}
