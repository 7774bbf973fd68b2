package backend

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/entity"
	"ledger/internal/resources"
	"ledger/internal/services"
	"ledger/internal/transport"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
	// dial is swapped in tests
	dial func(url, exchange, queue string) (*amqp.Client, error)
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
		dial:   amqp.NewClient,
	}
}

// CreateBackend builds the HTTP backends of every resource. When AMQP is
// configured and reachable, writes are wrapped to publish entity events; a
// broker that cannot be reached only disables events.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := transport.New(transport.Config{
		BaseURL: config.APIBaseURL,
		Token:   config.APIToken,
		Timeout: config.APITimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize API client: %w", err)
	}

	var (
		monies  entity.Backend[core.Money]  = entity.NewService(client, resources.Monies())
		incomes entity.Backend[core.Income] = entity.NewService(client, resources.Incomes())
	)

	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = f.dial(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", "error", err)
			amqpClient = nil
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	result := &BackendResult{}
	if amqpClient != nil {
		monies = services.NewPublishing(monies, resources.MoneyRoute, amqpClient)
		incomes = services.NewPublishing(incomes, resources.IncomeRoute, amqpClient)
		result.Cleanup = amqpClient.Close
		result.EventsEnabled = true
	}
	result.Monies = monies
	result.Incomes = incomes

	f.logger.InfoContext(ctx, "Initialized API backend",
		"base_url", client.BaseURL(),
		"events_enabled", result.EventsEnabled)

	return result, nil
}
