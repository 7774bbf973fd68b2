package backend

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/entity"
	"ledger/internal/services"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("FromAppConfig(nil) should fail")
	}

	app := config.Defaults()
	app.APIToken = "secret"
	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.APIBaseURL != app.APIBaseURL || cfg.APIToken != "secret" || cfg.APITimeout != app.APITimeout {
		t.Errorf("FromAppConfig = %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid", Config{APIBaseURL: "http://localhost:8080/"}, false},
		{"missing base URL", Config{}, true},
		{"AMQP without queue", Config{APIBaseURL: "http://localhost:8080/", AMQPURL: "amqp://localhost/", AMQPExchange: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend_HTTPOnly(t *testing.T) {
	f := NewFactory(slog.Default())

	result, err := f.CreateBackend(context.Background(), Config{
		APIBaseURL: "http://localhost:8080/",
		APITimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if result.EventsEnabled || result.Cleanup != nil {
		t.Error("events should be disabled without AMQP")
	}
	if _, ok := result.Monies.(*entity.Service[core.Money]); !ok {
		t.Errorf("Monies backend = %T, want the plain HTTP service", result.Monies)
	}
}

func TestCreateBackend_UnreachableBrokerDisablesEvents(t *testing.T) {
	f := &DefaultFactory{
		logger: slog.Default(),
		dial: func(url, exchange, queue string) (*amqp.Client, error) {
			return nil, errors.New("connection refused")
		},
	}

	result, err := f.CreateBackend(context.Background(), Config{
		APIBaseURL:   "http://localhost:8080/",
		AMQPURL:      "amqp://localhost:5672/",
		AMQPExchange: "ledger",
		AMQPQueue:    "entity_events",
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if result.EventsEnabled {
		t.Error("events should be disabled when the broker is unreachable")
	}
	if _, ok := result.Incomes.(*services.Publishing[core.Income]); ok {
		t.Error("Incomes backend should not publish without a broker")
	}
}

func TestCreateBackend_InvalidBaseURL(t *testing.T) {
	f := NewFactory(nil)

	if _, err := f.CreateBackend(context.Background(), Config{APIBaseURL: "localhost:8080"}); err == nil {
		t.Error("CreateBackend should reject a base URL without http scheme")
	}
}
