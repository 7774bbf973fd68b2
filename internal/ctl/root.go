// Package ctl implements ledgerctl, a command line client for the Income
// and Money records held by the remote API.
package ctl

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ledger/internal/backend"
	"ledger/internal/cli"
	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/entity"
	applog "ledger/internal/log"
	"ledger/internal/resources"
)

// app carries the global flags and the backends built from them.
type app struct {
	apiURL  string
	token   string
	timeout time.Duration
	asJSON  bool

	backends backend.Backends
	cleanup  backend.CleanupFunc
}

// Execute runs ledgerctl with the process arguments.
func Execute() error {
	a := &app{}
	defer a.close()
	return newRootCommand(a).Execute()
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Command line client for the ledger API",
		Long: `ledgerctl lists, shows, creates, updates, patches and deletes the
Income and Money records of the ledger API.

The API location and credentials come from the same environment as the
web frontend (API_BASE_URL, API_TOKEN, LEDGER_CONFIG, .env) and can be
overridden with flags.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.connect,
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api", "", "API base URL (overrides API_BASE_URL)")
	root.PersistentFlags().StringVar(&a.token, "token", "", "Bearer token (overrides API_TOKEN)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "Request timeout (overrides API_TIMEOUT)")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "Output JSON")

	root.AddCommand(
		entityCommand(a, resources.Incomes(), func() entity.Backend[core.Income] { return a.backends.Incomes }),
		entityCommand(a, resources.Monies(), func() entity.Backend[core.Money] { return a.backends.Monies }),
		summaryCommand(a),
	)
	return root
}

// connect builds the backends once the flags are parsed.
func (a *app) connect(cmd *cobra.Command, _ []string) error {
	cli.LoadEnvFile()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.apiURL != "" {
		cfg.APIBaseURL = a.apiURL
	}
	if a.token != "" {
		cfg.APIToken = a.token
	}
	if a.timeout > 0 {
		cfg.APITimeout = a.timeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentCLI,
		Output:    cmd.ErrOrStderr(),
	})
	applog.SetDefault(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(cmd.Context(), backendCfg)
	if err != nil {
		return err
	}
	a.backends = result.Backends
	a.cleanup = result.Cleanup
	return nil
}

func (a *app) close() {
	if a.cleanup != nil {
		_ = a.cleanup()
		a.cleanup = nil
	}
}
