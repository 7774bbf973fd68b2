package ctl

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ledger/internal/core"
	"ledger/internal/entity"
	"ledger/internal/resources"
)

func summaryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Count the records of every resource",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var incomes, monies int64

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				n, err := countRecords(ctx, a.backends.Incomes)
				if err != nil {
					return fmt.Errorf("%s: %w", resources.IncomeRoute, err)
				}
				incomes = n
				return nil
			})
			g.Go(func() error {
				n, err := countRecords(ctx, a.backends.Monies)
				if err != nil {
					return fmt.Errorf("%s: %w", resources.MoneyRoute, err)
				}
				monies = n
				return nil
			})
			if err := g.Wait(); err != nil {
				return fmt.Errorf("summary: %w", err)
			}

			if a.asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]int64{
					resources.IncomeRoute: incomes,
					resources.MoneyRoute:  monies,
				})
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n%s: %d\n",
				resources.Incomes().Title, incomes,
				resources.Monies().Title, monies)
			return err
		},
	}
}

// countRecords asks for a single record and reads X-Total-Count. Without
// the header the whole collection is fetched and counted.
func countRecords[T core.Identified](ctx context.Context, be entity.Backend[T]) (int64, error) {
	resp, err := be.Query(ctx, entity.QueryOptions{Size: 1})
	if err != nil {
		return 0, err
	}
	if resp.TotalCount >= 0 {
		return resp.TotalCount, nil
	}

	resp, err = be.Query(ctx, entity.QueryOptions{})
	if err != nil {
		return 0, err
	}
	if resp.Body == nil {
		return 0, nil
	}
	return int64(len(*resp.Body)), nil
}
