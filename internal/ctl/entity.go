package ctl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ledger/internal/core"
	"ledger/internal/entity"
	"ledger/internal/transport"
)

// entityCommand groups the record commands of one resource, e.g.
// "ledgerctl money list".
func entityCommand[T core.Identified](a *app, resource entity.Resource[T], backendOf func() entity.Backend[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:     resource.Name,
		Aliases: []string{strings.ToLower(resource.Title)},
		Short:   fmt.Sprintf("Manage %s records", resource.Title),
	}
	cmd.AddCommand(
		listCommand(a, resource, backendOf),
		getCommand(a, resource, backendOf),
		createCommand(a, resource, backendOf),
		updateCommand(a, resource, backendOf),
		patchCommand(a, resource, backendOf),
		deleteCommand(resource, backendOf),
	)
	return cmd
}

func listCommand[T core.Identified](a *app, resource entity.Resource[T], backendOf func() entity.Backend[T]) *cobra.Command {
	var (
		page    int
		size    int
		sorts   []string
		filters []string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s", strings.ToLower(resource.Title)),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := entity.QueryOptions{Page: page, Size: size, Sort: sorts}
			for _, f := range filters {
				key, value, ok := strings.Cut(f, "=")
				if !ok || strings.TrimSpace(key) == "" {
					return fmt.Errorf("invalid filter %q: want key=value", f)
				}
				if opts.Filters == nil {
					opts.Filters = url.Values{}
				}
				opts.Filters.Add(strings.TrimSpace(key), value)
			}

			resp, err := backendOf().Query(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("list %s: %w", resource.Name, err)
			}
			var records []T
			if resp.Body != nil {
				records = *resp.Body
			}

			out := cmd.OutOrStdout()
			if a.asJSON {
				return writeJSON(out, records)
			}
			if err := writeTable(out, resource.Fields, records); err != nil {
				return err
			}
			if resp.TotalCount >= 0 {
				fmt.Fprintf(out, "\n%d of %d %s\n", len(records), resp.TotalCount, strings.ToLower(resource.Title))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "Page number, starting at 0")
	cmd.Flags().IntVar(&size, "size", 0, "Page size (0 lets the API decide)")
	cmd.Flags().StringArrayVar(&sorts, "sort", nil, "Sort key such as id,desc (repeatable)")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Filter as key=value (repeatable)")
	return cmd
}

func getCommand[T core.Identified](a *app, resource entity.Resource[T], backendOf func() entity.Backend[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: fmt.Sprintf("Show one %s record", resource.Name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := resolve(cmd.Context(), resource, backendOf(), args[0])
			if err != nil {
				return err
			}
			if a.asJSON {
				return writeJSON(cmd.OutOrStdout(), record)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), formatRecord(resource.Fields, record))
			return err
		},
	}
}

func createCommand[T core.Identified](a *app, resource entity.Resource[T], backendOf func() entity.Backend[T]) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "create --set name=value...",
		Short: fmt.Sprintf("Create a %s record", resource.Name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl := entity.NewUpdateController(backendOf(), resource, entity.HistoryFunc(func() {}))
			ctrl.Init(resource.New())
			if err := applySets(ctrl.Form(), resource, sets); err != nil {
				return err
			}

			result := <-ctrl.Save(cmd.Context())
			if result.Err != nil {
				return fmt.Errorf("create %s: %w", resource.Name, result.Err)
			}
			saved, err := savedRecord(result, ctrl.Form(), resource)
			if err != nil {
				return err
			}
			if a.asJSON {
				return writeJSON(cmd.OutOrStdout(), saved)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), formatRecord(resource.Fields, saved))
			return err
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as name=value (repeatable)")
	return cmd
}

func updateCommand[T core.Identified](a *app, resource entity.Resource[T], backendOf func() entity.Backend[T]) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "update <id> --set name=value...",
		Short: fmt.Sprintf("Replace a %s record, printing what changed", resource.Name),
		Long: `Loads the record, applies the given fields and sends the whole record
back. A blank value (name=) clears an optional field.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			be := backendOf()
			current, err := resolve(cmd.Context(), resource, be, args[0])
			if err != nil {
				return err
			}

			ctrl := entity.NewUpdateController(be, resource, entity.HistoryFunc(func() {}))
			ctrl.Init(current)
			if err := applySets(ctrl.Form(), resource, sets); err != nil {
				return err
			}

			result := <-ctrl.Save(cmd.Context())
			if result.Err != nil {
				return fmt.Errorf("update %s %s: %w", resource.Name, args[0], result.Err)
			}
			saved, err := savedRecord(result, ctrl.Form(), resource)
			if err != nil {
				return err
			}
			if a.asJSON {
				return writeJSON(cmd.OutOrStdout(), saved)
			}

			name := resource.Name + "/" + args[0]
			diff, err := recordDiff(name, formatRecord(resource.Fields, current), formatRecord(resource.Fields, saved))
			if err != nil {
				return err
			}
			if diff == "" {
				diff = "No changes\n"
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), diff)
			return err
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as name=value (repeatable)")
	return cmd
}

func patchCommand[T core.Identified](a *app, resource entity.Resource[T], backendOf func() entity.Backend[T]) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "patch <id> --set name=value...",
		Short: fmt.Sprintf("Partially update a %s record", resource.Name),
		Long: `Sends only the given fields as a merge patch; every other field is left
alone by the API. Fields cannot be cleared this way, use update instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if len(sets) == 0 {
				return errors.New("nothing to patch: pass at least one --set name=value")
			}

			form := entity.NewForm(resource.Fields)
			form.Set("id", strconv.FormatInt(id, 10))
			if err := applySets(form, resource, sets); err != nil {
				return err
			}
			record, err := form.Entity(resource.New)
			if err != nil {
				return err
			}

			resp, err := backendOf().PartialUpdate(cmd.Context(), record)
			if err != nil {
				return fmt.Errorf("patch %s %d: %w", resource.Name, id, err)
			}
			if resp != nil && resp.Body != nil {
				record = *resp.Body
			}
			if a.asJSON {
				return writeJSON(cmd.OutOrStdout(), record)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), formatRecord(resource.Fields, record))
			return err
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as name=value (repeatable)")
	return cmd
}

// promptModal answers a delete dialog from the command line.
type promptModal struct {
	result string
}

func (m *promptModal) Dismiss()            { m.result = "" }
func (m *promptModal) Close(result string) { m.result = result }

func deleteCommand[T core.Identified](resource entity.Resource[T], backendOf func() entity.Backend[T]) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: fmt.Sprintf("Delete a %s record", resource.Name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			modal := &promptModal{}
			dialog := entity.NewDeleteDialog(backendOf(), modal, nil)
			out := cmd.OutOrStdout()

			if !yes {
				fmt.Fprintf(out, "Are you sure you want to delete %s %d? [y/N] ", resource.Name, id)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if ans := strings.ToLower(strings.TrimSpace(answer)); ans != "y" && ans != "yes" {
					dialog.Cancel()
					fmt.Fprintln(out, "Cancelled")
					return nil
				}
			}

			if err := dialog.ConfirmDelete(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete %s %d: %w", resource.Name, id, err)
			}
			if modal.result == entity.DeletedResult {
				fmt.Fprintf(out, "Deleted %s %d\n", resource.Name, id)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// resolve loads a record through the route resolver; a missing record
// matches transport.ErrNotFound.
func resolve[T core.Identified](ctx context.Context, resource entity.Resource[T], be entity.Backend[T], raw string) (T, error) {
	var zero T
	if _, err := parseID(raw); err != nil {
		return zero, err
	}

	missing := false
	nav := entity.NavigatorFunc(func(...string) { missing = true })
	res, err := entity.NewResolver(be, resource, nav).Resolve(ctx, entity.RouteParams{"id": raw})
	if err != nil {
		return zero, fmt.Errorf("get %s %s: %w", resource.Name, raw, err)
	}
	if missing || !res.Resolved {
		return zero, fmt.Errorf("%s %s: %w", resource.Name, raw, transport.ErrNotFound)
	}
	return res.Entity, nil
}

// applySets copies name=value pairs into form. The identifier always comes
// from the command arguments.
func applySets[T core.Identified](form *entity.Form[T], resource entity.Resource[T], sets []string) error {
	for _, s := range sets {
		name, value, ok := strings.Cut(s, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return fmt.Errorf("invalid --set %q: want name=value", s)
		}
		field, known := resource.Field(name)
		if !known {
			return fmt.Errorf("unknown %s field %q", resource.Name, name)
		}
		if field.Kind == entity.KindID {
			return fmt.Errorf("field %q cannot be set", name)
		}
		form.Set(name, strings.TrimSpace(value))
	}
	return nil
}

// savedRecord prefers the record echoed by the API over the one sent.
func savedRecord[T core.Identified](result entity.SaveResult[T], form *entity.Form[T], resource entity.Resource[T]) (T, error) {
	if result.Response != nil && result.Response.Body != nil {
		return *result.Response.Body, nil
	}
	return form.Entity(resource.New)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", raw, entity.ErrInvalidIdentifier)
	}
	return id, nil
}
