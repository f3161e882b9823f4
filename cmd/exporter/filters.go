package main

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"odoo-exporter/internal/filters"
	"odoo-exporter/internal/model"
	"odoo-exporter/internal/pipeline"
)

var filterFlags struct {
	domain, fields string
}

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Manage saved filters",
	Long:  `Saved filters keep a domain and field list under a name so an export can be repeated with --filter.`,
}

// withStore opens the configured filter store for one command
func withStore(fn func(ctx context.Context, store filters.Store) error) error {
	ctx := context.Background()
	store, err := filters.Open(ctx, cfg.Filters)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, store)
}

var filtersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved filters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, store filters.Store) error {
			list, err := store.List(ctx)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				pterm.Info.Println("No saved filters")
				return nil
			}
			rows := [][]string{{"Name", "Domain", "Fields"}}
			for _, f := range list {
				rows = append(rows, []string{f.Name, f.Domain, f.Fields})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		})
	},
}

var filtersShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show one saved filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, store filters.Store) error {
			f, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			pterm.DefaultBox.WithTitle(f.Name).Println(fmt.Sprintf("domain: %s\nfields: %s", f.Domain, f.Fields))
			return nil
		})
	},
}

var filtersSaveCmd = &cobra.Command{
	Use:   "save NAME",
	Short: "Create or replace a saved filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := pipeline.ParseDomain(filterFlags.domain); err != nil {
			return err
		}
		if _, err := pipeline.ParseFields(filterFlags.fields); err != nil {
			return err
		}
		return withStore(func(ctx context.Context, store filters.Store) error {
			f := model.SavedFilter{Name: args[0], Domain: filterFlags.domain, Fields: filterFlags.fields}
			if err := store.Save(ctx, f); err != nil {
				return err
			}
			pterm.Success.Printf("Filter %q saved\n", f.Name)
			return nil
		})
	},
}

var filtersDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a saved filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, store filters.Store) error {
			if err := store.Delete(ctx, args[0]); err != nil {
				return err
			}
			pterm.Success.Printf("Filter %q deleted\n", args[0])
			return nil
		})
	},
}

func init() {
	filtersSaveCmd.Flags().StringVar(&filterFlags.domain, "domain", "", "filter domain")
	filtersSaveCmd.Flags().StringVar(&filterFlags.fields, "fields", "", "list of fields")
	_ = filtersSaveCmd.MarkFlagRequired("fields")

	filtersCmd.AddCommand(filtersListCmd, filtersShowCmd, filtersSaveCmd, filtersDeleteCmd)
	rootCmd.AddCommand(filtersCmd)
}
