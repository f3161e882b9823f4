// Command exporter runs Odoo exports from the terminal and manages saved
// filters. It shares configuration and the export pipeline with the API.
package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"odoo-exporter/internal/config"
	exporterrors "odoo-exporter/internal/errors"
)

var (
	configDir string
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:           "exporter",
	Short:         "Export Odoo records to spreadsheets",
	Long:          `exporter reads records of any Odoo model over XML-RPC, resolves relational fields to their display labels and writes them to an .xlsx, .csv or .json file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configDir)
		return err
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if kind := exporterrors.KindOf(err); kind != "" {
			pterm.Error.Printf("[%s] %v\n", kind, err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "directory holding config.yaml")
}
