package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"odoo-exporter/internal/odoo"
)

var pingCmd = &cobra.Command{
	Use:   "ping URL",
	Short: "Check that an Odoo server answers XML-RPC",
	Long:  `ping calls version() on the server's common endpoint. It needs no credentials.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := odoo.NewClient(args[0], odoo.WithCallTimeout(cfg.Odoo.CallTimeout))
		info, err := client.Version(context.Background())
		if err != nil {
			pterm.Error.Printf("%s did not answer: %v\n", client.BaseURL(), err)
			return fmt.Errorf("ping failed")
		}

		keys := make([]string, 0, len(info))
		for k := range info {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]pterm.BulletListItem, 0, len(keys))
		for _, k := range keys {
			items = append(items, pterm.BulletListItem{Level: 0, Text: fmt.Sprintf("%s: %v", k, info[k])})
		}
		pterm.Success.Printf("%s is reachable\n", client.BaseURL())
		return pterm.DefaultBulletList.WithItems(items).Render()
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
