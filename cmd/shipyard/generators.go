package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/shipyard/internal/cli"
	"github.com/aretw0/shipyard/internal/presentation/tui"
	"github.com/aretw0/shipyard/pkg/schema"
	"github.com/spf13/cobra"
)

var generatorsCmd = &cobra.Command{
	Use:   "generators",
	Short: "List the available generators",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		svc, closeStore, err := cli.NewService(context.Background(), cfg, logger, cli.ServiceOptions{})
		if err != nil {
			return err
		}
		defer closeStore()

		defs := svc.Catalog.Definitions()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			out := make([]map[string]any, 0, len(defs))
			for _, def := range defs {
				fields := def.Schema
				if fields == nil {
					fields = schema.Schema{}
				}
				out = append(out, map[string]any{
					"kind":     def.Kind,
					"filename": def.Filename,
					"fields":   fields,
					"defaults": def.Defaults,
				})
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		fmt.Fprint(cmd.OutOrStdout(), tui.Render(os.Stdout, tui.CatalogMarkdown(defs)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generatorsCmd)
	generatorsCmd.Flags().Bool("json", false, "Print the catalog as JSON")
}
