package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/shipyard/internal/cli"
	"github.com/aretw0/shipyard/pkg/baseline"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <data-dir>",
	Short: "Write the baseline manifest for a data folder",
	Long: `Lists every data file of an Endless Sky data folder, in the form the baseline
loader reads back. Files under _deprecated folders are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := baseline.DefaultManifestOptions()
		if cmd.Flags().Changed("prefix") {
			opts.Prefix, _ = cmd.Flags().GetString("prefix")
		}
		if include, _ := cmd.Flags().GetStringSlice("include"); len(include) > 0 {
			opts.Include = include
		}
		if exclude, _ := cmd.Flags().GetStringSlice("exclude"); len(exclude) > 0 {
			opts.Exclude = exclude
		}

		entries, err := baseline.BuildManifest(os.DirFS(args[0]), opts)
		if err != nil {
			return err
		}
		text := baseline.FormatManifest(entries)

		out, _ := cmd.Flags().GetString("output")
		if out == "" || out == "-" {
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.ErrOrStderr(), "Wrote %d entries to %s", len(entries), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().StringP("output", "o", "", "Manifest file to write (default stdout)")
	snapshotCmd.Flags().String("prefix", "", "Prefix for every entry (default es_stable_data/)")
	snapshotCmd.Flags().StringSlice("include", nil, "Include patterns (default **/*.txt)")
	snapshotCmd.Flags().StringSlice("exclude", nil, "Exclude patterns (default _deprecated folders)")
}
