package main

import (
	"context"

	"github.com/aretw0/shipyard/internal/cli"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [kind]",
	Short: "Run a generator once and write the archive",
	Long: `Uploads the given files and directories into a throwaway session, runs the
generator and writes the resulting archive.

Examples:
  shipyard generate full-map --baseline --baseline-dir ./es
  shipyard generate chaos --set seed=42 --upload ./my-plugin/data --out dist`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		kind, _ := cmd.Flags().GetString("kind")
		if len(args) == 1 {
			kind = args[0]
		}
		if kind == "" {
			return cmd.Usage()
		}
		uploads, _ := cmd.Flags().GetStringSlice("upload")
		set, _ := cmd.Flags().GetStringArray("set")
		includeBaseline, _ := cmd.Flags().GetBool("baseline")
		quiet, _ := cmd.Flags().GetBool("quiet")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		svc, closeStore, err := cli.NewService(ctx, cfg, logger, cli.ServiceOptions{})
		if err != nil {
			return err
		}
		defer closeStore()

		_, err = cli.RunGenerate(ctx, svc, cli.GenerateOptions{
			Kind:            kind,
			Uploads:         uploads,
			IncludeBaseline: includeBaseline,
			Set:             set,
			OutDir:          cfg.OutputDir,
			Quiet:           quiet,
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().String("kind", "", "Generator kind (see 'shipyard generators')")
	generateCmd.Flags().StringSliceP("upload", "u", nil, "Data files or directories to upload")
	generateCmd.Flags().Bool("baseline", false, "Include the baseline dataset")
	generateCmd.Flags().StringArray("set", nil, "Generator field as key=value (repeatable)")
	generateCmd.Flags().StringP("out", "o", "", "Output directory (default from config)")
	generateCmd.Flags().BoolP("quiet", "q", false, "Do not print the summary")
}
