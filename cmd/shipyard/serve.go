package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/shipyard"
	"github.com/aretw0/shipyard/internal/cli"
	"github.com/aretw0/shipyard/internal/config"
	"github.com/aretw0/shipyard/internal/presentation/tui"
	httpAdapter "github.com/aretw0/shipyard/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Serves sessions, uploads and generation over HTTP until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("max-upload-bytes") {
			cfg.MaxUploadBytes, _ = cmd.Flags().GetInt64("max-upload-bytes")
		}
		shared, _ := cmd.Flags().GetBool("shared-baseline")
		quiet, _ := cmd.Flags().GetBool("quiet")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		svc, closeStore, err := cli.NewService(ctx, cfg, logger, cli.ServiceOptions{SharedBaseline: shared})
		if err != nil {
			return err
		}
		defer closeStore()

		handler := httpAdapter.NewHandler(svc.Sessions, svc.Dispatcher,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMaxUploadBytes(cfg.MaxUploadBytes),
		)
		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		if !quiet && tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout, shipyard.Version)
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			cli.PrintSystemMessage(cmd.OutOrStdout(), "Listening on %s", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err

		case <-ctx.Done():
			cli.PrintSystemMessage(cmd.OutOrStdout(), "Shutting down (%v)...", ctx.Signal())

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			cli.PrintSystemMessage(cmd.OutOrStdout(), "Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default from config, :8080)")
	serveCmd.Flags().String("redis-addr", "", "Redis address for the upload store")
	serveCmd.Flags().Int64("max-upload-bytes", config.DefaultMaxUploadBytes, "Largest upload request body accepted")
	serveCmd.Flags().Bool("shared-baseline", true, "Fetch the baseline once for all sessions")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
