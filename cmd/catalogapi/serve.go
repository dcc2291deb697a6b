package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/shipq/catalogapi/catalog"
	"github.com/shipq/catalogapi/dbconn"
	"github.com/shipq/catalogapi/doughnuts"
	"github.com/shipq/catalogapi/httpapi"
	"github.com/shipq/catalogapi/internal/config"
	"github.com/shipq/catalogapi/logging"
	"github.com/shipq/catalogapi/query"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	var (
		configDir string
		addr      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server.

Configuration is read from catalogapi.toml and .env in the config
directory, then from the environment. The server stops gracefully on
SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "Directory holding catalogapi.toml and .env (default: current directory)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overriding the configured one")
	return cmd
}

// buildHandler wires the services behind the router.
func buildHandler(cfg *config.Config, logger *slog.Logger) (http.Handler, error) {
	src, err := doughnuts.OpenSource(doughnutLocation(cfg), afero.NewOsFs(), cfg.Doughnuts.S3)
	if err != nil {
		return nil, err
	}

	exec := query.NewExecutor(dbconn.New(cfg.DB), logger)
	return httpapi.NewRouter(
		catalog.New(exec, logger),
		doughnuts.New(src, logger),
		logger,
	), nil
}

// doughnutLocation resolves relative file sources against the config dir.
func doughnutLocation(cfg *config.Config) string {
	loc := cfg.Doughnuts.Source
	if strings.HasPrefix(loc, "s3://") || filepath.IsAbs(loc) {
		return loc
	}
	return filepath.Join(cfg.ConfigDir, loc)
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	handler, err := buildHandler(cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Server.Addr, "db", cfg.DB.String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
