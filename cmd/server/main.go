package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alanyang/product-catalog/internal/config"
	"github.com/alanyang/product-catalog/internal/wire"
)

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	var cfg config.Config

	root := &cobra.Command{
		Use:           "product-catalog",
		Short:         "Product catalog HTTP + MCP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(v)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			slog.SetDefault(newLogger(cfg.Log))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (yaml, json or toml)")
	flags.Int("port", 3000, "HTTP listen port")
	flags.String("store", config.StorePostgres, "store backend: postgres|memory")
	flags.String("log-level", "info", "log level: debug|info|warn|error")

	_ = v.BindPFlag("config", flags.Lookup("config"))
	_ = v.BindPFlag("port", flags.Lookup("port"))
	_ = v.BindPFlag("store", flags.Lookup("store"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	config.SetDefaults(v)

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Migrate(cmd.Context(), cfg); err != nil {
				return err
			}
			slog.Info("migrations applied")
			return nil
		},
	})

	return root
}

func newLogger(lc config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: lc.SlogLevel()}
	if lc.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func serve(parent context.Context, cfg config.Config) error {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := wire.Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	defer app.Close()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", app.Server.Addr, "store", cfg.Store, "mcp", cfg.MCPEnabled)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case serveErr = <-errCh:
		if serveErr != nil {
			slog.Error("HTTP server error", "error", serveErr)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("product-catalog server stopped")
	return serveErr
}
