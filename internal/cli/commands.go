package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/storage"
)

// NewRootCommand creates the fintrack command tree.
func NewRootCommand() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "fintrack",
		Short: "Personal finance tracker",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(
		newServeCommand(&envFile),
		newMigrateCommand(&envFile),
		newExportCommand(&envFile),
	)
	return rootCmd
}

func newServeCommand(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := Bootstrap(*envFile)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, app)
		},
	}
}

func serve(ctx context.Context, app *App) error {
	cfg := app.Config
	srv := apphttp.NewServer(apphttp.ServerConfig{
		Addr:               ":" + cfg.Port,
		ReadTimeout:        cfg.ReadTimeout,
		WriteTimeout:       cfg.WriteTimeout,
		IdleTimeout:        cfg.IdleTimeout,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, apphttp.FromServices(app.Services, app.Tokens, app.Store), app.Logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Logger.Info("Starting fintrack server", log.FieldOperation, log.OpStartup, "port", cfg.Port, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		app.Logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		app.Logger.Error("Server stopped with error", "error", err)
		return err
	}
	app.Logger.Info("Server stopped gracefully")
	return nil
}

func newMigrateCommand(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := LoadEnvFile(*envFile); err != nil {
				return err
			}
			cfg, err := LoadAndValidateConfig()
			if err != nil {
				return err
			}
			logger := SetupLogger(cfg.LogLevel)

			if err := os.MkdirAll(filepath.Dir(cfg.SQLiteDBPath), 0755); err != nil {
				return fmt.Errorf("create db directory: %w", err)
			}
			if err := storage.RunMigrations(cfg.SQLiteDBPath); err != nil {
				return err
			}
			version, dirty, err := storage.MigrationVersion(cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			logger.Info("Migrations applied", log.FieldOperation, log.OpMigrate, "version", version, "dirty", dirty)
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}
}

func newExportCommand(envFile *string) *cobra.Command {
	var username, period, format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write an account's expense chart for a period to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			win, err := core.ParseWindow(period)
			if err != nil {
				return err
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			app, err := Bootstrap(*envFile)
			if err != nil {
				return err
			}
			defer app.Close()

			acc, _, err := app.Store.GetCredentials(cmd.Context(), username)
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("no account named %q", username)
			}
			if err != nil {
				return err
			}

			p := auth.Principal{AccountID: acc.ID, Username: acc.Username}
			chart, filename, err := app.Services.Reports.Export(cmd.Context(), p, win, f)
			if err != nil {
				return err
			}
			if out == "" {
				out = filename
			}
			if err := os.WriteFile(out, chart.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(chart.Data))
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "account to export")
	cmd.Flags().StringVar(&period, "period", "monthly", "weekly, monthly or yearly")
	cmd.Flags().StringVar(&format, "format", "pdf", "pdf or jpg")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (defaults to expenses_<period>.<ext>)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
