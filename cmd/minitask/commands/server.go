package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/minitask/client/internal/adapters/repository"
	"github.com/minitask/client/internal/infrastructure/database"
	"github.com/minitask/client/internal/infrastructure/server"
	"github.com/minitask/client/internal/ports"
)

// NewServeCommand creates the serve command
func NewServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the reference MiniTask API server",
		Long:  "Start the reference task service the client talks to, backed by memory or postgres storage.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), opts)
		},
	}
}

func runServer(ctx context.Context, opts *rootOptions) error {
	cfg, appLogger, err := loadConfig(opts)
	if err != nil {
		return err
	}
	defer appLogger.Close()

	if err := cfg.ValidateServer(); err != nil {
		return usagef("invalid server configuration: %v", err)
	}

	var (
		repos ports.Repositories
		db    *database.DB
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = database.New(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		m, err := db.NewMigrator()
		if err != nil {
			return err
		}
		if _, err := m.Up(); err != nil {
			return err
		}
		if err := repository.SeedPostgres(ctx, db.DB); err != nil {
			return err
		}
		repos = repository.NewPostgres(db.DB)
	default:
		repos = repository.NewMemory()
	}

	srv, err := server.New(cfg, repos, db, appLogger)
	if err != nil {
		return err
	}

	appLogger.Infow("Starting MiniTask API server",
		"address", cfg.Server.GetAddr(),
		"environment", cfg.App.Environment,
		"storage", cfg.Database.Driver,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand(opts *rootOptions) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage the reference API's postgres schema (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd, opts, "up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd, opts, "down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(opts, func(m *database.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Current migration version: %d\n", version)
				fmt.Fprintf(cmd.OutOrStdout(), "Dirty: %t\n", dirty)
				return nil
			})
		},
	})

	return migrateCmd
}

func runMigration(cmd *cobra.Command, opts *rootOptions, direction string) error {
	return withMigrator(opts, func(m *database.Migrator) error {
		var (
			changed bool
			err     error
		)
		switch direction {
		case "up":
			changed, err = m.Up()
		case "down":
			changed, err = m.Down()
		default:
			return fmt.Errorf("unknown migration direction %q", direction)
		}
		if err != nil {
			return err
		}

		if !changed {
			fmt.Fprintln(cmd.OutOrStdout(), "No migrations to run")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Migration %s completed successfully\n", direction)
		}
		return nil
	})
}

func withMigrator(opts *rootOptions, fn func(*database.Migrator) error) error {
	cfg, appLogger, err := loadConfig(opts)
	if err != nil {
		return err
	}
	defer appLogger.Close()

	if cfg.Database.Driver != "postgres" {
		return errors.New("migrations need database.driver=postgres")
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := db.NewMigrator()
	if err != nil {
		return err
	}
	return fn(m)
}
