package migrate

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/orris-inc/licensegate/internal/infrastructure/config"
	"github.com/orris-inc/licensegate/internal/infrastructure/database"
	"github.com/orris-inc/licensegate/internal/infrastructure/migration"
	"github.com/orris-inc/licensegate/internal/shared/constants"
	"github.com/orris-inc/licensegate/internal/shared/logger"
)

const scriptsDir = "./internal/infrastructure/migration/scripts"

var (
	env        string
	configPath string
	strategy   string
	name       string
	steps      int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations including running migrations, checking status, and creating new migration files.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.PersistentFlags().StringVar(&strategy, "strategy", migration.StrategyGoose, "Migration strategy (goose, golang-migrate, auto)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newCreateCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		Long:  `Apply all pending database migrations to bring the database schema up to date.`,
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		Long:  `Rollback a specified number of database migrations.`,
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  `Display the current migration version of the database.`,
		RunE:  runStatus,
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration",
		Long:  `Create new goose and golang-migrate files with the specified name.`,
		RunE:  runCreate,
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration (required)")
	cmd.MarkFlagRequired("name")

	return cmd
}

// initEnv loads config, the logger and the database and returns the
// migration manager for the selected strategy.
func initEnv() (*migration.Manager, logger.Interface, error) {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := database.Init(&cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	manager, err := migration.NewManager(strategy, database.Get())
	if err != nil {
		database.Close()
		return nil, nil, err
	}

	return manager, log, nil
}

func runUp(cmd *cobra.Command, args []string) error {
	manager, log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	log.Infow("running up migrations", "environment", env, "strategy", manager.GetStrategy().GetName())

	if err := manager.Migrate(database.Get(), migration.AutoMigrateModels()...); err != nil {
		log.Errorw("migration failed", "error", err)
		return err
	}

	log.Infow("migrations completed successfully")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	manager, log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	log.Infow("running down migrations", "environment", env, "steps", steps)

	if err := manager.Down(database.Get(), steps); err != nil {
		log.Errorw("down migration failed", "error", err)
		return fmt.Errorf("down migration failed: %w", err)
	}

	log.Infow("down migration completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	manager, log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	log.Infow("checking migration status", "environment", env)

	version, err := manager.Version(database.Get())
	if err != nil {
		log.Errorw("failed to get migration version", "error", err)
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nMigration Status:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  Environment:     %s\n", env)
	fmt.Fprintf(cmd.OutOrStdout(), "  Strategy:        %s\n", manager.GetStrategy().GetName())
	fmt.Fprintf(cmd.OutOrStdout(), "  Current Version: %d\n", version)
	return nil
}

// runCreate only writes files, so it needs neither config nor a database.
func runCreate(cmd *cobra.Command, args []string) error {
	scriptsPath, err := filepath.Abs(scriptsDir)
	if err != nil {
		return fmt.Errorf("failed to get scripts path: %w", err)
	}

	paths, err := migration.NewGenerator(scriptsPath).CreateMigration(name)
	if err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}

	for _, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", p)
	}
	return nil
}
