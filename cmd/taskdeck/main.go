// Command taskdeck is the operator entry point for the todo service data
// layer.
//
// Usage:
//
//	taskdeck migrate up                  # apply all pending migrations
//	taskdeck migrate down [--all]        # revert the last (or every) migration
//	taskdeck migrate status              # show per-migration state
//	taskdeck migrate version             # show the current migration
//	taskdeck migrate apply <key>         # apply a single migration by key
//	taskdeck migrate revert <key>        # revert a single migration by key
//	taskdeck initdb                      # create the target database if missing
//	taskdeck seed [--todos N --tasks M]  # load sample data
//	taskdeck seed --cleanup              # remove sample data
//	taskdeck version                     # show build information
//
// Every subcommand accepts --config <path> and --db-url <url>.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/taskdeck/taskdeck/config"
	"github.com/taskdeck/taskdeck/internal/database"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx database/sql driver
	_ "modernc.org/sqlite"             // register pure-Go SQLite driver
)

// Build metadata, injected via -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "migrate":
		runMigrate(os.Args[2:])
	case "initdb":
		runInitDB(os.Args[2:])
	case "seed":
		runSeed(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`taskdeck - todo service data layer

Usage:
  taskdeck <command> [options]

Commands:
  migrate   Apply, revert, and inspect database migrations
  initdb    Create the target database if it does not exist
  seed      Load or remove sample data
  version   Show build information
  help      Show this help message

Options (all commands):
  --config <path>   Path to configuration file (YAML)
  --db-url <url>    Database connection URL (overrides config)`)
}

func printVersion() {
	fmt.Printf("taskdeck %s (built %s, commit %s)\n", Version, BuildTime, GitCommit)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// commonFlags registers the flags shared by every subcommand on fs and
// returns their destinations.
func commonFlags(fs *flag.FlagSet) (configPath, dbURL *string) {
	configPath = fs.String("config", "", "path to configuration file")
	dbURL = fs.String("db-url", "", "database connection URL override")
	return configPath, dbURL
}

func loadConfig(configPath string) (*config.Config, error) {
	loader := config.NewLoader()
	if configPath != "" {
		loader = loader.WithConfigPath(configPath)
	}
	return loader.Load()
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// poolConfig translates the file configuration into pool parameters,
// honoring a --db-url override.
func poolConfig(db config.DatabaseConfig, urlOverride string) database.Config {
	dsn := db.URL()
	if urlOverride != "" {
		dsn = urlOverride
	}
	return database.Config{
		DriverName:      db.DriverName(),
		DSN:             dsn,
		MinConns:        db.MinConns,
		MaxConns:        db.MaxConns,
		AcquireTimeout:  db.AcquireTimeout,
		ConnMaxLifetime: db.ConnMaxLifetime,
	}
}

// startPool builds and starts a pool for a one-shot CLI operation.
func startPool(ctx context.Context, cfg *config.Config, urlOverride string, logger *zap.Logger) (*database.Pool, error) {
	pool := database.NewPool(poolConfig(cfg.Database, urlOverride), logger)
	if err := pool.Start(ctx); err != nil {
		return nil, err
	}
	return pool, nil
}
