package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/taskdeck/taskdeck/internal/migration"
)

func runMigrate(args []string) {
	if len(args) < 1 {
		printMigrateUsage()
		os.Exit(1)
	}

	subcommand := args[0]
	subargs := args[1:]

	switch subcommand {
	case "up", "down", "status", "version", "apply", "revert":
		runMigrateSubcommand(subcommand, subargs)
	case "help", "-h", "--help":
		printMigrateUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown migrate subcommand: %s\n\n", subcommand)
		printMigrateUsage()
		os.Exit(1)
	}
}

func printMigrateUsage() {
	fmt.Println(`Database migration commands

Usage:
  taskdeck migrate <subcommand> [options]

Subcommands:
  up              Apply all pending migrations
  down [--all]    Revert the last migration, or every applied migration
  status          Show the state of every registered migration
  version         Show the most recently applied migration
  apply <key>     Apply a single migration by key (e.g. 0002_todos_add_name)
  revert <key>    Revert a single migration by key
  help            Show this help message

Options:
  --config <path>   Path to configuration file (YAML)
  --db-url <url>    Database connection URL (overrides config)`)
}

func runMigrateSubcommand(subcommand string, args []string) {
	fs := flag.NewFlagSet("migrate "+subcommand, flag.ExitOnError)
	configPath, dbURL := commonFlags(fs)
	all := fs.Bool("all", false, "revert every applied migration")
	if err := fs.Parse(args); err != nil {
		fail(err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fail(err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fail(err)
	}
	defer logger.Sync()

	ctx := context.Background()
	pool, err := startPool(ctx, cfg, *dbURL, logger)
	if err != nil {
		fail(err)
	}
	defer pool.Stop(ctx)

	migrator, err := migration.New(pool, migration.DefaultRegistry(), logger)
	if err != nil {
		fail(err)
	}
	cli := migration.NewCLI(migrator)

	switch subcommand {
	case "up":
		err = cli.RunUp(ctx)
	case "down":
		if *all {
			err = cli.RunDownAll(ctx)
		} else {
			err = cli.RunDown(ctx)
		}
	case "status":
		err = cli.RunStatus(ctx)
	case "version":
		err = cli.RunVersion(ctx)
	case "apply":
		err = runKeyed(ctx, cli.RunApply, fs.Args())
	case "revert":
		err = runKeyed(ctx, cli.RunRevert, fs.Args())
	}
	if err != nil {
		fail(err)
	}
}

// runKeyed dispatches apply/revert, which take a migration key argument.
func runKeyed(ctx context.Context, fn func(context.Context, string) error, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one migration key, got %d arguments", len(args))
	}
	return fn(ctx, args[0])
}
