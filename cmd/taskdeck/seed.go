package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/taskdeck/taskdeck/internal/database"
	"github.com/taskdeck/taskdeck/internal/seed"
)

// runSeed loads sample data through the repositories, or removes it with
// --cleanup.
func runSeed(args []string) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	configPath, dbURL := commonFlags(fs)
	todos := fs.Int("todos", 0, "number of sample todos (default from config)")
	tasks := fs.Int("tasks", 0, "number of sample tasks (default from config)")
	cleanup := fs.Bool("cleanup", false, "remove sample data instead of loading it")
	if err := fs.Parse(args); err != nil {
		fail(err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fail(err)
	}
	if *todos <= 0 {
		*todos = cfg.Seed.Todos
	}
	if *tasks <= 0 {
		*tasks = cfg.Seed.Tasks
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

	loader := seed.NewLoader(database.NewExecutor(pool, logger), logger)

	if *cleanup {
		if err := loader.Cleanup(ctx); err != nil {
			fail(err)
		}
		fmt.Println("Sample data removed.")
		return
	}

	if err := loader.LoadAll(ctx, *todos, *tasks); err != nil {
		fmt.Fprintln(os.Stderr, "Seeding failed; run with --cleanup to remove partial data.")
		fail(err)
	}
	fmt.Printf("Loaded %d todo(s) and %d task(s).\n", *todos, *tasks)
}
