package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"regexp"

	"go.uber.org/zap"
)

var dbNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// runInitDB connects to the server-level maintenance database and creates the
// configured database when it does not exist yet. PostgreSQL only; a SQLite
// database file is created implicitly on first open.
func runInitDB(args []string) {
	fs := flag.NewFlagSet("initdb", flag.ExitOnError)
	configPath, dbURL := commonFlags(fs)
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

	if cfg.Database.Driver != "postgres" {
		fmt.Printf("Driver %q creates its database on first use; nothing to do.\n",
			cfg.Database.Driver)
		return
	}
	if !dbNameRe.MatchString(cfg.Database.Name) {
		fail(fmt.Errorf("invalid database name %q", cfg.Database.Name))
	}

	maintenanceURL := cfg.Database.MaintenanceURL()
	if *dbURL != "" {
		maintenanceURL = *dbURL
	}

	ctx := context.Background()
	if err := ensureDatabase(ctx, maintenanceURL, cfg.Database.Name, logger); err != nil {
		fail(err)
	}
	fmt.Printf("Database %s initialized successfully.\n", cfg.Database.Name)
}

func ensureDatabase(ctx context.Context, maintenanceURL, name string, logger *zap.Logger) error {
	db, err := sql.Open("pgx", maintenanceURL)
	if err != nil {
		return fmt.Errorf("failed to open maintenance connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to reach maintenance database: %w", err)
	}

	var one int
	err = db.QueryRowContext(ctx,
		"SELECT 1 FROM pg_database WHERE datname = $1", name).Scan(&one)
	if err == nil {
		logger.Info("database already exists", zap.String("database", name))
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check for database %s: %w", name, err)
	}

	// CREATE DATABASE does not take bind parameters; the name was validated
	// against dbNameRe above.
	if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %s", name)); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}

	logger.Info("database created", zap.String("database", name))
	return nil
}
