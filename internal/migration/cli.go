package migration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

// CLI provides operator-facing output around a Migrator.
type CLI struct {
	migrator *Migrator
	output   io.Writer
}

// NewCLI creates a new CLI instance writing to stdout.
func NewCLI(migrator *Migrator) *CLI {
	return &CLI{
		migrator: migrator,
		output:   os.Stdout,
	}
}

// SetOutput sets the output writer for CLI messages.
func (c *CLI) SetOutput(w io.Writer) {
	c.output = w
}

// RunUp applies all pending migrations.
func (c *CLI) RunUp(ctx context.Context) error {
	fmt.Fprintln(c.output, "Applying migrations...")

	n, err := c.migrator.ApplyAll(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if n == 0 {
		fmt.Fprintln(c.output, "Nothing to apply; all migrations already applied.")
	} else {
		fmt.Fprintf(c.output, "Applied %d migration(s).\n", n)
	}
	return nil
}

// RunDown reverts the most recently applied migration.
func (c *CLI) RunDown(ctx context.Context) error {
	statuses, err := c.migrator.StatusAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	var last *Status
	for i := range statuses {
		if statuses[i].Applied {
			last = &statuses[i]
		}
	}
	if last == nil {
		fmt.Fprintln(c.output, "No migrations applied yet.")
		return nil
	}

	unit, ok := c.migrator.Unit(last.Key())
	if !ok {
		return fmt.Errorf("applied migration %s is not in the manifest", last.Key())
	}

	fmt.Fprintf(c.output, "Reverting %s...\n", unit.Key())
	if err := c.migrator.RevertOne(ctx, unit); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	fmt.Fprintf(c.output, "Reverted %s.\n", unit.Key())
	return nil
}

// RunDownAll reverts all applied migrations in descending order.
func (c *CLI) RunDownAll(ctx context.Context) error {
	fmt.Fprintln(c.output, "Reverting all migrations...")

	n, err := c.migrator.RevertAll(ctx)
	if err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	fmt.Fprintf(c.output, "Reverted %d migration(s).\n", n)
	return nil
}

// RunApply applies a single migration by key.
func (c *CLI) RunApply(ctx context.Context, key string) error {
	unit, ok := c.migrator.Unit(key)
	if !ok {
		return fmt.Errorf("unknown migration %q", key)
	}

	fmt.Fprintf(c.output, "Applying %s...\n", unit.Key())
	err := c.migrator.ApplyOne(ctx, unit)
	if errors.Is(err, ErrAlreadyApplied) {
		fmt.Fprintf(c.output, "Migration %s is already applied.\n", unit.Key())
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintf(c.output, "Applied %s.\n", unit.Key())
	return nil
}

// RunRevert reverts a single migration by key.
func (c *CLI) RunRevert(ctx context.Context, key string) error {
	unit, ok := c.migrator.Unit(key)
	if !ok {
		return fmt.Errorf("unknown migration %q", key)
	}

	fmt.Fprintf(c.output, "Reverting %s...\n", unit.Key())
	if err := c.migrator.RevertOne(ctx, unit); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	fmt.Fprintf(c.output, "Reverted %s.\n", unit.Key())
	return nil
}

// RunStatus prints a table with the state of every registered migration.
func (c *CLI) RunStatus(ctx context.Context) error {
	statuses, err := c.migrator.StatusAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	if len(statuses) == 0 {
		fmt.Fprintln(c.output, "No migrations registered.")
		return nil
	}

	w := tabwriter.NewWriter(c.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tNAME\tSTATUS\tAPPLIED AT")
	fmt.Fprintln(w, "-------\t----\t------\t----------")

	applied := 0
	for _, s := range statuses {
		status := "Pending"
		at := ""
		if s.Applied {
			status = "Applied"
			at = s.AppliedAt.Format("2006-01-02 15:04:05")
			applied++
		}
		fmt.Fprintf(w, "%04d\t%s\t%s\t%s\n", s.Version, s.Name, status, at)
	}
	w.Flush()

	fmt.Fprintln(c.output)
	fmt.Fprintf(c.output, "Total: %d, Applied: %d, Pending: %d\n",
		len(statuses), applied, len(statuses)-applied)

	return nil
}

// RunVersion prints the key of the most recently applied migration.
func (c *CLI) RunVersion(ctx context.Context) error {
	statuses, err := c.migrator.StatusAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	var last *Status
	for i := range statuses {
		if statuses[i].Applied {
			last = &statuses[i]
		}
	}
	if last == nil {
		fmt.Fprintln(c.output, "No migrations applied yet.")
		return nil
	}

	fmt.Fprintf(c.output, "Current migration: %s\n", last.Key())
	return nil
}
