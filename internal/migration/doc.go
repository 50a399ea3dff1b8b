/*
Package migration applies and reverts versioned, reversible schema changes
against a live database, tracking applied state in a schema_migrations table.

# Manifest

Units are registered explicitly in a Registry at startup: each unit carries a
numeric version, a snake_case name, and ordered lists of forward and reverse
SQL statements. The registry rejects duplicate versions and malformed units at
registration time, so a bad manifest aborts startup rather than failing
mid-run. DefaultRegistry holds the production catalog.

# State machine

Each unit is either unapplied or applied; ApplyOne and RevertOne are the only
transitions. A unit's statements and its tracking record commit inside one
transaction, so the tracking table always matches the schema operations that
actually succeeded: no record without a durable forward operation, no durable
operation without a record.

ApplyAll walks the manifest in ascending version order and RevertAll in
descending order; both skip units already in the target state and stop at the
first failure, reporting the failing unit via *UnitError.

The engine is run from the operator CLI path and assumes it is the only
writer; concurrent migration runs are not supported.
*/
package migration
