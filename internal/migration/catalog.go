package migration

// DefaultRegistry returns the production manifest for the todo service
// schema. Statements target PostgreSQL.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(Unit{
		Version: 1,
		Name:    "init",
		Up: []string{
			`DO $$ BEGIN
				CREATE TYPE todo_status AS ENUM ('active', 'inactive');
			EXCEPTION
				WHEN duplicate_object THEN null;
			END $$`,
			`DO $$ BEGIN
				CREATE TYPE task_status AS ENUM ('pending', 'complete', 'postponed');
			EXCEPTION
				WHEN duplicate_object THEN null;
			END $$`,
			`DO $$ BEGIN
				CREATE TYPE task_priority AS ENUM ('low', 'medium', 'high');
			EXCEPTION
				WHEN duplicate_object THEN null;
			END $$`,
			`CREATE TABLE IF NOT EXISTS todos (
				todo_id serial PRIMARY KEY,
				owner varchar(120) UNIQUE NOT NULL,
				status todo_status NOT NULL,
				created_at timestamptz NOT NULL DEFAULT NOW(),
				updated_at timestamptz NOT NULL DEFAULT NOW()
			)`,
			`CREATE TABLE IF NOT EXISTS tasks (
				task_id serial PRIMARY KEY,
				brief varchar(300) NOT NULL,
				todo_id int NOT NULL REFERENCES todos(todo_id) ON DELETE CASCADE,
				contents text,
				status task_status NOT NULL DEFAULT 'pending',
				priority task_priority NOT NULL DEFAULT 'low',
				category varchar(100) NOT NULL,
				due timestamptz NOT NULL,
				created_at timestamptz NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at timestamptz NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
		},
		Down: []string{
			`DROP TABLE IF EXISTS tasks`,
			`DROP TABLE IF EXISTS todos`,
			`DROP TYPE IF EXISTS todo_status`,
			`DROP TYPE IF EXISTS task_status`,
			`DROP TYPE IF EXISTS task_priority`,
		},
	})

	r.MustRegister(Unit{
		Version: 2,
		Name:    "todos_add_name",
		Up: []string{
			`ALTER TABLE todos ADD COLUMN name varchar(60) NOT NULL DEFAULT 'Universal Todo'`,
			`ALTER TABLE todos ALTER COLUMN name DROP DEFAULT`,
		},
		Down: []string{
			`ALTER TABLE todos DROP COLUMN name`,
		},
	})

	return r
}
