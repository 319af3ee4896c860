package store

import "database/sql"

// Migrate bootstraps the schema. Statements are idempotent so the API and
// worker can both run it on startup.
func Migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS departments (
		id          UUID PRIMARY KEY,
		name        TEXT UNIQUE NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS employees (
		id            UUID PRIMARY KEY,
		cin           TEXT UNIQUE NOT NULL,
		first_name    TEXT NOT NULL,
		last_name     TEXT NOT NULL,
		email         TEXT UNIQUE NOT NULL,
		function      TEXT NOT NULL DEFAULT '',
		department_id UUID REFERENCES departments(id),
		hire_date     DATE,
		birth_date    DATE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS diplomas (
		id          UUID PRIMARY KEY,
		employee_id UUID NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		title       TEXT NOT NULL,
		school      TEXT NOT NULL DEFAULT '',
		year        INT
	);

	CREATE TABLE IF NOT EXISTS experiences (
		id          UUID PRIMARY KEY,
		employee_id UUID NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		company     TEXT NOT NULL,
		role        TEXT NOT NULL DEFAULT '',
		start_date  DATE,
		end_date    DATE
	);

	CREATE TABLE IF NOT EXISTS trainers (
		id         UUID PRIMARY KEY,
		cin        TEXT UNIQUE NOT NULL,
		name       TEXT NOT NULL,
		type       TEXT NOT NULL DEFAULT 'internal',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS trainings (
		id         UUID PRIMARY KEY,
		theme      TEXT NOT NULL,
		location   TEXT NOT NULL DEFAULT '',
		type       TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL DEFAULT 'pending-validation',
		start_date DATE NOT NULL,
		end_date   DATE NOT NULL,
		trainer_id UUID REFERENCES trainers(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS participations (
		employee_id UUID NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		training_id UUID NOT NULL REFERENCES trainings(id) ON DELETE CASCADE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (employee_id, training_id)
	);

	CREATE TABLE IF NOT EXISTS presences (
		employee_id UUID NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		training_id UUID NOT NULL REFERENCES trainings(id) ON DELETE CASCADE,
		date        DATE NOT NULL,
		status      TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (employee_id, training_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_presences_training ON presences(training_id);
	CREATE INDEX IF NOT EXISTS idx_presences_employee ON presences(employee_id);

	CREATE TABLE IF NOT EXISTS forms (
		id          UUID PRIMARY KEY,
		training_id UUID UNIQUE NOT NULL REFERENCES trainings(id) ON DELETE CASCADE,
		title       TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS questions (
		id       UUID PRIMARY KEY,
		form_id  UUID NOT NULL REFERENCES forms(id) ON DELETE CASCADE,
		text     TEXT NOT NULL,
		position INT NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS possible_answers (
		id          UUID PRIMARY KEY,
		question_id UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		text        TEXT NOT NULL,
		position    INT NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS user_answers (
		employee_id UUID NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		question_id UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		answer_id   UUID NOT NULL REFERENCES possible_answers(id) ON DELETE CASCADE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (employee_id, question_id)
	);
	`
	_, err := db.Exec(schema)
	return err
}
