package db

import "fmt"

// migrate runs all database migrations
func (db *DB) migrate() error {
	migrations := []string{
		migrationCreateTasks,
		migrationCreateSchedule,
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

// Timestamps are RFC 3339 text so the same schema runs on SQLite and PostgreSQL.

const migrationCreateTasks = `
CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL,
    memo TEXT NOT NULL DEFAULT '',
    links TEXT NOT NULL DEFAULT '[]',
    is_completed BOOLEAN NOT NULL DEFAULT FALSE,
    sort_order INTEGER,
    date TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_type_date ON tasks(type, date);
`

const migrationCreateSchedule = `
CREATE TABLE IF NOT EXISTS schedule (
    id TEXT PRIMARY KEY,
    date TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_schedule_date ON schedule(date);
`
