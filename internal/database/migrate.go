package database

import (
	"context"
	"database/sql"
	"fmt"
)

// mysqlSchema and sqliteSchema describe the same tables.  Dates travel as
// YYYY-MM-DD strings and times of day as HH:MM[:SS] strings in both.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		firstname VARCHAR(100) NOT NULL,
		lastname VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL,
		password VARCHAR(255) NOT NULL,
		student_id VARCHAR(50) NULL,
		university VARCHAR(255) NULL,
		bio TEXT NULL,
		dark_mode BOOLEAN NOT NULL DEFAULT FALSE,
		email_notifications BOOLEAN NOT NULL DEFAULT TRUE,
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT NULL,
		category VARCHAR(20) NOT NULL DEFAULT 'osobiste',
		priority VARCHAR(20) NOT NULL DEFAULT 'sredni',
		status VARCHAR(20) NOT NULL DEFAULT 'todo',
		due_date DATE NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_tasks_user (user_id),
		CONSTRAINT fk_tasks_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS habits (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		title VARCHAR(255) NOT NULL,
		category VARCHAR(20) NOT NULL DEFAULT 'zdrowie',
		frequency VARCHAR(20) NOT NULL DEFAULT 'daily',
		accent_color VARCHAR(20) NOT NULL DEFAULT 'blue',
		icon VARCHAR(20) NOT NULL DEFAULT 'check',
		points_per_day INT NOT NULL DEFAULT 10,
		streak_days INT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_habits_user (user_id),
		CONSTRAINT fk_habits_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS habit_completions (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		habit_id BIGINT UNSIGNED NOT NULL,
		completion_date DATE NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_completion (habit_id, completion_date),
		CONSTRAINT fk_completions_habit FOREIGN KEY (habit_id) REFERENCES habits(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS calendar_events (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT NULL,
		category VARCHAR(20) NOT NULL DEFAULT 'prywatne',
		event_date DATE NOT NULL,
		start_time TIME NULL,
		end_time TIME NULL,
		all_day BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_events_user_date (user_id, event_date),
		CONSTRAINT fk_events_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		firstname VARCHAR(100) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL DEFAULT '',
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_sessions_token (token_hash),
		CONSTRAINT fk_sessions_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		firstname TEXT NOT NULL,
		lastname TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		student_id TEXT NULL,
		university TEXT NULL,
		bio TEXT NULL,
		dark_mode BOOLEAN NOT NULL DEFAULT 0,
		email_notifications BOOLEAN NOT NULL DEFAULT 1,
		enabled BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NULL,
		category TEXT NOT NULL DEFAULT 'osobiste',
		priority TEXT NOT NULL DEFAULT 'sredni',
		status TEXT NOT NULL DEFAULT 'todo',
		due_date DATE NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id)`,
	`CREATE TABLE IF NOT EXISTS habits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'zdrowie',
		frequency TEXT NOT NULL DEFAULT 'daily',
		accent_color TEXT NOT NULL DEFAULT 'blue',
		icon TEXT NOT NULL DEFAULT 'check',
		points_per_day INTEGER NOT NULL DEFAULT 10,
		streak_days INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_habits_user ON habits(user_id)`,
	`CREATE TABLE IF NOT EXISTS habit_completions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		habit_id INTEGER NOT NULL REFERENCES habits(id),
		completion_date DATE NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (habit_id, completion_date)
	)`,
	`CREATE TABLE IF NOT EXISTS calendar_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NULL,
		category TEXT NOT NULL DEFAULT 'prywatne',
		event_date DATE NOT NULL,
		start_time TEXT NULL,
		end_time TEXT NULL,
		all_day BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_user_date ON calendar_events(user_id, event_date)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash TEXT NOT NULL UNIQUE,
		firstname TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Migrate creates any missing tables.  It is idempotent.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	stmts := mysqlSchema
	if driver == "sqlite3" {
		stmts = sqliteSchema
	}
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
