package database

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations[i] upgrades the schema from version i to version i+1.
var migrations = [][]string{
	// 1: notes
	{
		`CREATE TABLE notes (
			client_id TEXT PRIMARY KEY,
			server_id INTEGER UNIQUE,
			title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			geotag TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '',
			line_count_hint INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			last_modified INTEGER NOT NULL,
			is_deleted INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX idx_notes_listing ON notes(is_deleted, last_modified)`,
	},
	// 2: comments, attached to exactly one note or one task
	{
		`CREATE TABLE comments (
			id INTEGER PRIMARY KEY,
			note_client_id TEXT REFERENCES notes(client_id) ON DELETE CASCADE,
			task_id INTEGER,
			author_id TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			CHECK ((note_client_id IS NULL) <> (task_id IS NULL))
		)`,
		`CREATE INDEX idx_comments_note ON comments(note_client_id, created_at)`,
		`CREATE INDEX idx_comments_task ON comments(task_id, created_at)`,
	},
	// 3: groups, users and membership
	{
		`CREATE TABLE user_groups (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			owner_id TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			member_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE group_members (
			group_id INTEGER NOT NULL REFERENCES user_groups(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role TEXT NOT NULL DEFAULT 'member',
			PRIMARY KEY (group_id, user_id)
		)`,
	},
	// 4: tasks, notes.group_id
	{
		`CREATE TABLE tasks (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT '',
			author_id TEXT NOT NULL,
			priority TEXT NOT NULL,
			group_id INTEGER,
			assignee_id TEXT NOT NULL DEFAULT '',
			latitude REAL,
			longitude REAL,
			location_name TEXT,
			remind_by_location INTEGER NOT NULL DEFAULT 0,
			deadline_at INTEGER,
			remind_by_time INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			status TEXT NOT NULL
		)`,
		`CREATE INDEX idx_tasks_group ON tasks(group_id)`,
		`CREATE INDEX idx_tasks_assignee ON tasks(assignee_id)`,
		`ALTER TABLE notes ADD COLUMN group_id INTEGER`,
	},
	// 5: dirty tracking and the sync baseline
	{
		`ALTER TABLE notes ADD COLUMN dirty INTEGER NOT NULL DEFAULT 0`,
		`UPDATE notes SET dirty = 1 WHERE server_id IS NULL OR is_deleted = 1`,
		`CREATE INDEX idx_notes_dirty ON notes(dirty) WHERE dirty = 1`,
		`CREATE TABLE sync_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			last_sync_timestamp INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL DEFAULT 0
		)`,
	},
}

// SchemaVersion is the version a fully migrated store reports.
var SchemaVersion = len(migrations)

// Version returns the schema version recorded in the database file.
func (db *DB) Version(ctx context.Context) (int, error) {
	var v int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

// Migrate brings the schema up to SchemaVersion. Each step runs in its own
// transaction together with the version bump.
func (db *DB) Migrate(ctx context.Context) error {
	err := db.migrateFrom(ctx)
	if err == nil {
		return nil
	}
	if !db.opts.DestructiveMigrationFallback {
		return err
	}

	db.logger.Warn("migration failed, recreating database from scratch", "error", err)
	if err := db.dropAll(ctx); err != nil {
		return fmt.Errorf("destructive migration fallback failed: %w", err)
	}
	return db.migrateFrom(ctx)
}

func (db *DB) migrateFrom(ctx context.Context) error {
	current, err := db.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current, SchemaVersion)
	}

	for v := current; v < SchemaVersion; v++ {
		err := db.withTx(ctx, func(tx *sql.Tx) error {
			for _, stmt := range migrations[v] {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			_, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", v+1))
			return err
		})
		if err != nil {
			return fmt.Errorf("migration to version %d failed: %w", v+1, err)
		}
		db.logger.Debug("schema migrated", "version", v+1)
	}

	return nil
}

func (db *DB) dropAll(ctx context.Context) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return err
	}
	defer conn.ExecContext(context.Background(), "PRAGMA foreign_keys = ON")

	rows, err := conn.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return err
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		tables = append(tables, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, table := range tables {
		if _, err := conn.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %q", table)); err != nil {
			return err
		}
	}

	_, err = conn.ExecContext(ctx, "PRAGMA user_version = 0")
	return err
}
