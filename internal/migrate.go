package internal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Jaypeeeee6/Asset-Tracking-System/internal/assetcode"
)

// migration is one ordered schema step. Steps are applied once, inside a
// transaction, and recorded in schema_migrations by name.
type migration struct {
	name string
	stmt string
}

var migrations = []migration{
	{"0001_buildings", `
		CREATE TABLE IF NOT EXISTS buildings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`},
	{"0002_departments", `
		CREATE TABLE IF NOT EXISTS departments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			building_id INTEGER NOT NULL REFERENCES buildings(id),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(name, building_id)
		)`},
	{"0003_users", `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			department_id INTEGER NOT NULL REFERENCES departments(id),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(name, department_id)
		)`},
	{"0004_users_auth", `
		CREATE TABLE IF NOT EXISTS users_auth (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			encrypted_password TEXT NOT NULL DEFAULT 'DEPRECATED',
			role TEXT NOT NULL CHECK (role IN ('admin', 'purchasing')),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`},
	{"0005_assets", `
		CREATE TABLE IF NOT EXISTS assets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity >= 0),
			price REAL NOT NULL DEFAULT 0.0 CHECK (price >= 0),
			owner TEXT NOT NULL,
			building TEXT NOT NULL,
			department TEXT NOT NULL,
			asset_code TEXT,
			qr_random_code TEXT,
			used_status TEXT NOT NULL DEFAULT 'Not Used',
			asset_type TEXT NOT NULL DEFAULT ''
		)`},
	{"0006_archived_assets", `
		CREATE TABLE IF NOT EXISTS archived_assets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			original_id INTEGER,
			name TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			price REAL NOT NULL DEFAULT 0.0,
			owner TEXT NOT NULL,
			building TEXT NOT NULL,
			department TEXT NOT NULL,
			asset_code TEXT,
			qr_random_code TEXT,
			used_status TEXT NOT NULL DEFAULT 'Not Used',
			asset_type TEXT NOT NULL DEFAULT '',
			archived_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			archived_by TEXT,
			archive_reason TEXT
		)`},
	{"0007_asset_types", `
		CREATE TABLE IF NOT EXISTS asset_types (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`},
	{"0008_asset_names", `
		CREATE TABLE IF NOT EXISTS asset_names (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			asset_type_id INTEGER NOT NULL REFERENCES asset_types(id),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(name, asset_type_id)
		)`},
	{"0009_seed_asset_types", `
		INSERT OR IGNORE INTO asset_types (name) VALUES
			('Electronics'), ('Furniture'), ('Equipment'), ('Vehicles'), ('Others')`},
	{"0010_asset_indexes", `
		CREATE INDEX IF NOT EXISTS idx_assets_pair ON assets(building, department)`},
}

// Migrate applies every pending migration in order, then backfills the
// asset_code and qr_random_code columns on rows that predate them. Running
// it a second time is a no-op.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT NOT NULL UNIQUE,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM schema_migrations WHERE filename = ?`, m.name).Scan(&count); err != nil {
			return fmt.Errorf("check migration %s: %w", m.name, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, m.stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (filename) VALUES (?)`, m.name); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", m.name, err)
		}
	}

	if err := backfillRandomCodes(ctx, db); err != nil {
		return err
	}
	return backfillAssetCodes(ctx, db)
}

// backfillRandomCodes assigns an opaque identifier to rows whose legacy
// qr_random_code is missing.
func backfillRandomCodes(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx,
		`SELECT id FROM assets WHERE qr_random_code IS NULL OR qr_random_code = ''`)
	if err != nil {
		return err
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, id := range ids {
		if _, err := db.ExecContext(ctx,
			`UPDATE assets SET qr_random_code = ? WHERE id = ?`, uuid.NewString(), id); err != nil {
			return err
		}
	}
	return nil
}

// backfillAssetCodes allocates codes for rows whose asset_code is missing.
func backfillAssetCodes(ctx context.Context, db *sql.DB) error {
	type pending struct {
		id                   int64
		building, department string
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, building, department FROM assets WHERE asset_code IS NULL OR asset_code = ''`)
	if err != nil {
		return err
	}
	var todo []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.building, &p.department); err != nil {
			rows.Close()
			return err
		}
		todo = append(todo, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, p := range todo {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		code, err := assetcode.Next(ctx, tx, p.building, p.department)
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE assets SET asset_code = ? WHERE id = ?`, code, p.id); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
