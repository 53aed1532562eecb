/*-------------------------------------------------------------------------
 *
 * migrations.go
 *    File-based schema migrations for FormGen
 *
 * Applies .sql files from the migrations directory in lexical order,
 * tracking applied files in formgen.schema_migrations.
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/db/migrations.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/formgen/server/internal/metrics"
)

type MigrationRunner struct {
	db  *sqlx.DB
	dir string
}

/* NewMigrationRunner creates a runner for the given migrations directory */
func NewMigrationRunner(db *sqlx.DB, dir string) (*MigrationRunner, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("migrations directory unavailable: dir='%s', error=%w", dir, err)
	}
	return &MigrationRunner{db: db, dir: dir}, nil
}

/* Run applies all pending migrations */
func (m *MigrationRunner) Run(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, `CREATE SCHEMA IF NOT EXISTS formgen`); err != nil {
		return fmt.Errorf("migration bootstrap failed: schema creation error, error=%w", err)
	}
	if _, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS formgen.schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("migration bootstrap failed: tracking table error, error=%w", err)
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return fmt.Errorf("migration scan failed: dir='%s', error=%w", m.dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		var applied bool
		err := m.db.GetContext(ctx, &applied,
			`SELECT EXISTS(SELECT 1 FROM formgen.schema_migrations WHERE filename = $1)`, name)
		if err != nil {
			return fmt.Errorf("migration check failed: file='%s', error=%w", name, err)
		}
		if applied {
			continue
		}

		sqlBytes, err := os.ReadFile(filepath.Join(m.dir, name))
		if err != nil {
			return fmt.Errorf("migration read failed: file='%s', error=%w", name, err)
		}

		tx, err := m.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("migration transaction failed: file='%s', error=%w", name, err)
		}
		if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration apply failed: file='%s', error=%w", name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO formgen.schema_migrations (filename) VALUES ($1)`, name); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration record failed: file='%s', error=%w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration commit failed: file='%s', error=%w", name, err)
		}

		metrics.InfoWithContext(ctx, "Migration applied", map[string]interface{}{
			"file": name,
		})
	}

	return nil
}
