/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hintlayer/internal/domain"
	applog "hintlayer/internal/log"
	"hintlayer/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName stores all per-session ephemeral/index data under the
	// session root.
	IndexDirName    = ".hly"
	HistoryFileName = "history.sqlite"

	// schemaVersion tracks the local SQLite schema for the history index.
	// Bump on breaking schema changes and add a migration step.
	schemaVersion = 2
)

// HistoryPath returns the full path to the session's history database file.
func HistoryPath(sessionRoot string) string {
	return filepath.Join(sessionRoot, IndexDirName, HistoryFileName)
}

// RunSummary is one recorded placement run.
type RunSummary struct {
	ID          int64
	Scene       string
	Suggestions int
	CreatedAt   string
}

// InitOrOpenHistory ensures the per-session SQLite history exists at
// .hly/history.sqlite, opens the database, enables WAL mode, and ensures
// meta/version and run tables exist. Callers may close the returned *sql.DB
// when no longer needed.
func InitOrOpenHistory(sessionRoot string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "history_init").With(
		slog.String("root", sessionRoot),
	)
	if strings.TrimSpace(sessionRoot) == "" {
		return nil, errors.New("session root is required")
	}
	if err := os.MkdirAll(filepath.Join(sessionRoot, IndexDirName), 0o755); err != nil {
		l.Error("create .hly dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create .hly dir: %w", err)
	}

	path := HistoryPath(sessionRoot)
	uriPath := filepath.ToSlash(path)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", uriPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	if err := ensureHistorySchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure history schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("history index ready", slog.String("path", path))
	return db, nil
}

func ensureHistorySchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			scene        TEXT NOT NULL,
			suggestions  INTEGER NOT NULL,
			created_at   TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_suggestions (
			run_id       INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			suggestion_id TEXT NOT NULL,
			branch_id    TEXT NOT NULL,
			asset_key    TEXT NOT NULL,
			x            REAL NOT NULL,
			y            REAL NOT NULL,
			w            REAL NOT NULL,
			h            REAL NOT NULL,
			anchor_kind  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	// Seed or update single-row version info.
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// Do not downgrade.
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		switch next {
		case 2:
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin migration %d: %w", next, err)
			}
			stmts := []string{
				`CREATE INDEX IF NOT EXISTS idx_run_suggestions_run ON run_suggestions(run_id);`,
				`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);`,
			}
			for _, q := range stmts {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("migration %d stmt failed: %w", next, err)
				}
			}
			if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d update version: %w", next, err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("migration %d commit: %w", next, err)
			}
		default:
			// Unknown future step; nothing to do.
		}
		cur = next
	}
	return nil
}

// RecordRun stores one placement run and its suggestions in the history.
func RecordRun(ctx context.Context, db *sql.DB, scene string, suggestions []domain.Suggestion) (int64, error) {
	if db == nil {
		return 0, errors.New("nil db")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin run tx: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := tx.ExecContext(ctx, `INSERT INTO runs (scene, suggestions, created_at) VALUES(?, ?, ?)`, scene, len(suggestions), now)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("run id: %w", err)
	}
	for _, s := range suggestions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_suggestions (run_id, suggestion_id, branch_id, asset_key, x, y, w, h, anchor_kind) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, s.ID, s.BranchID, s.AssetKey, s.WorldRect.X, s.WorldRect.Y, s.WorldRect.W, s.WorldRect.H, s.Anchor.Kind); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert run suggestion: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent placement runs, newest first.
func ListRuns(ctx context.Context, db *sql.DB, limit int) ([]RunSummary, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx, `SELECT id, scene, suggestions, created_at FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.Scene, &r.Suggestions, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
