package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Index is the sqlite bookkeeping over provisioned environments. The
// provisioner records each resolved environment, doctor checks that the index
// opens, and clean drops a purged language's rows; list does not read it. The
// ready markers on disk remain the source of truth for reuse.
type Index struct {
	db *sql.DB
}

// EnvRecord is one provisioned environment as the index remembers it.
type EnvRecord struct {
	Fingerprint string
	Language    string
	Spec        string
	Path        string
	LastUsed    time.Time
}

// OpenIndex opens (creating if necessary) the index database.
func OpenIndex(root *Root) (*Index, error) {
	db, err := sql.Open("sqlite3", root.IndexPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open cache index: %w", err)
	}

	if err := initSchema(db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize index: %w (also failed to close: %w)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize index: %w", err)
	}

	return &Index{db: db}, nil
}

// Close closes the database.
func (i *Index) Close() error {
	if i.db != nil {
		return i.db.Close()
	}
	return nil
}

// RecordEnv inserts or refreshes one environment row.
func (i *Index) RecordEnv(ctx context.Context, rec EnvRecord) error {
	_, err := i.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO envs (fingerprint, language, spec, path, last_used) VALUES (?, ?, ?, ?, ?)",
		rec.Fingerprint, rec.Language, rec.Spec, rec.Path, rec.LastUsed.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record environment %s: %w", rec.Fingerprint, err)
	}
	return nil
}

// TouchEnv refreshes the last-used timestamp for a fingerprint.
func (i *Index) TouchEnv(ctx context.Context, fingerprint string, at time.Time) error {
	_, err := i.db.ExecContext(ctx,
		"UPDATE envs SET last_used = ? WHERE fingerprint = ?",
		at.UTC().Format(time.RFC3339), fingerprint,
	)
	if err != nil {
		return fmt.Errorf("failed to touch environment %s: %w", fingerprint, err)
	}
	return nil
}

// LookupEnv returns the record for a fingerprint, or false when absent.
func (i *Index) LookupEnv(ctx context.Context, fingerprint string) (EnvRecord, bool, error) {
	var rec EnvRecord
	var lastUsed string
	err := i.db.QueryRowContext(ctx,
		"SELECT fingerprint, language, spec, path, last_used FROM envs WHERE fingerprint = ?",
		fingerprint,
	).Scan(&rec.Fingerprint, &rec.Language, &rec.Spec, &rec.Path, &lastUsed)
	if err == sql.ErrNoRows {
		return EnvRecord{}, false, nil
	}
	if err != nil {
		return EnvRecord{}, false, fmt.Errorf("failed to look up environment %s: %w", fingerprint, err)
	}

	rec.LastUsed, _ = time.Parse(time.RFC3339, lastUsed)
	return rec, true, nil
}

// ListEnvs returns every recorded environment, newest last-used first.
func (i *Index) ListEnvs(ctx context.Context) ([]EnvRecord, error) {
	rows, err := i.db.QueryContext(ctx,
		"SELECT fingerprint, language, spec, path, last_used FROM envs ORDER BY last_used DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list environments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []EnvRecord
	for rows.Next() {
		var rec EnvRecord
		var lastUsed string
		if err := rows.Scan(&rec.Fingerprint, &rec.Language, &rec.Spec, &rec.Path, &lastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan environment row: %w", err)
		}
		rec.LastUsed, _ = time.Parse(time.RFC3339, lastUsed)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// DeleteEnv removes the row for one fingerprint.
func (i *Index) DeleteEnv(ctx context.Context, fingerprint string) error {
	_, err := i.db.ExecContext(ctx, "DELETE FROM envs WHERE fingerprint = ?", fingerprint)
	if err != nil {
		return fmt.Errorf("failed to delete environment %s: %w", fingerprint, err)
	}
	return nil
}

// DeleteLanguage removes every row for one language subtree.
func (i *Index) DeleteLanguage(ctx context.Context, language string) error {
	_, err := i.db.ExecContext(ctx, "DELETE FROM envs WHERE language = ?", language)
	if err != nil {
		return fmt.Errorf("failed to delete %s environments: %w", language, err)
	}
	return nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS envs (
		fingerprint TEXT PRIMARY KEY,
		language TEXT NOT NULL,
		spec TEXT NOT NULL,
		path TEXT NOT NULL,
		last_used TEXT NOT NULL
	);`

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		return fmt.Errorf("failed to create envs table: %w", err)
	}
	return nil
}
