package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// step is one forward-only schema change, loaded from schema/NNNN_name.sql.
// The database stores the last applied step in PRAGMA user_version.
type step struct {
	version int
	name    string
	sql     string
}

// schemaSteps returns every embedded step in version order. Versions must
// start at 1 and have no gaps.
func schemaSteps() ([]step, error) {
	return readSteps(schemaFS, "schema/*.sql")
}

func readSteps(fsys fs.FS, pattern string) ([]step, error) {
	files, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("listing schema files: %w", err)
	}

	steps := make([]step, len(files))
	seen := make([]bool, len(files)+1)
	for _, file := range files {
		version, name, err := parseStepName(path.Base(file))
		if err != nil {
			return nil, fmt.Errorf("schema file %q: %w", file, err)
		}
		if version > len(files) {
			return nil, fmt.Errorf("schema file %q: version %d leaves a gap (only %d files)", file, version, len(files))
		}
		if seen[version] {
			return nil, fmt.Errorf("schema file %q: version %d is used twice", file, version)
		}
		seen[version] = true

		body, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		steps[version-1] = step{version: version, name: name, sql: string(body)}
	}
	return steps, nil
}

// parseStepName splits "0002_kv_expiry_index.sql" into 2 and "kv_expiry_index".
func parseStepName(file string) (int, string, error) {
	base, ok := strings.CutSuffix(file, ".sql")
	if !ok {
		return 0, "", fmt.Errorf("want a .sql file")
	}

	num, name, ok := strings.Cut(base, "_")
	if !ok || name == "" {
		return 0, "", fmt.Errorf("want NNNN_name.sql")
	}

	version, err := strconv.Atoi(num)
	if err != nil || version < 1 {
		return 0, "", fmt.Errorf("version %q must be a positive integer", num)
	}
	return version, name, nil
}

func schemaVersion(ctx context.Context, conn *sql.DB) (int, error) {
	var v int
	if err := conn.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// upgradeSchema applies every step newer than the database's user_version.
// A database written by a newer kpi build is refused rather than touched.
func upgradeSchema(ctx context.Context, conn *sql.DB) error {
	steps, err := schemaSteps()
	if err != nil {
		return err
	}

	current, err := schemaVersion(ctx, conn)
	if err != nil {
		return err
	}
	if current > len(steps) {
		return fmt.Errorf("database schema v%d is newer than this build supports (v%d)", current, len(steps))
	}

	for _, s := range steps[current:] {
		log.Debug().Int("version", s.version).Str("name", s.name).Msg("upgrading schema")
		if err := applyStep(ctx, conn, s); err != nil {
			return fmt.Errorf("schema step %04d (%s): %w", s.version, s.name, err)
		}
	}
	return nil
}

// applyStep runs the step and bumps user_version in one transaction, so a
// failed step leaves the version where it was.
func applyStep(ctx context.Context, conn *sql.DB, s step) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.sql); err != nil {
		return err
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", s.version)); err != nil {
		return fmt.Errorf("recording version: %w", err)
	}
	return tx.Commit()
}
