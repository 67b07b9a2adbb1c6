package stores

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/hay-kot/kpi/internal/data/db"
)

var corruptionMessages = []string{
	"database disk image is malformed",
	"file is not a database",
}

// IsCorruptionError reports whether err means kpi.db is unreadable and
// should be moved aside. Permission and busy errors are not corruption.
func IsCorruptionError(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		// extended result codes keep the primary code in the low byte
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB:
			return true
		}
		return false
	}

	msg := err.Error()
	for _, m := range corruptionMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// RecoverFromCorruption renames kpi.db and its WAL and SHM files to
// kpi.db.corrupt.<stamp> so the next Open starts from an empty database.
// It returns the backup path of the main file.
func RecoverFromCorruption(dataDir string, now time.Time) (string, error) {
	src := filepath.Join(dataDir, db.FileName)
	dst := fmt.Sprintf("%s.corrupt.%s", src, now.Format("20060102-150405"))

	if err := moveAside(src, dst, false); err != nil {
		return "", fmt.Errorf("back up database: %w", err)
	}
	// A leftover WAL would be replayed into the new database.
	for _, sidecar := range []string{"-wal", "-shm"} {
		if err := moveAside(src+sidecar, dst+sidecar, true); err != nil {
			return "", fmt.Errorf("back up %s file: %w", strings.TrimPrefix(sidecar, "-"), err)
		}
	}
	return dst, nil
}

func moveAside(from, to string, removeOnFailure bool) error {
	err := os.Rename(from, to)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if removeOnFailure {
		if rmErr := os.Remove(from); rmErr == nil || errors.Is(rmErr, fs.ErrNotExist) {
			return nil
		}
	}
	return err
}
