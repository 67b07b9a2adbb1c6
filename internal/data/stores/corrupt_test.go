package stores

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/kpi/internal/data/db"
)

func TestIsCorruptionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("disk full"), false},
		{"malformed message", fmt.Errorf("open: %w", errors.New("database disk image is malformed")), true},
		{"not a database message", errors.New("file is not a database (26)"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCorruptionError(tt.err))
		})
	}
}

func TestOpen_GarbageFileIsCorruption(t *testing.T) {
	dir := t.TempDir()
	garbage := make([]byte, 4096)
	for i := range garbage {
		garbage[i] = 0x5a
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, db.FileName), garbage, 0o600))

	opts := db.DefaultOpenOptions()
	opts.PingTimeout = 200 * time.Millisecond
	_, err := db.Open(dir, opts)
	require.Error(t, err)
	assert.True(t, IsCorruptionError(err), "got %v", err)
}

func TestRecoverFromCorruption_MovesFilesAside(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, db.FileName)
	for _, suffix := range []string{"", "-wal", "-shm"} {
		require.NoError(t, os.WriteFile(base+suffix, []byte("bad"+suffix), 0o600))
	}

	stamp := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	backup, err := RecoverFromCorruption(dir, stamp)
	require.NoError(t, err)
	assert.Equal(t, base+".corrupt.20260301-093000", backup)

	for _, suffix := range []string{"", "-wal", "-shm"} {
		assert.NoFileExists(t, base+suffix)
		data, err := os.ReadFile(backup + suffix)
		require.NoError(t, err)
		assert.Equal(t, "bad"+suffix, string(data))
	}

	database, err := db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err)
	assert.NoError(t, database.Close())
}

func TestRecoverFromCorruption_MissingFiles(t *testing.T) {
	backup, err := RecoverFromCorruption(t.TempDir(), time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, backup)
}
