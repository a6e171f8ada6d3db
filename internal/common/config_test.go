package common

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()
	assert.Equal(t, "document_metadata.db", cfg.Database.Path)
	assert.Equal(t, 200, cfg.Extract.PreviewChars)
	assert.True(t, cfg.Watch.SkipHidden)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docmeta.yaml")
	data := []byte(`
database:
  path: /var/lib/docmeta/records.db
log:
  level: debug
  format: json
watch:
  debounce: 2s
metrics:
  addr: ":9100"
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/docmeta/records.db", cfg.Database.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsNonPostgresDSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.DSN = "mysql://localhost/db"
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "CONFIG_ERROR", appErr.Code)
}

func TestUsesPostgres(t *testing.T) {
	assert.True(t, DatabaseConfig{DSN: "postgres://u:p@localhost:5432/db"}.UsesPostgres())
	assert.True(t, DatabaseConfig{DSN: "postgresql://localhost/db"}.UsesPostgres())
	assert.False(t, DatabaseConfig{Path: "x.db"}.UsesPostgres())
}

func TestDatabaseErrorWrapsSentinel(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := DatabaseError("insert record", cause)
	assert.True(t, errors.Is(err, ErrDatabase))
	assert.True(t, errors.Is(err, cause))
	assert.Nil(t, DatabaseError("noop", nil))
}
