package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, FormatText, cfg.App.Format)
	assert.Equal(t, "keystop", cfg.Annotation.DefaultKind)
	assert.Equal(t, slog.LevelInfo, cfg.App.LogLevel.Level)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  log_level: DEBUG
  format: json
document:
  path: /tmp/doc.json
annotation:
  default_kind: label
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, cfg.App.LogLevel.Level)
	assert.Equal(t, FormatJSON, cfg.App.Format)
	assert.Equal(t, "/tmp/doc.json", cfg.Document.Path)
	assert.Equal(t, "label", cfg.Annotation.DefaultKind)
}

func TestLoad_InvalidFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  format: xml\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_UnknownKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("annotation:\n  default_kind: sticker\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app: [broken\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
