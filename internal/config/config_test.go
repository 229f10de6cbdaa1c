package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Limits.MaxFiles)
	assert.Equal(t, int64(10<<20), cfg.Limits.MaxImageBytes)
	assert.Equal(t, int64(100<<20), cfg.Limits.MaxVideoBytes)
	assert.Equal(t, int64(80<<20), cfg.Limits.DirectLimit)
	assert.Equal(t, "media", cfg.Storage.Bucket)
	assert.Equal(t, "ffmpeg", cfg.Previews.FFmpegPath)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
limits:
  max_files: 5
  max_image_bytes: 1048576
storage:
  endpoint: https://s3.example.com
  bucket: photos
previews:
  native_heic: true
db_path: /tmp/test.db
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Limits.MaxFiles)
	assert.Equal(t, int64(1<<20), cfg.Limits.MaxImageBytes)
	assert.Equal(t, "https://s3.example.com", cfg.Storage.Endpoint)
	assert.Equal(t, "photos", cfg.Storage.Bucket)
	assert.True(t, cfg.Previews.NativeHEIC)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	// Untouched fields keep defaults.
	assert.Equal(t, int64(100<<20), cfg.Limits.MaxVideoBytes)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  bucket: from-file\n"), 0o600))

	t.Setenv("MEDIAUP_S3_BUCKET", "from-env")
	t.Setenv("MEDIAUP_MAX_FILES", "7")
	t.Setenv("MEDIAUP_NATIVE_HEIC", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Storage.Bucket)
	assert.Equal(t, 7, cfg.Limits.MaxFiles)
	assert.True(t, cfg.Previews.NativeHEIC)
}

func TestLoad_InvalidEnvValuesIgnored(t *testing.T) {
	t.Setenv("MEDIAUP_MAX_FILES", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Limits.MaxFiles)
}

func TestLoad_MissingFileIsError(t *testing.T) {
	_, err := Load("/no/such/config.yaml")
	assert.Error(t, err)
}
