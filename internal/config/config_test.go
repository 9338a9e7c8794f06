package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 5, cfg.Fetch.MaxRetries)
	require.Equal(t, 1000, cfg.Pipeline.BatchSize)
	require.Equal(t, 10, cfg.Pipeline.Concurrency)
	require.Equal(t, 10, cfg.Pipeline.DefaultTopWords)
	require.Equal(t, 1000, cfg.Pipeline.MaxURLs)
	require.Contains(t, cfg.Vocabulary.SourceURL, "words.txt")
	require.Equal(t, "data/processed_links.json", cfg.Storage.CachePath)
	require.Equal(t, 2*time.Second, cfg.BackoffBase())
	require.Equal(t, 15*time.Second, cfg.FetchTimeout())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  port: 9090
pipeline:
  batch_size: 50
  concurrency: 2
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 50, cfg.Pipeline.BatchSize)
	require.Equal(t, 2, cfg.Pipeline.Concurrency)
	require.Equal(t, 5, cfg.Fetch.MaxRetries, "untouched keys keep defaults")
}

func TestLoad_InvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline:\n  batch_size: -1\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "batch_size")
}

func TestValidate_RejectsMissingStoragePaths(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Storage.CachePath = ""
	require.Error(t, cfg.Validate())
}
