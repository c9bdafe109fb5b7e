package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/champa/scrapbook/server/storage"
	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"
)

func envLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyEnv(envLookup(nil))
	require.NoError(t, cfg.Finish(logs.NewTestingLog(t)))
	require.Equal(t, DefaultSessionSecret, cfg.SessionSecret)
	require.Equal(t, "", cfg.PasswordHash)
	require.False(t, cfg.Production)
	require.Equal(t, DefaultContentDir, cfg.ContentDir)
	require.Equal(t, 3600, cfg.CacheTTLSeconds)
	require.Equal(t, DefaultMediaDir, cfg.MediaStorage.Filesystem.Root)
	require.Equal(t, filepath.Join("content", "media-manifest.json"), cfg.ManifestPath())
	require.Equal(t, filepath.Join("content", "captions.generated.json"), cfg.CaptionsPath())
}

func TestConfigEnvironment(t *testing.T) {
	cfg := &Config{
		SessionSecret: "from-file",
		MediaStorage: StorageConfig{
			GCS: &StorageConfigGCS{Bucket: "photos"},
		},
	}
	cfg.ApplyEnv(envLookup(map[string]string{
		EnvSessionSecret: "from-env",
		EnvPasswordHash:  " scrypt:abcd:0011 ",
		EnvEnvironment:   "production",
		EnvMediaDir:      "/srv/media",
	}))
	require.NoError(t, cfg.Finish(logs.NewTestingLog(t)))
	require.Equal(t, "from-env", cfg.SessionSecret)
	require.Equal(t, "scrypt:abcd:0011", cfg.PasswordHash)
	require.True(t, cfg.Production)
	// MEDIA_DIR replaces whatever storage the file asked for
	require.Nil(t, cfg.MediaStorage.GCS)
	require.Equal(t, "/srv/media", cfg.MediaStorage.Filesystem.Root)

	cfg = &Config{}
	cfg.ApplyEnv(envLookup(map[string]string{EnvEnvironment: "staging"}))
	require.False(t, cfg.Production)
}

func TestConfigStorageValidation(t *testing.T) {
	log := logs.NewTestingLog(t)
	cfg := &Config{
		MediaStorage: StorageConfig{
			Filesystem: &StorageConfigFS{Root: "x"},
			S3:         &storage.S3Config{Bucket: "y"},
		},
	}
	require.Error(t, cfg.Finish(log))

	cfg = &Config{MediaStorage: StorageConfig{GCS: &StorageConfigGCS{}}}
	require.Error(t, cfg.Finish(log))

	cfg = &Config{MediaStorage: StorageConfig{S3: &storage.S3Config{}}}
	require.Error(t, cfg.Finish(log))
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv(EnvSessionSecret, "")
	t.Setenv(EnvPasswordHash, "")
	t.Setenv(EnvEnvironment, "")
	t.Setenv(EnvMediaDir, "")

	filename := filepath.Join(t.TempDir(), "scrapbook.json")
	require.NoError(t, os.WriteFile(filename, []byte(`{
		"sessionSecret": "file-secret",
		"production": true,
		"contentDir": "/srv/content",
		"mediaStorage": {"s3": {"bucket": "champa", "region": "us-east-1", "baseEndpoint": "http://127.0.0.1:9000"}}
	}`), 0644))
	cfg, err := LoadConfig(logs.NewTestingLog(t), filename)
	require.NoError(t, err)
	require.Equal(t, "file-secret", cfg.SessionSecret)
	require.True(t, cfg.Production)
	require.Equal(t, "/srv/content", cfg.ContentDir)
	require.Equal(t, "champa", cfg.MediaStorage.S3.Bucket)
	require.Equal(t, "http://127.0.0.1:9000", cfg.MediaStorage.S3.BaseEndpoint)

	_, err = LoadConfig(logs.NewTestingLog(t), filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	require.NoError(t, os.WriteFile(filename, []byte(`{broken`), 0644))
	_, err = LoadConfig(logs.NewTestingLog(t), filename)
	require.Error(t, err)
}
