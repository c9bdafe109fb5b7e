package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/champa/scrapbook/server/media"
	"github.com/champa/scrapbook/server/storage"
	"github.com/cyclopcam/logs"
)

// Only suitable for development. Anybody who knows it can mint their own sessions.
const DefaultSessionSecret = "dev-only-secret-change-me-before-deploy"

// Media directory when nothing else is configured
const DefaultMediaDir = "champa-resources"

// Directory holding the manifest and captions, when nothing else is configured
const DefaultContentDir = "content"

// Environment variables, which override the config file
const (
	EnvSessionSecret = "SESSION_SECRET"
	EnvPasswordHash  = "CHAMPA_PASSWORD_HASH"
	EnvEnvironment   = "CHAMPA_ENV"
	EnvMediaDir      = "MEDIA_DIR"
)

type Config struct {
	SessionSecret   string        `json:"sessionSecret"`
	PasswordHash    string        `json:"passwordHash"` // scrypt:salt:digestHex. Empty for the development password.
	Production      bool          `json:"production"`   // Only affects the Secure attribute of the session cookie
	ContentDir      string        `json:"contentDir"`   // Holds media-manifest.json and captions.generated.json
	CacheTTLSeconds int           `json:"cacheTTLSeconds"`
	MediaStorage    StorageConfig `json:"mediaStorage"`
}

// At most one of the storage options may be configured. With none, we use DefaultMediaDir.
type StorageConfig struct {
	Filesystem *StorageConfigFS  `json:"filesystem"`
	GCS        *StorageConfigGCS `json:"gcs"`
	S3         *storage.S3Config `json:"s3"`
}

type StorageConfigFS struct {
	Root string `json:"root"` // Path to the directory of media files
}

type StorageConfigGCS struct {
	Bucket string `json:"bucket"` // Name of the GCS bucket
	Prefix string `json:"prefix"` // Optional object name prefix, eg "media/"
}

// LoadConfig reads the optional config file, and then applies environment overrides.
// An empty filename means "environment only".
func LoadConfig(log logs.Log, filename string) (*Config, error) {
	cfg := &Config{}
	if filename != "" {
		raw, err := os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("Error parsing config file %v: %w", filename, err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Finish(log); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields with any environment variables that are set
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvSessionSecret); ok && v != "" {
		c.SessionSecret = v
	}
	if v, ok := lookup(EnvPasswordHash); ok && strings.TrimSpace(v) != "" {
		c.PasswordHash = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvEnvironment); ok && v != "" {
		c.Production = v == "production"
	}
	if v, ok := lookup(EnvMediaDir); ok && strings.TrimSpace(v) != "" {
		c.MediaStorage = StorageConfig{
			Filesystem: &StorageConfigFS{Root: strings.TrimSpace(v)},
		}
	}
}

// Finish fills in defaults and validates
func (c *Config) Finish(log logs.Log) error {
	if c.SessionSecret == "" {
		log.Warnf("%v is not set. Using the built-in development secret, which is NOT safe for production", EnvSessionSecret)
		c.SessionSecret = DefaultSessionSecret
	} else if c.SessionSecret == DefaultSessionSecret && c.Production {
		log.Warnf("Running in production with the built-in development session secret")
	}
	if c.PasswordHash == "" {
		log.Warnf("%v is not set. Accepting the built-in development password", EnvPasswordHash)
	}
	if c.ContentDir == "" {
		c.ContentDir = DefaultContentDir
	}
	if c.CacheTTLSeconds <= 0 {
		c.CacheTTLSeconds = 3600
	}

	n := 0
	if c.MediaStorage.Filesystem != nil {
		n++
	}
	if c.MediaStorage.GCS != nil {
		n++
	}
	if c.MediaStorage.S3 != nil {
		n++
	}
	if n > 1 {
		return fmt.Errorf("Only one of the media storage options may be configured (filesystem, gcs, s3)")
	}
	if n == 0 {
		c.MediaStorage.Filesystem = &StorageConfigFS{Root: DefaultMediaDir}
	}
	if c.MediaStorage.GCS != nil && c.MediaStorage.GCS.Bucket == "" {
		return fmt.Errorf("gcs storage requires a bucket")
	}
	if c.MediaStorage.S3 != nil && c.MediaStorage.S3.Bucket == "" {
		return fmt.Errorf("s3 storage requires a bucket")
	}
	return nil
}

func (c *Config) ManifestPath() string {
	return filepath.Join(c.ContentDir, media.ManifestFilename)
}

func (c *Config) CaptionsPath() string {
	return filepath.Join(c.ContentDir, media.CaptionsFilename)
}
