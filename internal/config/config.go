// Package config loads and hot-reloads the anchord server configuration:
// defaults, then a YAML file, then environment variable overrides, in
// that order.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/anchorvcs/anchor/internal/objectstore"
)

// StorageConfig selects and configures the object store backend.
type StorageConfig struct {
	Backend string `yaml:"backend"` // local, s3, gcs, azure

	LocalPath string `yaml:"local_path"`

	S3Bucket   string `yaml:"s3_bucket"`
	S3Region   string `yaml:"s3_region"`
	S3Endpoint string `yaml:"s3_endpoint,omitempty"`

	GCSBucket string `yaml:"gcs_bucket"`

	AzureContainer string `yaml:"azure_container"`
	AzureAccount   string `yaml:"azure_account"`
}

// RateLimitConfig bounds the per-IP request rate.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Config is the full server configuration.
type Config struct {
	RootDir     string `yaml:"root_dir"`
	ListenAddr  string `yaml:"listen_addr"`
	MetricsAddr string `yaml:"metrics_addr"`

	JWTSecret string `yaml:"jwt_secret"`

	// AdminUsername is the single administrator account name; Anchor runs
	// single-admin/optional-guest, so this is the only identity rbac ever
	// resolves to the admin role.
	AdminUsername string `yaml:"admin_username"`

	Storage   StorageConfig   `yaml:"storage"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// RefreshStoreDSN, when set, points the refresh-token store at
	// Postgres instead of the default JSON file under RootDir - for
	// deployments that already run Postgres for other state.
	RefreshStoreDSN string `yaml:"refresh_store_dsn,omitempty"`
}

// Default returns the configuration a fresh install runs with.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		RootDir:       filepath.Join(homeDir, ".anchord", "repos"),
		ListenAddr:    ":8080",
		MetricsAddr:   ":9090",
		AdminUsername: "admin",
		Storage: StorageConfig{
			Backend:   "local",
			LocalPath: filepath.Join(homeDir, ".anchord", "objects"),
		},
		RateLimit: RateLimitConfig{
			RPS:   100.0 / 60.0,
			Burst: 20,
		},
	}
}

// Load builds a Config from defaults, then path (if non-empty and it
// exists), then environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cfg.loadFromFile(path); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("ANCHOR_ROOT_DIR"); v != "" {
		c.RootDir = v
	}
	if v := os.Getenv("ANCHOR_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("ANCHOR_METRICS_ADDR"); v != "" {
		c.MetricsAddr = v
	}
	if v := os.Getenv("ANCHOR_JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("ANCHOR_ADMIN_USERNAME"); v != "" {
		c.AdminUsername = v
	}
	if v := os.Getenv("ANCHOR_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("ANCHOR_STORAGE_LOCAL_PATH"); v != "" {
		c.Storage.LocalPath = v
	}
	if v := os.Getenv("ANCHOR_S3_BUCKET"); v != "" {
		c.Storage.S3Bucket = v
	}
	if v := os.Getenv("ANCHOR_S3_REGION"); v != "" {
		c.Storage.S3Region = v
	}
	if v := os.Getenv("ANCHOR_S3_ENDPOINT"); v != "" {
		c.Storage.S3Endpoint = v
	}
	if v := os.Getenv("ANCHOR_GCS_BUCKET"); v != "" {
		c.Storage.GCSBucket = v
	}
	if v := os.Getenv("ANCHOR_AZURE_CONTAINER"); v != "" {
		c.Storage.AzureContainer = v
	}
	if v := os.Getenv("ANCHOR_AZURE_ACCOUNT"); v != "" {
		c.Storage.AzureAccount = v
	}
	if v := os.Getenv("ANCHOR_REFRESH_STORE_DSN"); v != "" {
		c.RefreshStoreDSN = v
	}
	if v := os.Getenv("ANCHOR_RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimit.RPS = f
		}
	}
	if v := os.Getenv("ANCHOR_RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimit.Burst = n
		}
	}
}

// NewObjectStore constructs the object store backend named by
// Storage.Backend and wraps it in an objectstore.Store. S3, GCS, and Azure
// credentials are deliberately not config fields: each backend picks them
// up from its SDK's own default credential chain (environment variables,
// instance metadata, workload identity, ...), the same way anchord's
// teacher-grounded services leave credential discovery to the client
// libraries rather than re-implementing it.
func (c *Config) NewObjectStore(ctx context.Context) (*objectstore.Store, error) {
	var backend objectstore.Backend
	var err error

	switch c.Storage.Backend {
	case "local":
		backend, err = objectstore.NewLocalBackend(c.Storage.LocalPath)
	case "s3":
		backend, err = objectstore.NewS3Backend(ctx, &objectstore.S3Config{
			Region:   c.Storage.S3Region,
			Bucket:   c.Storage.S3Bucket,
			Endpoint: c.Storage.S3Endpoint,
		})
	case "gcs":
		backend, err = objectstore.NewGCSBackend(ctx, &objectstore.GCSConfig{
			Bucket: c.Storage.GCSBucket,
		})
	case "azure":
		backend, err = objectstore.NewAzureBackend(ctx, &objectstore.AzureConfig{
			AccountName:   c.Storage.AzureAccount,
			ContainerName: c.Storage.AzureContainer,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("construct %s object store: %w", c.Storage.Backend, err)
	}

	return objectstore.New(backend)
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.RootDir == "" {
		return fmt.Errorf("root_dir must not be empty")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret must not be empty")
	}
	if c.AdminUsername == "" {
		return fmt.Errorf("admin_username must not be empty")
	}
	switch c.Storage.Backend {
	case "local", "s3", "gcs", "azure":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == "local" && c.Storage.LocalPath == "" {
		return fmt.Errorf("storage.local_path must not be empty for the local backend")
	}
	if c.Storage.Backend == "s3" && strings.TrimSpace(c.Storage.S3Bucket) == "" {
		return fmt.Errorf("storage.s3_bucket must not be empty for the s3 backend")
	}
	if c.Storage.Backend == "gcs" && strings.TrimSpace(c.Storage.GCSBucket) == "" {
		return fmt.Errorf("storage.gcs_bucket must not be empty for the gcs backend")
	}
	if c.Storage.Backend == "azure" && strings.TrimSpace(c.Storage.AzureContainer) == "" {
		return fmt.Errorf("storage.azure_container must not be empty for the azure backend")
	}
	if c.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate_limit.rps must be positive")
	}
	return nil
}
