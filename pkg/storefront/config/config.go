// Package config builds a storefront.Service from declarative settings. The
// backend pair (content store + blob store) is chosen once here, at process
// start; nothing downstream branches on which pair is active.
package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/royal-radiance/storefront/pkg/storefront"
	memoryrepo "github.com/royal-radiance/storefront/pkg/storefront/repo/memory"
	postgresrepo "github.com/royal-radiance/storefront/pkg/storefront/repo/postgres"
	sqliterepo "github.com/royal-radiance/storefront/pkg/storefront/repo/sqlite"
	supabaserepo "github.com/royal-radiance/storefront/pkg/storefront/repo/supabase"
	fsstorage "github.com/royal-radiance/storefront/pkg/storefront/storage/fs"
	memorystorage "github.com/royal-radiance/storefront/pkg/storefront/storage/memory"
	s3storage "github.com/royal-radiance/storefront/pkg/storefront/storage/s3"
	supabasestorage "github.com/royal-radiance/storefront/pkg/storefront/storage/supabase"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:           "8080",
		Environment:    "development",
		DatabaseType:   "memory",
		Storage:        StorageConfig{Type: "memory"},
		ProcessImages:  true,
		MaxUploadBytes: 4 << 20,
	}
}

// ServerConfig represents server configuration for the storefront service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseType string // "memory", "sqlite", "postgres", "supabase"
	DatabaseURL  string // sqlite path or postgres connection string

	// Supabase project credentials, shared by the supabase content store
	// and the supabase storage backend
	SupabaseURL string
	SupabaseKey string

	// Storage configuration
	Storage StorageConfig

	// Media options
	ProcessImages  bool
	MaxUploadBytes int64

	// Admin gate
	AdminPasswordHash string // bcrypt hash of the shared admin password
	SessionSecret     string // HMAC secret for admin tokens
}

// StorageConfig represents configuration for the active blob storage backend
type StorageConfig struct {
	Type      string // "memory", "fs", "s3", "supabase"
	BaseDir   string // fs: directory to store uploads in
	URLPrefix string // fs: URL path the uploads directory is served under
	Bucket    string // s3 / supabase
	Region    string // s3
	Endpoint  string // s3: custom endpoint for S3-compatible services

	AccessKeyID     string // s3
	SecretAccessKey string // s3
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case "memory":
	case "sqlite", "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required when using %s", c.DatabaseType)
		}
	case "supabase":
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return errors.New("supabase_url and supabase_key are required when using supabase")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	switch c.Storage.Type {
	case "memory":
	case "fs":
		if c.Storage.BaseDir == "" {
			return errors.New("storage base_dir is required for fs storage")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("storage bucket is required for s3 storage")
		}
	case "supabase":
		if c.SupabaseURL == "" || c.SupabaseKey == "" || c.Storage.Bucket == "" {
			return errors.New("supabase_url, supabase_key and storage bucket are required for supabase storage")
		}
	default:
		return fmt.Errorf("unsupported storage backend type: %s", c.Storage.Type)
	}

	return nil
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService() (storefront.Service, error) {
	store, err := c.BuildStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build store: %w", err)
	}

	blobs, err := c.BuildBlobStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build blob store: %w", err)
	}

	return storefront.New(
		storefront.WithStore(store),
		storefront.WithBlobStore(blobs),
		storefront.WithImageProcessing(c.ProcessImages),
	)
}

// BuildStore creates the content-store backend based on the configuration
func (c *ServerConfig) BuildStore() (storefront.Store, error) {
	switch c.DatabaseType {
	case "memory":
		return memoryrepo.New(), nil
	case "sqlite":
		return sqliterepo.Open(c.DatabaseURL)
	case "postgres":
		if err := postgresrepo.Migrate(c.DatabaseURL); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		pool, err := pgxpool.New(context.Background(), c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		return postgresrepo.NewWithPool(pool), nil
	case "supabase":
		return supabaserepo.New(supabaserepo.Config{
			URL:    c.SupabaseURL,
			APIKey: c.SupabaseKey,
		})
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// BuildBlobStore creates the media storage backend based on the configuration
func (c *ServerConfig) BuildBlobStore() (storefront.BlobStore, error) {
	switch c.Storage.Type {
	case "memory":
		return memorystorage.New(), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   c.Storage.BaseDir,
			URLPrefix: c.Storage.URLPrefix,
		})
	case "s3":
		return s3storage.New(s3storage.Config{
			Region:          c.Storage.Region,
			Bucket:          c.Storage.Bucket,
			Endpoint:        c.Storage.Endpoint,
			AccessKeyID:     c.Storage.AccessKeyID,
			SecretAccessKey: c.Storage.SecretAccessKey,
		})
	case "supabase":
		return supabasestorage.New(supabasestorage.Config{
			URL:    c.SupabaseURL,
			APIKey: c.SupabaseKey,
			Bucket: c.Storage.Bucket,
		})
	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", c.Storage.Type)
	}
}
