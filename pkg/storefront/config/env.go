package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// WithEnv loads configuration from environment variables. The optional prefix
// is prepended to every variable name (e.g. "STOREFRONT_" reads
// STOREFRONT_PORT). Unset variables leave the defaults untouched.
//
// Recognized variables:
//
//	PORT, ENVIRONMENT
//	DATABASE_URL        memory | sqlite://path | postgres://... | supabase
//	SUPABASE_URL, SUPABASE_KEY
//	STORAGE_URL         memory:// | file:///dir?prefix=/uploads |
//	                    s3://bucket?region=...&endpoint=... | supabase://bucket
//	S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY
//	PROCESS_IMAGES, MAX_UPLOAD_BYTES
//	ADMIN_PASSWORD_HASH, SESSION_SECRET
func WithEnv(prefix string) Option {
	return func(cfg *ServerConfig) error {
		get := func(key string) string {
			return os.Getenv(prefix + key)
		}

		if v := get("PORT"); v != "" {
			cfg.Port = v
		}
		if v := get("ENVIRONMENT"); v != "" {
			cfg.Environment = v
		}

		if v := get("DATABASE_URL"); v != "" {
			if err := applyDatabaseURL(cfg, v); err != nil {
				return err
			}
		}

		if v := get("SUPABASE_URL"); v != "" {
			cfg.SupabaseURL = strings.TrimSuffix(v, "/")
		}
		if v := get("SUPABASE_KEY"); v != "" {
			cfg.SupabaseKey = v
		}

		if v := get("STORAGE_URL"); v != "" {
			if err := applyStorageURL(cfg, v); err != nil {
				return err
			}
		}
		if v := get("S3_ACCESS_KEY_ID"); v != "" {
			cfg.Storage.AccessKeyID = v
		}
		if v := get("S3_SECRET_ACCESS_KEY"); v != "" {
			cfg.Storage.SecretAccessKey = v
		}

		if v := get("PROCESS_IMAGES"); v != "" {
			enabled, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid PROCESS_IMAGES value %q: %w", v, err)
			}
			cfg.ProcessImages = enabled
		}
		if v := get("MAX_UPLOAD_BYTES"); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid MAX_UPLOAD_BYTES value %q", v)
			}
			cfg.MaxUploadBytes = n
		}

		if v := get("ADMIN_PASSWORD_HASH"); v != "" {
			cfg.AdminPasswordHash = v
		}
		if v := get("SESSION_SECRET"); v != "" {
			cfg.SessionSecret = v
		}

		return nil
	}
}

func applyDatabaseURL(cfg *ServerConfig, raw string) error {
	switch {
	case raw == "memory":
		cfg.DatabaseType = "memory"
		cfg.DatabaseURL = ""
	case raw == "supabase":
		cfg.DatabaseType = "supabase"
		cfg.DatabaseURL = ""
	case strings.HasPrefix(raw, "sqlite://"):
		path := strings.TrimPrefix(raw, "sqlite://")
		if path == "" {
			return fmt.Errorf("sqlite DATABASE_URL is missing a file path: %s", raw)
		}
		cfg.DatabaseType = "sqlite"
		cfg.DatabaseURL = path
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		cfg.DatabaseType = "postgres"
		cfg.DatabaseURL = raw
	default:
		return fmt.Errorf("unsupported DATABASE_URL scheme: %s", raw)
	}
	return nil
}

func applyStorageURL(cfg *ServerConfig, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid STORAGE_URL %q: %w", raw, err)
	}

	switch u.Scheme {
	case "memory":
		cfg.Storage = StorageConfig{Type: "memory"}
	case "file":
		dir := u.Path
		if u.Host != "" {
			// file://uploads (no leading slash) puts the dir in the host part
			dir = u.Host + u.Path
		}
		if dir == "" {
			return fmt.Errorf("file STORAGE_URL is missing a directory: %s", raw)
		}
		prefix := u.Query().Get("prefix")
		if prefix == "" {
			prefix = "/uploads"
		}
		keep := cfg.Storage
		cfg.Storage = StorageConfig{
			Type:            "fs",
			BaseDir:         dir,
			URLPrefix:       prefix,
			AccessKeyID:     keep.AccessKeyID,
			SecretAccessKey: keep.SecretAccessKey,
		}
	case "s3":
		if u.Host == "" {
			return fmt.Errorf("s3 STORAGE_URL is missing a bucket: %s", raw)
		}
		q := u.Query()
		keep := cfg.Storage
		cfg.Storage = StorageConfig{
			Type:            "s3",
			Bucket:          u.Host,
			Region:          q.Get("region"),
			Endpoint:        q.Get("endpoint"),
			AccessKeyID:     keep.AccessKeyID,
			SecretAccessKey: keep.SecretAccessKey,
		}
	case "supabase":
		if u.Host == "" {
			return fmt.Errorf("supabase STORAGE_URL is missing a bucket: %s", raw)
		}
		cfg.Storage = StorageConfig{Type: "supabase", Bucket: u.Host}
	default:
		return fmt.Errorf("unsupported STORAGE_URL scheme: %s", u.Scheme)
	}
	return nil
}
