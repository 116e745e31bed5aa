package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // CONFPUB_DATABASE_URL (required)
	HTTPAddr    string // CONFPUB_HTTP_ADDR (default ":8080")
	NATSURL     string // CONFPUB_NATS_URL (optional, empty = no events)
	AuthToken   string // CONFPUB_AUTH_TOKEN (optional, empty = auth disabled)

	// Backup sync settings
	SyncInterval   time.Duration // CONFPUB_SYNC_INTERVAL (default 3m; 0 = disabled)
	SyncS3Bucket   string        // CONFPUB_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // CONFPUB_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // CONFPUB_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // CONFPUB_SYNC_S3_KEY (default "confpub/backup.jsonl")
	SyncGitRepo    string        // CONFPUB_SYNC_GIT_REPO (enables git when set; path to clone)
	SyncGitFile    string        // CONFPUB_SYNC_GIT_FILE (default "configs.jsonl")
	SyncGitBranch  string        // CONFPUB_SYNC_GIT_BRANCH (default "main")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:    os.Getenv("CONFPUB_DATABASE_URL"),
		HTTPAddr:       envOrDefault("CONFPUB_HTTP_ADDR", ":8080"),
		NATSURL:        os.Getenv("CONFPUB_NATS_URL"),
		AuthToken:      os.Getenv("CONFPUB_AUTH_TOKEN"),
		SyncS3Bucket:   os.Getenv("CONFPUB_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("CONFPUB_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("CONFPUB_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      envOrDefault("CONFPUB_SYNC_S3_KEY", "confpub/backup.jsonl"),
		SyncGitRepo:    os.Getenv("CONFPUB_SYNC_GIT_REPO"),
		SyncGitFile:    envOrDefault("CONFPUB_SYNC_GIT_FILE", "configs.jsonl"),
		SyncGitBranch:  envOrDefault("CONFPUB_SYNC_GIT_BRANCH", "main"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("CONFPUB_DATABASE_URL is required")
	}

	intervalStr := envOrDefault("CONFPUB_SYNC_INTERVAL", "3m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("CONFPUB_SYNC_INTERVAL: %w", err)
		}
		c.SyncInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
