package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

const (
	StorageBackendS3     = "s3"
	StorageBackendMemory = "memory"
)

type Config struct {
	Server struct {
		Port string `toml:"port"`
	} `toml:"server"`

	Auth struct {
		Token string `toml:"token"`
	} `toml:"auth"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Storage struct {
		// Backend is "s3", "memory" or empty for no object storage at all.
		Backend   string `toml:"backend"`
		Bucket    string `toml:"bucket"`
		Endpoint  string `toml:"endpoint"`
		Region    string `toml:"region"`
		AccessKey string `toml:"access_key"`
		SecretKey string `toml:"secret_key"`
		PublicURL string `toml:"public_url"`
	} `toml:"storage"`

	Redis struct {
		URL               string `toml:"url"`
		RateLimit         int    `toml:"rate_limit"`
		RateWindowSeconds int    `toml:"rate_window_seconds"`
		LockTTLSeconds    int    `toml:"lock_ttl_seconds"`
	} `toml:"redis"`

	Policy Policy `toml:"policy"`
}

type Policy struct {
	SubmissionMaxSizeBytes    int64 `toml:"submission_max_size_bytes"`
	SubmissionsPerStudent     int   `toml:"submissions_per_student"`
	UploadCodeLength          int   `toml:"upload_code_length"`
	VerificationCodeLength    int   `toml:"verification_code_length"`
	DownloadURLExpiresSeconds int   `toml:"download_url_expires_seconds"`
}

func DefaultPolicy() Policy {
	return Policy{
		SubmissionMaxSizeBytes:    3 * 1024 * 1024,
		SubmissionsPerStudent:     5,
		UploadCodeLength:          8,
		VerificationCodeLength:    9,
		DownloadURLExpiresSeconds: 10 * 60,
	}
}

// LoadConfig reads the TOML file at path (a missing file is fine) and then
// applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	var config Config
	config.Policy = DefaultPolicy()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Debug.Printf("Config file %s not found, using defaults and environment", path)
	case err != nil:
		return nil, fmt.Errorf("error reading config file: %w", err)
	default:
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf(
				"error reading config file %s\n> Error: %w\n> Content:\n%s",
				path,
				err,
				string(data),
			)
		}
	}

	applyEnv(&config, os.Getenv)
	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger.Debug.Printf("Loaded policy config: %+v", config.Policy)

	return &config, nil
}

func applyEnv(config *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	set(&config.Auth.Token, "AUTH_TOKEN")
	set(&config.Storage.Bucket, "AWS_S3_BUCKET_NAME")
	set(&config.Storage.Endpoint, "AWS_S3_ENDPOINT_URL")
	set(&config.Storage.Region, "AWS_REGION")
	set(&config.Database.DSN, "DATABASE_URL")
	set(&config.Redis.URL, "REDIS_URL")

	if port := getenv("PORT"); port != "" {
		if !strings.Contains(port, ":") {
			port = ":" + port
		}
		config.Server.Port = port
	}
}

func applyDefaults(config *Config) {
	defaults := DefaultPolicy()
	p := &config.Policy
	if p.SubmissionMaxSizeBytes <= 0 {
		p.SubmissionMaxSizeBytes = defaults.SubmissionMaxSizeBytes
	}
	if p.SubmissionsPerStudent <= 0 {
		p.SubmissionsPerStudent = defaults.SubmissionsPerStudent
	}
	if p.UploadCodeLength <= 0 {
		p.UploadCodeLength = defaults.UploadCodeLength
	}
	if p.VerificationCodeLength <= 0 {
		p.VerificationCodeLength = defaults.VerificationCodeLength
	}
	if p.DownloadURLExpiresSeconds <= 0 {
		p.DownloadURLExpiresSeconds = defaults.DownloadURLExpiresSeconds
	}

	if config.Server.Port == "" {
		config.Server.Port = ":8000"
	}
	if config.Database.MigrationsDir == "" {
		config.Database.MigrationsDir = "./migrations"
	}
	if config.Storage.Backend == "" && config.Storage.Bucket != "" {
		config.Storage.Backend = StorageBackendS3
	}
	if config.Redis.RateLimit <= 0 {
		config.Redis.RateLimit = 10
	}
	if config.Redis.RateWindowSeconds <= 0 {
		config.Redis.RateWindowSeconds = 60
	}
	if config.Redis.LockTTLSeconds <= 0 {
		config.Redis.LockTTLSeconds = 60
	}
}

func (c *Config) Validate() error {
	if c.Auth.Token == "" {
		return fmt.Errorf("auth token is not specified, set AUTH_TOKEN or [auth] token")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is not specified, set DATABASE_URL or [database] dsn")
	}
	switch c.Storage.Backend {
	case "", StorageBackendMemory:
	case StorageBackendS3:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("s3 storage requires a bucket, set AWS_S3_BUCKET_NAME or [storage] bucket")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}
