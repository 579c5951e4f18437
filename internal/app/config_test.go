package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	for _, key := range []string{"AUTH_TOKEN", "DATABASE_URL", "AWS_S3_BUCKET_NAME", "AWS_S3_ENDPOINT_URL", "AWS_REGION", "REDIS_URL", "PORT"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[server]
port = ":9999"

[auth]
token = "from-file"

[database]
dsn = "file:semla.db"

[storage]
backend = "memory"
public_url = "http://localhost:9999/blobs"

[policy]
submissions_per_student = 3
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", config.Server.Port)
	assert.Equal(t, "from-file", config.Auth.Token)
	assert.Equal(t, StorageBackendMemory, config.Storage.Backend)
	assert.Equal(t, 3, config.Policy.SubmissionsPerStudent)
	assert.Equal(t, int64(3*1024*1024), config.Policy.SubmissionMaxSizeBytes)
	assert.Equal(t, 8, config.Policy.UploadCodeLength)
	assert.Equal(t, 9, config.Policy.VerificationCodeLength)
	assert.Equal(t, 600, config.Policy.DownloadURLExpiresSeconds)
	assert.Equal(t, "./migrations", config.Database.MigrationsDir)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[auth]
token = "from-file"

[database]
dsn = "file:semla.db"
`)

	t.Setenv("AUTH_TOKEN", "from-env")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/semla")
	t.Setenv("AWS_S3_BUCKET_NAME", "submissions")
	t.Setenv("AWS_S3_ENDPOINT_URL", "http://minio:9000")
	t.Setenv("PORT", "8080")

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", config.Auth.Token)
	assert.Equal(t, "postgres://u:p@localhost/semla", config.Database.DSN)
	assert.Equal(t, "submissions", config.Storage.Bucket)
	assert.Equal(t, "http://minio:9000", config.Storage.Endpoint)
	assert.Equal(t, StorageBackendS3, config.Storage.Backend)
	assert.Equal(t, ":8080", config.Server.Port)
}

func TestLoadConfigMissingFileUsesEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_TOKEN", "token")
	t.Setenv("DATABASE_URL", ":memory:")

	config, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, ":8000", config.Server.Port)
	assert.Empty(t, config.Storage.Backend)
}

func TestLoadConfigErrors(t *testing.T) {
	clearEnv(t)
	t.Run("no token", func(t *testing.T) {
		path := writeConfig(t, "[database]\ndsn = \"x.db\"\n")
		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "auth token")
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		path := writeConfig(t, "[auth]\ntoken = \"t\"\n[database]\ndsn = \"x.db\"\n[storage]\nbackend = \"s3\"\n")
		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "bucket")
	})

	t.Run("malformed toml", func(t *testing.T) {
		path := writeConfig(t, "[auth\n")
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}
