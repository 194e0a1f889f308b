package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("PG_HOST", "localhost")
	t.Setenv("PG_USER", "app")
	t.Setenv("PG_PASSWORD", "secret")
	t.Setenv("PG_DATABASE", "codecrafters")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "dpuscktmu")
	t.Setenv("CLOUDINARY_UPLOAD_PRESET", "ml_default")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "codecrafters", cfg.Name)
	assert.Equal(t, 2*time.Minute, cfg.Submission.UploadTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Submission.LockTTL)
	assert.Equal(t, int64(32<<20), cfg.Submission.MaxMemoryBytes)
	assert.Equal(t, "https://api.cloudinary.com", cfg.Storage.BaseURL)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "host=localhost port=5432 user=app password=secret dbname=codecrafters sslmode=disable pool_max_conns=10", cfg.Postgres.ConnString())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SUBMISSION_UPLOAD_TIMEOUT", "45s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://codecrafters.dev")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Submission.UploadTimeout)
	assert.Equal(t, []string{"https://codecrafters.dev"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_MissingStorage(t *testing.T) {
	setRequired(t)
	t.Setenv("CLOUDINARY_CLOUD_NAME", "")

	_, err := Load(context.Background())
	assert.Error(t, err)
}

func TestLoadClient_Defaults(t *testing.T) {
	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoadClient_StorageTimeout(t *testing.T) {
	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, 60*time.Second, cfg.Storage.HTTPTimeout)

	t.Setenv("CLOUDINARY_HTTP_TIMEOUT", "15s")
	cfg, err = LoadClient()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.Storage.HTTPTimeout)
}
