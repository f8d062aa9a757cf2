package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsAndEnv(t *testing.T) {
	t.Setenv("ROOM_JWT_SECRET", "s3cret")
	t.Setenv("ROOM_MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("ROOM_SMTP_HOST", "smtp.example.com")
	t.Setenv("ROOM_SMTP_SENDER_EMAIL", "noreply@example.com")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "mongodb://mongo:27017", cfg.Mongo.URI)
	assert.Equal(t, "room_service_db", cfg.Mongo.Database)
	assert.Equal(t, 5*time.Second, cfg.Mongo.PollInterval)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "en", cfg.Rooms.Locale)
	assert.True(t, cfg.SMTP.Enabled())
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
http:
  port: "9090"
jwt:
  secret: from-file
rooms:
  locale: vi
  remote_timeout: 3s
logger:
  level: debug
  format: console
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, "vi", cfg.Rooms.Locale)
	assert.Equal(t, 3*time.Second, cfg.Rooms.RemoteTimeout)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("ROOM_JWT_SECRET", "")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
