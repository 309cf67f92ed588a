package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "htdemucs_ft", cfg.Model)
	assert.Equal(t, "python", cfg.Interpreter)
	assert.Equal(t, 192, cfg.MP3Bitrate)
	assert.EqualValues(t, 50*1024*1024, cfg.MaxUploadBytes)
	assert.Equal(t, 600*time.Second, cfg.SeparationTimeout)
	assert.EqualValues(t, 4, cfg.MaxConcurrentJobs)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STEMSPLIT_MODEL", "htdemucs")
	t.Setenv("STEMSPLIT_MAX_UPLOAD_MB", "10")
	t.Setenv("STEMSPLIT_TIMEOUT_SECONDS", "300")
	t.Setenv("STEMSPLIT_ALLOWED_ORIGINS", "http://localhost:5173, http://localhost:3000")

	cfg := Load()

	assert.Equal(t, "htdemucs", cfg.Model)
	assert.EqualValues(t, 10*1024*1024, cfg.MaxUploadBytes)
	assert.Equal(t, 300*time.Second, cfg.SeparationTimeout)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestLoad_IgnoresMalformedInt(t *testing.T) {
	t.Setenv("STEMSPLIT_MAX_UPLOAD_MB", "not-a-number")

	cfg := Load()
	assert.EqualValues(t, 50*1024*1024, cfg.MaxUploadBytes)
}
