package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config is built once at startup and passed explicitly into each job.
// Nothing here is mutated after Load returns.
type Config struct {
	ListenAddr string

	// Separation tool contract
	Model       string // demucs model selector (-n)
	Interpreter string // binary that hosts `-m demucs.separate`
	MP3Bitrate  int

	TempRoot          string
	MaxUploadBytes    int64
	SeparationTimeout time.Duration
	MaxConcurrentJobs int64

	AllowedOrigins []string
}

const ServiceName = "demucs-vocal-separation"

func Load() Config {
	return Config{
		ListenAddr:        getenv("STEMSPLIT_LISTEN_ADDR", ":8080"),
		Model:             getenv("STEMSPLIT_MODEL", "htdemucs_ft"),
		Interpreter:       getenv("STEMSPLIT_PYTHON", "python"),
		MP3Bitrate:        getenvInt("STEMSPLIT_MP3_BITRATE", 192),
		TempRoot:          getenv("STEMSPLIT_TEMP_ROOT", os.TempDir()),
		MaxUploadBytes:    int64(getenvInt("STEMSPLIT_MAX_UPLOAD_MB", 50)) * 1024 * 1024,
		SeparationTimeout: time.Duration(getenvInt("STEMSPLIT_TIMEOUT_SECONDS", 600)) * time.Second,
		MaxConcurrentJobs: int64(getenvInt("STEMSPLIT_MAX_CONCURRENT_JOBS", 4)),
		AllowedOrigins:    getenvList("STEMSPLIT_ALLOWED_ORIGINS", []string{"*"}),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var out int
		if _, err := fmt.Sscanf(v, "%d", &out); err == nil {
			return out
		}
	}
	return def
}

func getenvList(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return def
}
