package web

import (
	"fmt"
	"os"
	"strings"

	"github.com/ironsheep/stego-tools-mcp/internal/stego"
)

// DefaultMaxUploadBytes caps a whole upload request.
const DefaultMaxUploadBytes int64 = 2 << 20

// Config holds HTTP service settings.
type Config struct {
	// Port is the TCP port to listen on.
	Port string

	// DefaultKey is used by embed and extract when the form has no key.
	DefaultKey stego.Key

	// AllowedOrigins lists CORS origins. Empty allows all origins.
	AllowedOrigins []string

	// MaxUploadBytes caps the request body. Larger requests get 413.
	MaxUploadBytes int64

	// Version is reported by the health endpoint.
	Version string
}

// DefaultConfig returns the settings used when no environment overrides
// are present.
func DefaultConfig() Config {
	return Config{
		Port:           "5000",
		DefaultKey:     stego.DefaultKey,
		MaxUploadBytes: DefaultMaxUploadBytes,
		Version:        "dev",
	}
}

// ConfigFromEnv reads PORT, STEGO_DEFAULT_KEY and STEGO_ALLOWED_ORIGINS
// (comma separated) on top of DefaultConfig.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	if v := os.Getenv("STEGO_DEFAULT_KEY"); v != "" {
		key, err := stego.ParseKey(v)
		if err != nil {
			return cfg, fmt.Errorf("STEGO_DEFAULT_KEY: %w", err)
		}
		cfg.DefaultKey = key
	}

	if v := os.Getenv("STEGO_ALLOWED_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	return cfg, nil
}
