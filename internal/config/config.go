// Package config provides environment-driven configuration for go-wakeguard
// commands. Values come from the process environment, optionally seeded from
// a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Source kinds selectable via WAKEGUARD_SOURCE.
const (
	SourceCamera = "camera"
	SourceFile   = "file"
)

// Camera selection policies selectable via WAKEGUARD_CAMERA_POLICY.
const (
	PolicyFirstAvailable = "first"
	PolicyFrontFacing    = "front"
)

// Config holds the full runtime configuration for the wakeguard client.
type Config struct {
	// Inference endpoint
	Endpoint       string
	RequestTimeout time.Duration

	// Image source
	Source       string // "camera" or "file"
	FilePath     string // used when Source == "file"
	CameraPolicy string // "first" or "front"
	CameraIndex  int    // preferred index for the front-facing policy
	FrontHint    string // device-name fragment identifying the front camera
	JPEGQuality  int

	// Dashboard
	HTTPPort string

	// Observability
	LogLevel string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() *Config {
	// Missing .env is fine - plain environment variables are the normal
	// deployment path.
	_ = godotenv.Load()

	return &Config{
		Endpoint:       os.Getenv("WAKEGUARD_ENDPOINT"),
		RequestTimeout: getEnvDuration("WAKEGUARD_TIMEOUT", 30*time.Second),
		Source:         getEnv("WAKEGUARD_SOURCE", SourceCamera),
		FilePath:       os.Getenv("WAKEGUARD_FILE"),
		CameraPolicy:   getEnv("WAKEGUARD_CAMERA_POLICY", PolicyFirstAvailable),
		CameraIndex:    getEnvInt("WAKEGUARD_CAMERA_INDEX", 0),
		FrontHint:      getEnv("WAKEGUARD_FRONT_HINT", "front"),
		JPEGQuality:    getEnvInt("WAKEGUARD_JPEG_QUALITY", 85),
		HTTPPort:       getEnv("WAKEGUARD_HTTP_PORT", "8080"),
		LogLevel:       getEnv("WAKEGUARD_LOG_LEVEL", "info"),
	}
}

// Validate checks that required settings are present and consistent.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("config: WAKEGUARD_ENDPOINT is required")
	}
	switch c.Source {
	case SourceCamera:
	case SourceFile:
		if c.FilePath == "" {
			return fmt.Errorf("config: WAKEGUARD_FILE is required when WAKEGUARD_SOURCE=file")
		}
	default:
		return fmt.Errorf("config: unknown source %q (want %q or %q)", c.Source, SourceCamera, SourceFile)
	}
	switch c.CameraPolicy {
	case PolicyFirstAvailable, PolicyFrontFacing:
	default:
		return fmt.Errorf("config: unknown camera policy %q (want %q or %q)", c.CameraPolicy, PolicyFirstAvailable, PolicyFrontFacing)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("config: JPEG quality must be between 1 and 100")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: request timeout must be positive")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
