// Package config loads process configuration from the environment,
// with .env support for local development.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings shared by the CLI and the server.
type Config struct {
	// Port is the default HTTP port for the serve command.
	Port string

	// Banner is the default banner image reference (path or URL)
	// used when --banner is not given.
	Banner string

	// UnidocLicenseKey is the unipdf metered license API key. Empty
	// means unipdf runs unlicensed.
	UnidocLicenseKey string
}

// Load reads configuration from a .env file (if present) and the
// process environment. A missing .env file is not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:             envOr("ALLOWANCE_PORT", "8080"),
		Banner:           os.Getenv("ALLOWANCE_BANNER"),
		UnidocLicenseKey: os.Getenv("UNIDOC_LICENSE_API_KEY"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
