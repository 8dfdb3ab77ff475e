package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	EnvRPCURL   = "CAPE_RPC_URL"
	EnvKeyDir   = "CAPE_KEY_DIR"
	EnvOutDir   = "CAPE_OUT_DIR"
	EnvLogLevel = "CAPE_LOG_LEVEL"
)

// Config is what the CLI reads from the environment. Flags override it.
type Config struct {
	RPCURL   string
	KeyDir   string
	OutDir   string
	LogLevel string
}

func Default() Config {
	return Config{
		KeyDir:   "./keys",
		OutDir:   "./out",
		LogLevel: "info",
	}
}

// FromEnv loads the given dotenv files (".env" when none are given) and
// reads the CAPE_* variables on top of the defaults. Variables already set
// in the process win over dotenv files; missing files are ignored.
func FromEnv(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	c := Default()
	if v := os.Getenv(EnvRPCURL); v != "" {
		c.RPCURL = v
	}
	if v := os.Getenv(EnvKeyDir); v != "" {
		c.KeyDir = v
	}
	if v := os.Getenv(EnvOutDir); v != "" {
		c.OutDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.KeyDir == "" {
		return errors.New("key directory is required")
	}
	if c.OutDir == "" {
		return errors.New("output directory is required")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// RequireRPC fails when no node URL was configured.
func (c Config) RequireRPC() error {
	if c.RPCURL == "" {
		return fmt.Errorf("--rpc flag or %s env var is required", EnvRPCURL)
	}
	return nil
}
