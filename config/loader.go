package config

// loader.go - configuration loading from a YAML file and environment
// variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables
//   3. Config file
//   4. Defaults   (defaults.go)

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ── Config file ──────────────────────────────────────────────────────

// ConfigPath returns the config file to read: explicit if set, else
// GPGBRIDGE_CONFIG, else <user config dir>/gpgbridge/config.yaml. The
// second result reports whether the path was asked for; an implicit
// path that does not exist is not an error.
func ConfigPath(explicit string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	if v := os.Getenv("GPGBRIDGE_CONFIG"); v != "" {
		return v, true
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(dir, "gpgbridge", DefaultConfigName), false
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the
// file leave cfg untouched; unknown keys are an error. A missing file is
// reported only when required is set.
func LoadFile(cfg *Config, path string, required bool) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the GPGBRIDGE_ prefix. Unparseable numbers
// and durations are ignored.

// LoadFromEnv overlays environment variables onto cfg. Only non-empty
// env vars override the existing value. This should be called BEFORE
// CLI flags are applied so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	// ssh
	if v := os.Getenv("GPGBRIDGE_WINDOW"); v != "" {
		cfg.WindowName = v
	}
	if v := os.Getenv("GPGBRIDGE_CLASS"); v != "" {
		cfg.ClassName = v
	}
	if v := os.Getenv("GPGBRIDGE_CONNECT_COMMAND"); v != "" {
		cfg.ConnectCommand = v
	}
	if v := os.Getenv("GPGBRIDGE_CONNECT_ARGS"); v != "" {
		cfg.ConnectArgs = strings.Fields(v)
	}
	if v := os.Getenv("GPGBRIDGE_MAP_PREFIX"); v != "" {
		cfg.MapPrefix = v
	}
	if d, ok := envDuration("GPGBRIDGE_PROVOKE_SETTLE"); ok {
		cfg.ProvokeSettle = d
	}

	// gpg
	if v := os.Getenv("GPGBRIDGE_AUTH_FILE"); v != "" {
		cfg.AuthFile = v
	}
	if v := os.Getenv("GPGBRIDGE_SOCKET"); v != "" {
		cfg.SocketName = v
	}
	if v := os.Getenv("GPGBRIDGE_AGENT_HOST"); v != "" {
		cfg.AgentHost = v
	}
	if d, ok := envDuration("GPGBRIDGE_DIAL_TIMEOUT"); ok {
		cfg.DialTimeout = d
	}

	// Output
	if v := os.Getenv("GPGBRIDGE_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v, ok := envInt("GPGBRIDGE_VERBOSE"); ok {
		cfg.Verbose = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// envDuration accepts Go durations ("250ms") and bare milliseconds.
func envDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Millisecond, true
	}
	return 0, false
}
