// Package config defines the runtime configuration for gpgbridge and the
// layers that fill it: defaults, a YAML file, then environment variables.
// Command-line flags are applied last by cmd.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bridgeerr "gpgbridge/internal/errors"
)

// Mode selects the bridging mode.
type Mode string

const (
	ModeSSH Mode = "ssh"
	ModeGPG Mode = "gpg"
)

// Config holds every tuneable for one bridge process.
type Config struct {
	Mode Mode `yaml:"-"`

	// ── ssh (Pageant) ────────────────────────────────────────────────
	WindowName     string        `yaml:"window"`
	ClassName      string        `yaml:"class"`
	ConnectCommand string        `yaml:"connect_command"`
	ConnectArgs    []string      `yaml:"connect_args"`
	MapPrefix      string        `yaml:"map_prefix"`
	ProvokeSettle  time.Duration `yaml:"provoke_settle"`

	// ── gpg (socket emulation) ───────────────────────────────────────
	AuthFile    string        `yaml:"auth_file"` // explicit path; overrides SocketName
	SocketName  string        `yaml:"socket"`
	AgentHost   string        `yaml:"agent_host"`
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// ── Output ───────────────────────────────────────────────────────
	LogFile string `yaml:"log_file"`
	Verbose int    `yaml:"verbose"`

	// ── Invocation ───────────────────────────────────────────────────
	ListKeys   bool   `yaml:"-"`
	DryRun     bool   `yaml:"-"`
	ConfigFile string `yaml:"-"`
}

// AuthPath returns the socket emulation file to read in gpg mode:
// AuthFile when set, otherwise SocketName under <user cache dir>/gnupg.
func (c *Config) AuthPath() (string, error) {
	if c.AuthFile != "" {
		return c.AuthFile, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate cache directory: %w", err)
	}
	return filepath.Join(dir, "gnupg", c.SocketName), nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeSSH, ModeGPG:
	case "":
		return &bridgeerr.ConfigError{
			Field:   "mode",
			Message: "a mode is required",
			Hint:    "run 'gpgbridge ssh' or 'gpgbridge gpg'",
		}
	default:
		return &bridgeerr.ConfigError{
			Field:   "mode",
			Value:   string(c.Mode),
			Message: "unknown mode",
			Hint:    "valid modes are ssh and gpg",
		}
	}

	if c.Mode == ModeSSH {
		if c.WindowName == "" {
			return &bridgeerr.ConfigError{Field: "window", Message: "required in ssh mode"}
		}
		if c.ClassName == "" {
			return &bridgeerr.ConfigError{Field: "class", Message: "required in ssh mode"}
		}
		if c.MapPrefix == "" || strings.ContainsAny(c.MapPrefix, "/\\\x00") {
			return &bridgeerr.ConfigError{
				Field:   "map-prefix",
				Value:   c.MapPrefix,
				Message: "must be non-empty and must not contain path separators",
				Hint:    "use a plain identifier such as " + DefaultMapPrefix,
			}
		}
	}

	if c.Mode == ModeGPG && c.AuthFile == "" && c.SocketName == "" {
		return &bridgeerr.ConfigError{
			Field:   "socket",
			Message: "required when --auth-file is not set",
			Hint:    "the default is " + DefaultSocketName,
		}
	}

	if c.ProvokeSettle < 0 {
		return &bridgeerr.ConfigError{Field: "provoke-settle", Value: c.ProvokeSettle.String(), Message: "must not be negative"}
	}
	if c.DialTimeout < 0 {
		return &bridgeerr.ConfigError{Field: "dial-timeout", Value: c.DialTimeout.String(), Message: "must not be negative"}
	}

	if c.ListKeys && c.Mode != ModeSSH {
		return &bridgeerr.ConfigError{
			Field:   "list-keys",
			Message: "only valid in ssh mode",
			Hint:    "run 'gpgbridge --list-keys ssh'",
		}
	}

	return nil
}
