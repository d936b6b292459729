// Package cmd wires up the CLI flags and dispatches to the bridging modes.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"gpgbridge/config"
	"gpgbridge/internal/core"
	"gpgbridge/internal/metrics"
	"gpgbridge/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X gpgbridge/cmd.version=2.0.0"
var version = "0.3.0" //nolint:gochecknoglobals

// Execute parses args and runs the selected bridging mode.
func Execute(ctx context.Context, args []string) error {
	fs, fc := newFlagSet()

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")
	fs.Usage = func() { printUsage(os.Stderr, fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp || len(args) == 0 {
		printUsage(os.Stderr, fs)
		return nil
	}
	if showVersion {
		fmt.Printf("gpgbridge %s\n", version)
		return nil
	}

	cfg, err := loadConfig(fs, fc)
	if err != nil {
		return err
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.DryRun {
		fmt.Fprintf(os.Stderr, "gpgbridge: %s configuration OK\n", cfg.Mode)
		return nil
	}

	// ── build components ─────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		defer f.Close()
		logger.SetOutput(f)
		logger.SetTimestamps(true)
	}
	defer logger.Sync() //nolint:errcheck

	if !cfg.ListKeys && term.IsTerminal(int(os.Stdin.Fd())) {
		logger.Warn("stdin is a terminal; gpgbridge expects to be driven by an agent relay")
	}

	err = run(ctx, cfg, logger)
	if err != nil && cfg.LogFile != "" {
		// main reports to stderr; the log file gets its own copy.
		logger.Error("%v", err)
	}
	return err
}

func run(ctx context.Context, cfg *config.Config, logger *util.Logger) error {
	m := metrics.New()
	mode, err := core.Build(cfg, logger, m)
	if err != nil {
		return err
	}

	logger.Verbose("gpgbridge %s starting in %s mode", version, cfg.Mode)
	err = mode.Run(ctx)
	logger.Debug("metrics: %s", m.JSON())
	return err
}

// ── helpers ──────────────────────────────────────────────────────────

// newFlagSet declares every configuration flag. Values land in a scratch
// Config; loadConfig copies only the flags the user actually set.
func newFlagSet() (*flag.FlagSet, *config.Config) {
	fc := config.Default()
	fs := flag.NewFlagSet("gpgbridge", flag.ContinueOnError)
	fs.SortFlags = false

	// ── ssh ──────────────────────────────────────────────────────
	fs.StringVar(&fc.WindowName, "window", fc.WindowName, "Agent window name")
	fs.StringVar(&fc.ClassName, "class", fc.ClassName, "Agent window class")
	fs.StringVar(&fc.ConnectCommand, "connect-command", fc.ConnectCommand, "Program run once when the agent window is missing")
	fs.StringSliceVar(&fc.ConnectArgs, "connect-args", fc.ConnectArgs, "Arguments for --connect-command")
	fs.StringVar(&fc.MapPrefix, "map-prefix", fc.MapPrefix, "Shared memory name prefix")
	fs.DurationVar(&fc.ProvokeSettle, "provoke-settle", fc.ProvokeSettle, "Pause before looking for the window again")
	fs.BoolVar(&fc.ListKeys, "list-keys", false, "List the agent's identities and exit (ssh)")

	// ── gpg ──────────────────────────────────────────────────────
	fs.StringVar(&fc.AuthFile, "auth-file", "", "Socket emulation file (overrides --socket)")
	fs.StringVar(&fc.SocketName, "socket", fc.SocketName, "Socket emulation file name under <cache>/gnupg")
	fs.StringVar(&fc.AgentHost, "agent-host", fc.AgentHost, "Host the agent listens on")
	fs.DurationVar(&fc.DialTimeout, "dial-timeout", fc.DialTimeout, "Connect timeout (0 = none)")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&fc.Verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.StringVar(&fc.LogFile, "log-file", "", "Append logs to this file instead of stderr")

	// ── invocation ───────────────────────────────────────────────
	fs.StringVar(&fc.ConfigFile, "config", "", "YAML config file")
	fs.BoolVar(&fc.DryRun, "dry-run", false, "Validate configuration and exit")

	return fs, fc
}

// loadConfig layers defaults, the config file, the environment and the
// flags that were set, then reads the mode from the one positional
// argument.
func loadConfig(fs *flag.FlagSet, fc *config.Config) (*config.Config, error) {
	cfg := config.Default()

	path, required := config.ConfigPath(fc.ConfigFile)
	if err := config.LoadFile(cfg, path, required); err != nil {
		return nil, err
	}
	config.LoadFromEnv(cfg)

	overrides := map[string]func(){
		"window":          func() { cfg.WindowName = fc.WindowName },
		"class":           func() { cfg.ClassName = fc.ClassName },
		"connect-command": func() { cfg.ConnectCommand = fc.ConnectCommand },
		"connect-args":    func() { cfg.ConnectArgs = fc.ConnectArgs },
		"map-prefix":      func() { cfg.MapPrefix = fc.MapPrefix },
		"provoke-settle":  func() { cfg.ProvokeSettle = fc.ProvokeSettle },
		"auth-file":       func() { cfg.AuthFile = fc.AuthFile },
		"socket":          func() { cfg.SocketName = fc.SocketName },
		"agent-host":      func() { cfg.AgentHost = fc.AgentHost },
		"dial-timeout":    func() { cfg.DialTimeout = fc.DialTimeout },
		"verbose":         func() { cfg.Verbose = 1 + fc.Verbose },
		"log-file":        func() { cfg.LogFile = fc.LogFile },
	}
	fs.Visit(func(f *flag.Flag) {
		if set, ok := overrides[f.Name]; ok {
			set()
		}
	})
	cfg.ListKeys = fc.ListKeys
	cfg.DryRun = fc.DryRun
	cfg.ConfigFile = path

	// ── positional arguments ─────────────────────────────────────
	switch rest := fs.Args(); len(rest) {
	case 0:
	case 1:
		cfg.Mode = config.Mode(rest[0])
	default:
		return nil, fmt.Errorf("too many arguments %q (use --help for usage)", rest)
	}
	return cfg, nil
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `gpgbridge %s

Bridges an agent-protocol client on stdin/stdout to a Windows-side agent.

Usage:
  gpgbridge [options] ssh           Relay ssh-agent requests to Pageant
  gpgbridge [options] gpg           Relay to gpg-agent's socket emulation
  gpgbridge --list-keys ssh         Show the identities Pageant offers

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(w, `
Environment:
  GPGBRIDGE_CONFIG, GPGBRIDGE_WINDOW, GPGBRIDGE_CLASS, GPGBRIDGE_SOCKET,
  GPGBRIDGE_AUTH_FILE, GPGBRIDGE_VERBOSE, ... override the config file;
  flags override both.

Examples:
  socat UNIX-LISTEN:$SSH_AUTH_SOCK,fork EXEC:"gpgbridge ssh"
  socat UNIX-LISTEN:$HOME/.gnupg/S.gpg-agent,fork EXEC:"gpgbridge gpg"
  gpgbridge --socket S.gpg-agent.extra gpg
`)
}
