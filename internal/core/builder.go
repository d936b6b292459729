package core

import (
	"fmt"
	"os"

	"gpgbridge/config"
	"gpgbridge/internal/locator"
	"gpgbridge/internal/metrics"
	"gpgbridge/internal/pageant"
	"gpgbridge/internal/shm"
	"gpgbridge/internal/transport"
	"gpgbridge/internal/window"
	"gpgbridge/util"
)

// Build constructs the Mode selected by cfg. It is the single dispatch
// point between the CLI and the bridging modes.
func Build(cfg *config.Config, logger *util.Logger, m *metrics.Collector) (Mode, error) {
	switch cfg.Mode {
	case config.ModeSSH:
		return buildSSH(cfg, window.System(), logger, m), nil
	case config.ModeGPG:
		return buildGPG(cfg, logger, m)
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
}

// ── mode builders ────────────────────────────────────────────────────

func buildSSH(cfg *config.Config, bus window.Bus, logger *util.Logger, m *metrics.Collector) Mode {
	relay := buildRelay(cfg, bus, logger, m)
	if cfg.ListKeys {
		return &ListKeysMode{Relay: relay, Logger: logger, Metrics: m}
	}
	return &PageantMode{Relay: relay, Logger: logger, Metrics: m}
}

func buildGPG(cfg *config.Config, logger *util.Logger, m *metrics.Collector) (Mode, error) {
	path, err := cfg.AuthPath()
	if err != nil {
		return nil, err
	}
	return &GPGMode{
		AuthPath: path,
		Host:     cfg.AgentHost,
		Dialer:   &transport.TCPDialer{Timeout: cfg.DialTimeout},
		Logger:   logger,
		Metrics:  m,
	}, nil
}

// ── shared helpers ───────────────────────────────────────────────────

func buildRelay(cfg *config.Config, bus window.Bus, logger *util.Logger, m *metrics.Collector) *pageant.Relay {
	return &pageant.Relay{
		Window: cfg.WindowName,
		Class:  cfg.ClassName,
		Namer:  shm.NewNamer(cfg.MapPrefix, os.Getpid()),
		Locator: &locator.Locator{
			Bus: bus,
			Provoker: &locator.Command{
				Program: cfg.ConnectCommand,
				Args:    cfg.ConnectArgs,
				Logger:  logger,
			},
			Settle:  cfg.ProvokeSettle,
			Logger:  logger,
			Metrics: m,
		},
		Bus:    bus,
		Logger: logger,
	}
}
