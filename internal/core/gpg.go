package core

import (
	"context"
	"fmt"

	"gpgbridge/internal/auth"
	"gpgbridge/internal/capability"
	"gpgbridge/internal/metrics"
	"gpgbridge/internal/session"
	"gpgbridge/internal/transport"
	"gpgbridge/util"
)

// GPGMode relays stdio to gpg-agent's socket emulation: it reads the
// port and nonce from AuthPath, dials Host, authenticates and splices.
type GPGMode struct {
	stdio

	AuthPath string
	Host     string
	Dialer   transport.Dialer
	Logger   *util.Logger
	Metrics  *metrics.Collector
}

// Run performs one session. The connection is closed when Run returns.
func (m *GPGMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()

	ep, err := auth.Load(m.AuthPath)
	if err != nil {
		return err
	}
	address := ep.Address(m.Host)
	log := m.Logger.With("port", ep.Port)
	log.Verbose("connecting to %s", address)

	conn, err := m.Dialer.Dial(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("connect to agent: %w", err)
	}
	defer conn.Close()

	log.Verbose("connected to %s", conn.RemoteAddr())

	sess := session.New(conn, m.stdin(), m.stdout(), log, m.Metrics)
	c := &capability.Authenticated{Nonce: ep.Nonce, Next: &capability.Relay{}}
	return c.Handle(ctx, sess)
}
