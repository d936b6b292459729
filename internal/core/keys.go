package core

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	"gpgbridge/internal/metrics"
	"gpgbridge/util"
)

// ListKeysMode asks the agent behind Relay for its identities through an
// in-process ssh-agent client and prints one line per key to stdout.
type ListKeysMode struct {
	stdio

	Relay   Transactor
	Logger  *util.Logger
	Metrics *metrics.Collector
}

// Run lists the identities once.
func (m *ListKeysMode) Run(ctx context.Context) error {
	client, server := net.Pipe()
	defer client.Close()

	bridge := &PageantMode{Relay: m.Relay, Logger: m.Logger, Metrics: m.Metrics}
	done := make(chan error, 1)
	go func() {
		done <- bridge.serve(ctx, server, server)
		server.Close()
	}()

	keys, err := agent.NewClient(client).List()
	if err != nil {
		return fmt.Errorf("list identities: %w", err)
	}
	client.Close()
	if err := <-done; err != nil {
		m.Logger.Debug("bridge: %v", err)
	}

	out := m.stdout()
	if len(keys) == 0 {
		fmt.Fprintln(out, "The agent has no identities.")
		return nil
	}
	for _, k := range keys {
		fmt.Fprintf(out, "%s %s (%s)\n", ssh.FingerprintSHA256(k), k.Comment, k.Type())
	}
	return nil
}
