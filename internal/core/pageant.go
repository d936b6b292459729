package core

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gpgbridge/internal/frame"
	"gpgbridge/internal/metrics"
	"gpgbridge/util"
)

// shutdownGrace bounds how long Run waits for serve after cancellation.
const shutdownGrace = 500 * time.Millisecond

// PageantMode reads agent requests from stdin one frame at a time, runs
// each through Relay and writes the reply to stdout.
type PageantMode struct {
	stdio

	Relay   Transactor
	Logger  *util.Logger
	Metrics *metrics.Collector
}

// Run serves requests until stdin ends at a frame boundary or ctx is
// cancelled. A truncated request is an error. A failed transaction is
// answered with the agent failure reply and the loop carries on.
func (m *PageantMode) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- m.serve(ctx, m.stdin(), m.stdout()) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		m.Logger.Verbose("interrupted: %v", ctx.Err())
		// Let an in-flight transaction release its shared memory. A serve
		// parked in a stdin read is abandoned once the grace runs out.
		select {
		case <-errc:
		case <-time.After(shutdownGrace):
		}
		return nil
	}
}

func (m *PageantMode) serve(ctx context.Context, r io.Reader, w io.Writer) error {
	in := bufio.NewReader(r)
	out := bufio.NewWriter(w)

	for {
		req, err := frame.Read(in)
		if errors.Is(err, io.EOF) {
			m.Logger.Verbose("client closed input")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read request: %w", err)
		}
		m.Metrics.BytesReceived(int64(len(req)))
		m.Logger.Debug("request: %d-byte payload", req.PayloadLen())

		resp, err := m.Relay.Execute(ctx, req)
		if err != nil {
			m.Logger.Error("transaction failed: %v", err)
			m.Metrics.TransactionFailed(err.Error())
			resp = frame.AgentFailure
		} else {
			m.Metrics.TransactionDone()
		}

		if err := frame.Write(out, resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		m.Metrics.BytesSent(int64(len(resp)))
		if ctx.Err() != nil {
			return nil
		}
	}
}
