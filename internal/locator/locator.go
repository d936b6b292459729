// Package locator finds the agent's window, provoking the agent into
// existence at most once when it is missing.
//
// The lookup is a fixed two-step machine:
//
//	search → found
//	search → not found → provoke → search → found | TargetNotFound
//
// There is no third attempt.
package locator

import (
	"context"
	"time"

	bridgeerr "gpgbridge/internal/errors"
	"gpgbridge/internal/metrics"
	"gpgbridge/internal/retry"
	"gpgbridge/internal/window"
	"gpgbridge/util"
)

// Provoker makes a missing agent register its window.
type Provoker interface {
	Provoke(ctx context.Context) error
}

// Locator looks up the agent window on a Bus.
type Locator struct {
	Bus      window.Bus
	Provoker Provoker
	// Settle is the pause between provoking and the second lookup.
	Settle  time.Duration
	Logger  *util.Logger
	Metrics *metrics.Collector
}

// Locate returns the handle of the window matching windowName and
// className.
func (l *Locator) Locate(ctx context.Context, windowName, className string) (window.Handle, error) {
	settle := max(l.Settle, time.Millisecond)
	b := &retry.Backoff{
		InitialDelay: settle,
		MaxDelay:     settle,
		MaxAttempts:  2,
	}

	var found window.Handle
	err := b.Do(ctx, func(attempt int) error {
		h, ok, err := l.Bus.FindWindow(windowName, className)
		if err != nil {
			return retry.Permanent(err)
		}
		if ok {
			found = h
			return nil
		}
		if attempt == 1 {
			l.provoke(ctx)
		}
		return &bridgeerr.TargetError{Window: windowName, Class: className}
	})
	if err != nil {
		l.Logger.Verbose("window %q class %q not found", windowName, className)
		return 0, err
	}

	l.Logger.Debug("found window %#x", uintptr(found))
	return found, nil
}

func (l *Locator) provoke(ctx context.Context) {
	if l.Provoker == nil {
		return
	}
	l.Metrics.Provoked()
	l.Logger.Info("agent window not found, launching agent")
	if err := l.Provoker.Provoke(ctx); err != nil {
		// Exit status is diagnostic only; the second lookup decides.
		l.Logger.Warn("agent launch: %v", err)
	}
}
