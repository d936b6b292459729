// Package metrics provides lightweight, lock-free counters for one
// bridge process: transactions relayed, bytes moved, agent launches.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for a bridge process.
type Collector struct {
	transactions atomic.Int64
	failures     atomic.Int64
	bytesIn      atomic.Int64
	bytesOut     atomic.Int64
	provokes     atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Transactions ─────────────────────────────────────────────────────

// TransactionDone records a completed request/response cycle.
func (c *Collector) TransactionDone() {
	if c == nil {
		return
	}
	c.transactions.Add(1)
}

// TransactionFailed records an aborted cycle and keeps its message.
func (c *Collector) TransactionFailed(msg string) {
	if c == nil {
		return
	}
	c.transactions.Add(1)
	c.failures.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// Transactions returns the number of cycles attempted.
func (c *Collector) Transactions() int64 {
	if c == nil {
		return 0
	}
	return c.transactions.Load()
}

// Failures returns the number of cycles that failed.
func (c *Collector) Failures() int64 {
	if c == nil {
		return 0
	}
	return c.failures.Load()
}

// ── I/O ──────────────────────────────────────────────────────────────

// BytesReceived records n bytes read from the client.
func (c *Collector) BytesReceived(n int64) {
	if c == nil {
		return
	}
	c.bytesIn.Add(n)
}

// BytesSent records n bytes written back to the client.
func (c *Collector) BytesSent(n int64) {
	if c == nil {
		return
	}
	c.bytesOut.Add(n)
}

// ── Agent launches ───────────────────────────────────────────────────

// Provoked records one run of the agent connect command.
func (c *Collector) Provoked() {
	if c == nil {
		return
	}
	c.provokes.Add(1)
}

// Provokes returns how often the connect command ran.
func (c *Collector) Provokes() int64 {
	if c == nil {
		return 0
	}
	return c.provokes.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	Transactions     int64  `json:"transactions"`
	Failures         int64  `json:"failures"`
	BytesIn          int64  `json:"bytes_in"`
	BytesOut         int64  `json:"bytes_out"`
	Provokes         int64  `json:"provokes"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:       time.Since(c.startTime).Truncate(time.Millisecond).String(),
		Transactions: c.transactions.Load(),
		Failures:     c.failures.Load(),
		BytesIn:      c.bytesIn.Load(),
		BytesOut:     c.bytesOut.Load(),
		Provokes:     c.provokes.Load(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as a compact JSON string.
func (c *Collector) JSON() string {
	data, _ := json.Marshal(c.Snapshot())
	return string(data)
}
