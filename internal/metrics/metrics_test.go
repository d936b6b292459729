package metrics

import (
	"encoding/json"
	"sync"
	"testing"
)

func TestCollector_Transactions(t *testing.T) {
	c := New()

	c.TransactionDone()
	c.TransactionDone()
	c.TransactionFailed("window not found")

	if c.Transactions() != 3 {
		t.Errorf("transactions = %d, want 3", c.Transactions())
	}
	if c.Failures() != 1 {
		t.Errorf("failures = %d, want 1", c.Failures())
	}

	s := c.Snapshot()
	if s.LastErrorMessage != "window not found" {
		t.Errorf("last error = %q", s.LastErrorMessage)
	}
	if s.LastError == "" {
		t.Error("last error timestamp not set")
	}
}

func TestCollector_BytesAndProvokes(t *testing.T) {
	c := New()

	c.BytesReceived(10)
	c.BytesSent(512)
	c.BytesReceived(5)
	c.Provoked()

	s := c.Snapshot()
	if s.BytesIn != 15 || s.BytesOut != 512 {
		t.Errorf("bytes in/out = %d/%d, want 15/512", s.BytesIn, s.BytesOut)
	}
	if c.Provokes() != 1 {
		t.Errorf("provokes = %d, want 1", c.Provokes())
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector

	c.TransactionDone()
	c.TransactionFailed("x")
	c.BytesReceived(1)
	c.BytesSent(1)
	c.Provoked()

	if c.Transactions() != 0 || c.Failures() != 0 || c.Provokes() != 0 {
		t.Error("nil collector should report zeros")
	}
	if c.JSON() == "" {
		t.Error("nil collector JSON should still be valid")
	}
}

func TestCollector_JSON(t *testing.T) {
	c := New()
	c.TransactionDone()

	var s Snapshot
	if err := json.Unmarshal([]byte(c.JSON()), &s); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if s.Transactions != 1 {
		t.Errorf("transactions = %d, want 1", s.Transactions)
	}
}

func TestCollector_Concurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.TransactionDone()
			c.BytesSent(2)
		}()
	}
	wg.Wait()

	if c.Transactions() != 50 {
		t.Errorf("transactions = %d, want 50", c.Transactions())
	}
	if c.Snapshot().BytesOut != 100 {
		t.Errorf("bytes out = %d, want 100", c.Snapshot().BytesOut)
	}
}
