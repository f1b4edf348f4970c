package amqp

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
		{100, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := exponentialBackoff(tt.attempt); got != tt.want {
			t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"refused", errors.New("dial tcp: connection refused"), true},
		{"closed", errors.New("connection closed by server"), true},
		{"eof", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"closed network", errors.New("use of closed network connection"), true},
		{"channel closed", errors.New("Exception (504) Reason: \"channel/connection is not open\""), true},
		{"application error", errors.New("queue does not exist"), false},
		{"other", errors.New("some other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.want {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	c := &Client{url: "amqp://localhost"}

	for i := 0; i < circuitFailureThreshold-1; i++ {
		c.recordFailure()
	}
	if c.isCircuitOpen() {
		t.Fatal("circuit should stay closed below the threshold")
	}

	c.recordFailure()
	if !c.isCircuitOpen() {
		t.Fatal("circuit should open at the threshold")
	}
}

func TestCircuitBreakerResetsOnSuccess(t *testing.T) {
	c := &Client{url: "amqp://localhost"}

	for i := 0; i < circuitFailureThreshold; i++ {
		c.recordFailure()
	}
	if !c.isCircuitOpen() {
		t.Fatal("circuit should be open")
	}

	c.recordSuccess()
	if c.isCircuitOpen() {
		t.Error("success should close the circuit")
	}
	if atomic.LoadInt64(&c.failureCount) != 0 {
		t.Error("success should reset the failure count")
	}
}

func TestCircuitBreakerResetsAfterTimeout(t *testing.T) {
	c := &Client{url: "amqp://localhost"}

	for i := 0; i < circuitFailureThreshold; i++ {
		c.recordFailure()
	}

	// Age the last failure past the reset window.
	old := time.Now().Add(-circuitResetTimeout - time.Second).UnixNano()
	atomic.StoreInt64(&c.lastFailure, old)

	if c.isCircuitOpen() {
		t.Error("circuit should close after the reset timeout")
	}
}

func TestStatementSyncMessageRoundTrip(t *testing.T) {
	msg := NewStatementSyncMessage(42)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	decoded, err := StatementSyncMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if decoded.StatementID != 42 {
		t.Errorf("statement id = %d, want 42", decoded.StatementID)
	}
	if decoded.Timestamp.IsZero() {
		t.Error("timestamp should survive the round trip")
	}
}

func TestStatementSyncMessageInvalid(t *testing.T) {
	if _, err := StatementSyncMessageFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
	if _, err := StatementSyncMessageFromJSON([]byte(`{"statement_id": 0}`)); err == nil {
		t.Error("expected error for missing statement id")
	}
}
