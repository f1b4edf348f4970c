package assistant

import (
	"context"
	"math/rand/v2"
	"time"

	"mledger/internal/core"
)

// Responder wraps the engine with the simulated "thinking" delay answers are
// held for before delivery. Questions are never queued or deduplicated: two
// rapid-fire questions run their delays independently and may complete out
// of order.
type Responder struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

// NewResponder returns a responder with the standard one to two second
// delay.
func NewResponder() *Responder {
	return &Responder{MinDelay: time.Second, MaxDelay: 2 * time.Second}
}

// delay picks a uniform duration in [MinDelay, MaxDelay).
func (r *Responder) delay() time.Duration {
	if r.MaxDelay <= r.MinDelay {
		return r.MinDelay
	}
	return r.MinDelay + rand.N(r.MaxDelay-r.MinDelay)
}

// Respond answers the question against the given snapshot after the delay.
// Cancelling the context abandons delivery of this one answer; it has no
// effect on concurrent questions.
func (r *Responder) Respond(ctx context.Context, snap *core.Snapshot, questionText string) (string, error) {
	if d := r.delay(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return New(snap).Answer(questionText), nil
}
