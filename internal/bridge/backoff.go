package bridge

import (
	"math"
	"math/rand/v2"
	"time"
)

// Backoff configures reconnect delays: exponential growth capped at
// MaxWait with ±20% jitter. MaxAttempts bounds consecutive failed
// connection attempts; 0 retries forever.
type Backoff struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultBackoff returns the stock reconnect policy.
func DefaultBackoff() Backoff {
	return Backoff{
		MaxAttempts: 0,
		InitialWait: 500 * time.Millisecond,
		MaxWait:     30 * time.Second,
		Multiplier:  2.0,
	}
}

// Delay computes the wait before reconnect attempt n (0-based).
func (b Backoff) Delay(n int) time.Duration {
	wait := float64(b.InitialWait) * math.Pow(b.Multiplier, float64(n))
	if wait > float64(b.MaxWait) {
		wait = float64(b.MaxWait)
	}

	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}

// exhausted reports whether n consecutive failures use up the budget.
func (b Backoff) exhausted(n int) bool {
	return b.MaxAttempts > 0 && n >= b.MaxAttempts
}
