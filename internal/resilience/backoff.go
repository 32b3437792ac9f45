package resilience

import (
	"math/rand/v2"
	"time"
)

const defaultBackoffBase = 100 * time.Millisecond

// Backoff returns base·2^(attempt-1) spread by ±jitter (a fraction, 0.2 = 20%).
// Attempts below one are treated as the first attempt.
func Backoff(base time.Duration, attempt int, jitter float64) time.Duration {
	if base <= 0 {
		base = defaultBackoffBase
	}
	d := base << (max(attempt, 1) - 1)
	if jitter <= 0 {
		return d
	}
	spread := float64(d) * jitter
	return d + time.Duration((rand.Float64()*2-1)*spread)
}
