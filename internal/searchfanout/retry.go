package searchfanout

import (
	"math"
	"math/rand"
	"time"
)

// RetryPolicy controls per-query retry of a single backend call. Mirrors
// internal/dispatch's BackoffDelay/ShouldRetry shape, scaled down from
// dispatch-minutes to search-seconds.
type RetryPolicy struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryPolicy retries a failed query twice with exponential backoff
// starting at 500ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   2,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
	}
}

// BackoffDelay returns the delay before retry attempt n (1-indexed),
// base*2^(n-1) capped at maxDelay, with up to 10% jitter.
func BackoffDelay(attempt int, base, maxDelay time.Duration) time.Duration {
	if attempt <= 0 || base <= 0 {
		return 0
	}

	multiplier := math.Pow(2, float64(attempt-1))
	if math.IsInf(multiplier, 1) || multiplier > float64(maxDelay)/float64(base) {
		delay := maxDelay
		return delay + time.Duration(rand.Float64()*0.1*float64(delay))
	}

	delay := base * time.Duration(multiplier)
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay + time.Duration(rand.Float64()*0.1*float64(delay))
}
