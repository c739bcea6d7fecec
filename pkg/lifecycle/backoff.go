package lifecycle

import (
	"math/rand/v2"
	"time"
)

// Backoff spaces out polling attempts: each Wait sleeps about twice as long
// as the previous one, up to a ceiling, with ±20% jitter.
type Backoff struct {
	next     time.Duration
	ceiling  time.Duration
	attempts int
}

// NewBackoff returns a Backoff whose first Wait sleeps about initial.
func NewBackoff(initial, ceiling time.Duration) *Backoff {
	return &Backoff{next: initial, ceiling: ceiling}
}

// Wait sleeps for the next delay. It returns false as soon as abort is
// closed.
func (b *Backoff) Wait(abort <-chan struct{}) bool {
	delay := b.next + time.Duration(float64(b.next)*0.2*(rand.Float64()*2-1))
	b.attempts++
	b.next = min(b.next*2, b.ceiling)

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-abort:
		return false
	case <-timer.C:
		return true
	}
}

// Next is the delay, before jitter, of the upcoming Wait.
func (b *Backoff) Next() time.Duration { return b.next }

// Attempts counts the Waits so far.
func (b *Backoff) Attempts() int { return b.attempts }
