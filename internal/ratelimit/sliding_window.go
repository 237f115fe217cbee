package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindowCounter approximates a rolling window with two fixed
// windows. The effective count is the current window's count plus the
// previous window's count weighted by how much of it still overlaps
// the rolling window:
//
//	effective = curr + prev * (window - elapsed) / window
//
// A nil counter is disabled and allows everything.
type SlidingWindowCounter struct {
	mu              sync.Mutex
	currCount       int
	prevCount       int
	currWindowStart time.Time
	windowDuration  time.Duration
	maxRequests     int
}

// NewSlidingWindowCounter returns nil when maxRequests <= 0.
func NewSlidingWindowCounter(maxRequests int, windowDuration time.Duration) *SlidingWindowCounter {
	if maxRequests <= 0 {
		return nil
	}
	return &SlidingWindowCounter{
		currWindowStart: time.Now(),
		windowDuration:  windowDuration,
		maxRequests:     maxRequests,
	}
}

// Allow counts a request if the window has room for it.
func (swc *SlidingWindowCounter) Allow() bool {
	if swc == nil {
		return true
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	if !swc.hasRoom() {
		return false
	}
	swc.currCount++
	return true
}

// Check reports whether a request would be counted.
func (swc *SlidingWindowCounter) Check() bool {
	if swc == nil {
		return true
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	return swc.hasRoom()
}

// Consume counts a request if the window still has room.
func (swc *SlidingWindowCounter) Consume() {
	if swc == nil {
		return
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	if swc.hasRoom() {
		swc.currCount++
	}
}

// hasRoom must be called with mu held.
func (swc *SlidingWindowCounter) hasRoom() bool {
	swc.rotate()
	return swc.weighted() < float64(swc.maxRequests)
}

// rotate must be called with mu held.
func (swc *SlidingWindowCounter) rotate() {
	elapsed := time.Since(swc.currWindowStart)
	if elapsed < swc.windowDuration {
		return
	}

	passed := int(elapsed / swc.windowDuration)
	if passed == 1 {
		swc.prevCount = swc.currCount
	} else {
		// the previous window is older than one full window
		swc.prevCount = 0
	}
	swc.currCount = 0
	swc.currWindowStart = swc.currWindowStart.Add(time.Duration(passed) * swc.windowDuration)
}

// weighted must be called with mu held.
func (swc *SlidingWindowCounter) weighted() float64 {
	overlap := float64(swc.windowDuration-time.Since(swc.currWindowStart)) / float64(swc.windowDuration)
	overlap = max(0, min(1, overlap))
	return float64(swc.currCount) + float64(swc.prevCount)*overlap
}

// EffectiveCount returns the weighted request count.
func (swc *SlidingWindowCounter) EffectiveCount() float64 {
	if swc == nil {
		return 0
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.rotate()
	return swc.weighted()
}

// Remaining returns the approximate number of requests left, or -1
// for a disabled counter.
func (swc *SlidingWindowCounter) Remaining() int {
	if swc == nil {
		return -1
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.rotate()
	return max(0, int(float64(swc.maxRequests)-swc.weighted()))
}

// IsEmpty reports whether no requests count against the window.
func (swc *SlidingWindowCounter) IsEmpty() bool {
	return swc.EffectiveCount() == 0
}
