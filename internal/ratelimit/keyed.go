package ratelimit

import (
	"sync"
	"time"
)

// DefaultCleanupPeriod applies when KeyedConfig.CleanupPeriod is unset.
const DefaultCleanupPeriod = 5 * time.Minute

// DropRecorder counts rejected requests per limiter name.
// *metrics.Metrics satisfies it.
type DropRecorder interface {
	RecordRateLimiterDrop(limiterType string)
}

// KeyedConfig configures a KeyedLimiter.
type KeyedConfig struct {
	// Name labels drops in metrics, e.g. "chat".
	Name string

	Burst      float64 // bucket capacity
	RefillRate float64 // tokens per second

	// DailyLimit caps requests per key over a rolling 24h window.
	// Zero disables it.
	DailyLimit int

	CleanupPeriod time.Duration

	Metrics DropRecorder
}

// KeyedLimiter keeps one bucket per key (a client address, say) and
// forgets keys whose bucket has refilled.
type KeyedLimiter struct {
	mu      sync.RWMutex
	entries map[string]*keyedEntry
	config  KeyedConfig
	stopCh  chan struct{}
}

// keyedEntry's mutex makes the two-layer check and spend atomic.
type keyedEntry struct {
	mu      sync.Mutex
	limiter *Limiter
	daily   *SlidingWindowCounter
}

func newKeyedEntry(burst, refill float64, daily int) *keyedEntry {
	return &keyedEntry{
		limiter: New(burst, refill),
		daily:   NewSlidingWindowCounter(daily, 24*time.Hour),
	}
}

func (e *keyedEntry) allow() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.daily.Check() || !e.limiter.Check() {
		return false
	}
	e.daily.Consume()
	e.limiter.Consume()
	return true
}

func (e *keyedEntry) idle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.limiter.IsFull() && (e.daily == nil || e.daily.IsEmpty())
}

// NewKeyedLimiter starts the cleanup goroutine; call Stop when done.
func NewKeyedLimiter(cfg KeyedConfig) *KeyedLimiter {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = DefaultCleanupPeriod
	}
	kl := &KeyedLimiter{
		entries: make(map[string]*keyedEntry),
		config:  cfg,
		stopCh:  make(chan struct{}),
	}
	go kl.cleanupLoop()
	return kl
}

// Allow spends a token for key. An empty key is never limited.
func (kl *KeyedLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}
	if kl.entry(key).allow() {
		return true
	}
	if kl.config.Metrics != nil {
		kl.config.Metrics.RecordRateLimiterDrop(kl.config.Name)
	}
	return false
}

// RetryAfter is how long key must wait for its next token.
func (kl *KeyedLimiter) RetryAfter(key string) time.Duration {
	kl.mu.RLock()
	entry, ok := kl.entries[key]
	kl.mu.RUnlock()

	if !ok {
		return 0
	}
	return entry.limiter.RetryAfter()
}

func (kl *KeyedLimiter) entry(key string) *keyedEntry {
	kl.mu.RLock()
	entry, ok := kl.entries[key]
	kl.mu.RUnlock()
	if ok {
		return entry
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()

	if entry, ok = kl.entries[key]; ok {
		return entry
	}
	entry = newKeyedEntry(kl.config.Burst, kl.config.RefillRate, kl.config.DailyLimit)
	kl.entries[key] = entry
	return entry
}

// Available returns the tokens left for key, or Burst for an unseen key.
func (kl *KeyedLimiter) Available(key string) float64 {
	kl.mu.RLock()
	entry, ok := kl.entries[key]
	kl.mu.RUnlock()

	if !ok {
		return kl.config.Burst
	}
	return entry.limiter.Available()
}

// DailyRemaining returns the rolling daily quota left for key, or -1
// when no daily limit is set.
func (kl *KeyedLimiter) DailyRemaining(key string) int {
	if kl.config.DailyLimit <= 0 {
		return -1
	}

	kl.mu.RLock()
	entry, ok := kl.entries[key]
	kl.mu.RUnlock()

	if !ok {
		return kl.config.DailyLimit
	}
	return entry.daily.Remaining()
}

// ActiveCount returns the number of tracked keys.
func (kl *KeyedLimiter) ActiveCount() int {
	kl.mu.RLock()
	defer kl.mu.RUnlock()
	return len(kl.entries)
}

func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(kl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.mu.Lock()
			for key, entry := range kl.entries {
				if entry.idle() {
					delete(kl.entries, key)
				}
			}
			kl.mu.Unlock()
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (kl *KeyedLimiter) Stop() {
	select {
	case <-kl.stopCh:
	default:
		close(kl.stopCh)
	}
}
