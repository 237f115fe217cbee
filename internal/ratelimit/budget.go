package ratelimit

import "time"

// BudgetConfig configures a Budget.
type BudgetConfig struct {
	Name          string
	Burst         float64
	RefillPerHour float64
	DailyLimit    int // 0 disables the daily cap
	Metrics       DropRecorder
}

// Budget is a single process-wide allowance, used to cap calls to paid
// LLM providers regardless of which client triggered them.
// A nil Budget allows everything.
type Budget struct {
	name    string
	entry   *keyedEntry
	metrics DropRecorder
}

// NewBudget returns nil when Burst is not positive.
func NewBudget(cfg BudgetConfig) *Budget {
	if cfg.Burst <= 0 {
		return nil
	}
	return &Budget{
		name:    cfg.Name,
		entry:   newKeyedEntry(cfg.Burst, cfg.RefillPerHour/float64(time.Hour/time.Second), cfg.DailyLimit),
		metrics: cfg.Metrics,
	}
}

// Allow spends one call from the budget.
func (b *Budget) Allow() bool {
	if b == nil {
		return true
	}
	if b.entry.allow() {
		return true
	}
	if b.metrics != nil {
		b.metrics.RecordRateLimiterDrop(b.name)
	}
	return false
}

// Available returns the calls left in the hourly bucket.
func (b *Budget) Available() float64 {
	if b == nil {
		return -1
	}
	return b.entry.limiter.Available()
}

// DailyRemaining returns the calls left today, or -1 when uncapped.
func (b *Budget) DailyRemaining() int {
	if b == nil {
		return -1
	}
	return b.entry.daily.Remaining()
}
