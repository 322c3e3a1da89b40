package service

import (
	"strings"
	"sync"

	"github.com/Dan9191/loan-service/internal/errs"
)

// FallbackRate applies when a loan type is configured nowhere.
const FallbackRate = 12.0

// RateTable holds the default interest rate per loan type. Overrides live in
// a current map over the immutable defaults; all access goes through the
// mutex so concurrent updates are linearizable.
type RateTable struct {
	mu       sync.RWMutex
	defaults map[string]float64
	current  map[string]float64
}

// NewRateTable creates a rate table seeded from the parsed defaults
func NewRateTable(defaults map[string]float64) *RateTable {
	t := &RateTable{
		defaults: make(map[string]float64, len(defaults)),
		current:  make(map[string]float64, len(defaults)),
	}
	for k, v := range defaults {
		key := strings.ToUpper(k)
		t.defaults[key] = v
		t.current[key] = v
	}
	return t
}

// GetRate returns the current rate for a loan type, falling back to the
// defaults and finally to FallbackRate for unknown types. Lookup is
// case-insensitive.
func (t *RateTable) GetRate(loanType string) float64 {
	key := strings.ToUpper(loanType)
	t.mu.RLock()
	defer t.mu.RUnlock()
	if rate, ok := t.current[key]; ok {
		return rate
	}
	if rate, ok := t.defaults[key]; ok {
		return rate
	}
	return FallbackRate
}

// UpdateRate upserts the current rate for a loan type
func (t *RateTable) UpdateRate(loanType string, rate float64) error {
	if rate <= 0 {
		return errs.InvalidArgument("rate must be a positive number")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current[strings.ToUpper(loanType)] = rate
	return nil
}

// ResetToDefaults discards all overrides
func (t *RateTable) ResetToDefaults() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = make(map[string]float64, len(t.defaults))
	for k, v := range t.defaults {
		t.current[k] = v
	}
}

// AllRates returns a snapshot of the current rates. Mutating the returned
// map does not affect the table.
func (t *RateTable) AllRates() map[string]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snapshot := make(map[string]float64, len(t.current))
	for k, v := range t.current {
		snapshot[k] = v
	}
	return snapshot
}
