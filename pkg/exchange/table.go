package exchange

import (
	"sync"

	"github.com/shopspring/decimal"
)

// RateTable holds user-defined currency rates to the ruble. Rates live
// in process memory only and are shared across all chats.
type RateTable struct {
	mu    sync.RWMutex
	rates map[string]decimal.Decimal
}

// NewRateTable creates an empty rate table.
func NewRateTable() *RateTable {
	return &RateTable{
		rates: make(map[string]decimal.Decimal),
	}
}

// Save stores or replaces the rate of a currency to the ruble.
func (rt *RateTable) Save(code string, rate decimal.Decimal) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.rates[code] = rate
}

// Get returns the stored rate of a currency and whether it is known.
func (rt *RateTable) Get(code string) (decimal.Decimal, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	rate, ok := rt.rates[code]
	return rate, ok
}

// Len returns the number of stored currencies.
func (rt *RateTable) Len() int {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	return len(rt.rates)
}
