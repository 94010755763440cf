// Package economy prices structures and holds the player's budget.
package economy

import (
	"fmt"
	"sync"

	"github.com/talgya/hexhold/internal/world"
)

// Prices maps each placeable structure to its cost.
type Prices map[world.Structure]int

// DefaultPrices returns the standard price table.
func DefaultPrices() Prices {
	return Prices{
		world.Anchor: 10, // Build
		world.None:   2,  // Demolish
	}
}

// Cost returns the price of kind and whether it is sold at all.
func (p Prices) Cost(kind world.Structure) (int, bool) {
	c, ok := p[kind]
	return c, ok
}

// Wallet is a budget of credits that accrues income over time.
// Safe for concurrent use.
type Wallet struct {
	mu      sync.Mutex
	prices  Prices
	balance float64
	income  float64 // credits per unit of tick delta
	spent   int
}

// NewWallet creates a wallet with a starting balance and income rate.
func NewWallet(prices Prices, balance, income float64) *Wallet {
	return &Wallet{prices: prices, balance: balance, income: income}
}

// Afford reports whether the balance covers kind. Unpriced kinds are
// never affordable.
func (w *Wallet) Afford(kind world.Structure) bool {
	cost, ok := w.prices.Cost(kind)
	if !ok {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance >= float64(cost)
}

// Charge deducts the cost of kind.
func (w *Wallet) Charge(kind world.Structure) {
	cost, ok := w.prices.Cost(kind)
	if !ok {
		return
	}
	w.mu.Lock()
	w.balance -= float64(cost)
	w.spent += cost
	w.mu.Unlock()
}

// Earn accrues income for delta time units.
func (w *Wallet) Earn(delta float64) {
	if delta <= 0 {
		return
	}
	w.mu.Lock()
	w.balance += w.income * delta
	w.mu.Unlock()
}

// Balance returns the current balance.
func (w *Wallet) Balance() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// Spent returns the total credits charged so far.
func (w *Wallet) Spent() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.spent
}

func (w *Wallet) String() string {
	return fmt.Sprintf("Wallet(balance=%.1f, spent=%d)", w.Balance(), w.Spent())
}
