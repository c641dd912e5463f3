// Package inventory tracks the player's gold and owned shop items.
package inventory

import (
	"errors"
	"slices"
	"sync"

	"github.com/tomz197/marbles/internal/catalog"
)

var (
	ErrAlreadyOwned     = errors.New("item already owned")
	ErrInsufficientGold = errors.New("not enough gold")
	ErrInvalidAmount    = errors.New("amount must be positive")
)

// Item is something the shop sells.
type Item struct {
	ID    string
	Name  string
	Price int
}

// ShopItems lists every template as a purchasable item, in catalog order.
// Templates that start unlocked and cost nothing are not sold.
func ShopItems(templates []*catalog.Template) []Item {
	var items []Item
	for _, t := range templates {
		if t == nil || (t.Unlocked && t.Price == 0) {
			continue
		}
		items = append(items, Item{ID: t.ID, Name: t.Name, Price: t.Price})
	}
	return items
}

// Inventory is safe for concurrent use.
type Inventory struct {
	mu    sync.RWMutex
	gold  int
	owned []string
}

// New creates an inventory holding gold and the owned item ids.
func New(gold int, owned []string) *Inventory {
	inv := &Inventory{gold: gold}
	for _, id := range owned {
		if id != "" && !slices.Contains(inv.owned, id) {
			inv.owned = append(inv.owned, id)
		}
	}
	return inv
}

// Gold returns the current balance.
func (inv *Inventory) Gold() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.gold
}

// Owned returns a copy of the owned item ids.
func (inv *Inventory) Owned() []string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return slices.Clone(inv.owned)
}

// Owns reports whether id has been purchased.
func (inv *Inventory) Owns(id string) bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return slices.Contains(inv.owned, id)
}

// AddGold credits amount. Non-positive amounts are ignored.
func (inv *Inventory) AddGold(amount int) {
	if amount <= 0 {
		return
	}
	inv.mu.Lock()
	inv.gold += amount
	inv.mu.Unlock()
}

// Spend debits amount if the balance covers it.
func (inv *Inventory) Spend(amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.gold < amount {
		return ErrInsufficientGold
	}
	inv.gold -= amount
	return nil
}

// Purchase buys item: it must not be owned yet and the balance must cover
// the price. On success the price is deducted and the id recorded.
func (inv *Inventory) Purchase(item Item) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if slices.Contains(inv.owned, item.ID) {
		return ErrAlreadyOwned
	}
	if inv.gold < item.Price {
		return ErrInsufficientGold
	}
	inv.gold -= item.Price
	inv.owned = append(inv.owned, item.ID)
	return nil
}
