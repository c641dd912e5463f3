// Package wager keeps the bets placed on a race and works out the payout.
package wager

import (
	"errors"
	"math"
	"sync"
)

var ErrUnknownMarble = errors.New("marble is not in this race")

// Wallet pays for bets.
type Wallet interface {
	Spend(amount int) error
}

// Bet is one stake on one marble.
type Bet struct {
	Marble string
	Amount int
}

// Book holds the bets for one race. It is safe for concurrent use.
type Book struct {
	mu      sync.Mutex
	racers  []string
	bets    []Bet
	settled bool
}

// NewBook opens a book over the marbles in the race.
func NewBook(racers []string) *Book {
	return &Book{racers: append([]string(nil), racers...)}
}

// Racers returns the marbles that can be bet on.
func (b *Book) Racers() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.racers...)
}

// Place stakes amount on marble, paid from w.
func (b *Book) Place(w Wallet, marble string, amount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasRacer(marble) {
		return ErrUnknownMarble
	}
	if err := w.Spend(amount); err != nil {
		return err
	}
	b.bets = append(b.bets, Bet{Marble: marble, Amount: amount})
	return nil
}

func (b *Book) hasRacer(marble string) bool {
	for _, r := range b.racers {
		if r == marble {
			return true
		}
	}
	return false
}

// Bets returns a copy of every bet in placement order.
func (b *Book) Bets() []Bet {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Bet(nil), b.bets...)
}

// Aggregate sums the stakes per marble.
func (b *Book) Aggregate() map[string]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.aggregate()
}

func (b *Book) aggregate() map[string]int {
	out := make(map[string]int, len(b.bets))
	for _, bet := range b.bets {
		out[bet.Marble] += bet.Amount
	}
	return out
}

// UniqueBets is the number of distinct marbles carrying a stake.
func (b *Book) UniqueBets() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.aggregate())
}

// Multiplier returns the payout multiplier for the current book.
func (b *Book) Multiplier() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Multiplier(len(b.aggregate()), len(b.racers))
}

// HighestReward is the largest single stake times the multiplier.
func (b *Book) HighestReward() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	largest := 0
	for _, bet := range b.bets {
		largest = max(largest, bet.Amount)
	}
	return float64(largest) * Multiplier(len(b.aggregate()), len(b.racers))
}

// Settle returns the gold won when winner takes the race: the total staked
// on the winner times the multiplier, rounded down. A book settles once;
// later calls return 0.
func (b *Book) Settle(winner string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.settled {
		return 0
	}
	b.settled = true
	agg := b.aggregate()
	m := Multiplier(len(agg), len(b.racers))
	return int(math.Floor(float64(agg[winner]) * m))
}

// Settled reports whether Settle has run.
func (b *Book) Settled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.settled
}

// Multiplier applies the unique-bet table and the competition bonus.
// Spreading stakes over more marbles lowers the base rate; leaving more of
// the field unbacked raises the bonus. The result never exceeds the number
// of available marbles.
func Multiplier(uniqueBets, available int) float64 {
	var base float64
	switch uniqueBets {
	case 2:
		base = 1.75
	case 3:
		base = 1.5
	case 4:
		base = 1.25
	default:
		base = 2.0
	}
	if available <= 0 {
		return base
	}
	bonus := 1 + float64(max(0, available-uniqueBets))/float64(available)
	return math.Min(base*bonus, float64(available))
}
