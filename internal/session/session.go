// Package session wires the player's saved progress, inventory, catalog
// and wagers together for one run of the game.
package session

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/tomz197/marbles/internal/catalog"
	"github.com/tomz197/marbles/internal/inventory"
	"github.com/tomz197/marbles/internal/store"
	"github.com/tomz197/marbles/internal/wager"
)

// DefaultStartingGold is the balance of a brand new player.
const DefaultStartingGold = 100

// Options configures a Session.
type Options struct {
	Templates []*catalog.Template // Defaults to the built-in catalog
	Logger    *log.Logger
}

// Session is the explicit replacement for global game managers: it is
// built once at startup and handed to whoever needs it.
type Session struct {
	mu        sync.Mutex
	store     *store.Store
	inventory *inventory.Inventory
	catalog   *catalog.Synchronizer
	templates []*catalog.Template
	persisted []string
	book      *wager.Book
	logger    *log.Logger
}

// Open loads saved progress from st and builds the services on top of it.
func Open(st *store.Store, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if len(opts.Templates) == 0 {
		opts.Templates = catalog.Default()
	}

	state, _ := st.Load()
	return &Session{
		store:     st,
		inventory: inventory.New(state.Gold, state.OwnedItems),
		catalog:   catalog.FromTemplates(opts.Templates, opts.Logger),
		templates: opts.Templates,
		persisted: state.Unlocked,
		logger:    opts.Logger.With("component", "session"),
	}
}

// Inventory returns the player's inventory.
func (s *Session) Inventory() *inventory.Inventory {
	return s.inventory
}

// Catalog returns the unlock synchronizer.
func (s *Session) Catalog() *catalog.Synchronizer {
	return s.catalog
}

// Shop lists the items for sale.
func (s *Session) Shop() []inventory.Item {
	return inventory.ShopItems(s.templates)
}

// Setup reconciles the unlocked marbles for a new race and opens a fresh
// wager book over them. It returns the unlocked entries.
func (s *Session) Setup() []catalog.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog.Sync(s.persisted, s.inventory.Owned())
	unlocked := s.catalog.Unlocked()

	racers := make([]string, 0, len(unlocked))
	for _, e := range unlocked {
		racers = append(racers, e.ID())
	}
	s.book = wager.NewBook(racers)
	s.logger.Info("race set up", "marbles", len(racers), "gold", s.inventory.Gold())
	return unlocked
}

// Book returns the wager book for the current race, or nil before Setup.
func (s *Session) Book() *wager.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book
}

// Bet places a stake on marble for the current race.
func (s *Session) Bet(marble string, amount int) error {
	book := s.Book()
	if book == nil {
		return fmt.Errorf("bet on %s: no race set up", marble)
	}
	if err := book.Place(s.inventory, marble, amount); err != nil {
		return fmt.Errorf("bet on %s: %w", marble, err)
	}
	s.logger.Debug("bet placed", "marble", marble, "amount", amount)
	return nil
}

// Purchase buys the shop item with the given id and reconciles the catalog
// so the marble is available from the next race on.
func (s *Session) Purchase(id string) error {
	var item *inventory.Item
	for _, it := range s.Shop() {
		if it.ID == id {
			item = &it
			break
		}
	}
	if item == nil {
		return fmt.Errorf("purchase %s: not for sale", id)
	}
	if err := s.inventory.Purchase(*item); err != nil {
		return fmt.Errorf("purchase %s: %w", id, err)
	}

	s.mu.Lock()
	s.catalog.Sync(s.persisted, s.inventory.Owned())
	s.mu.Unlock()
	s.logger.Info("item purchased", "item", id, "price", item.Price, "gold", s.inventory.Gold())
	return nil
}

// Settle pays out the current book for winner and returns the winnings.
func (s *Session) Settle(winner string) int {
	book := s.Book()
	if book == nil {
		return 0
	}
	won := book.Settle(winner)
	s.inventory.AddGold(won)
	s.logger.Info("race settled", "winner", winner, "won", won, "gold", s.inventory.Gold())
	return won
}

// Save writes gold, owned items and the unlocked marbles.
func (s *Session) Save() error {
	s.mu.Lock()
	unlocked := s.catalog.UnlockedIDs()
	s.persisted = unlocked
	s.mu.Unlock()

	return s.store.Save(store.State{
		Gold:       s.inventory.Gold(),
		OwnedItems: s.inventory.Owned(),
		Unlocked:   unlocked,
	})
}
