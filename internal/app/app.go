// Package app assembles the player session and the race server from the
// environment. Every command starts here.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/marbles/internal/catalog"
	"github.com/tomz197/marbles/internal/config"
	"github.com/tomz197/marbles/internal/race"
	raceconfig "github.com/tomz197/marbles/internal/race/config"
	"github.com/tomz197/marbles/internal/race/server"
	"github.com/tomz197/marbles/internal/session"
	"github.com/tomz197/marbles/internal/store"
)

const (
	defaultSavePath   = "marbles-save.json"
	defaultRoundPause = 5 * time.Second
)

// Config is the environment-driven setup shared by the commands.
type Config struct {
	SavePath    string        // MARBLES_SAVE_PATH
	CatalogPath string        // MARBLES_CATALOG, empty for the built-in marbles
	Seed        uint64        // MARBLES_SEED, 0 for a random race
	TrackLength float64       // MARBLES_TRACK_LENGTH
	RoundPause  time.Duration // MARBLES_ROUND_PAUSE seconds; negative disables auto rerun
}

// ConfigFromEnv reads the Config from the environment.
func ConfigFromEnv() Config {
	return Config{
		SavePath:    config.GetEnv("MARBLES_SAVE_PATH", defaultSavePath),
		CatalogPath: config.GetEnv("MARBLES_CATALOG", ""),
		Seed:        uint64(config.GetEnvInt("MARBLES_SEED", 0)),
		TrackLength: config.GetEnvFloat("MARBLES_TRACK_LENGTH", raceconfig.TrackLength),
		RoundPause:  time.Duration(config.GetEnvFloat("MARBLES_ROUND_PAUSE", defaultRoundPause.Seconds()) * float64(time.Second)),
	}
}

// Race is a running game: the player's session plus the server racing
// their unlocked marbles.
type Race struct {
	Session *session.Session
	Server  *server.Server
	Track   race.Track

	cfg     Config
	logger  *log.Logger
	mu      sync.Mutex
	pending *time.Timer
	stopped bool
	winners chan race.Event
}

// New opens the save file, reconciles the catalog and builds a server for
// the first round. The server is not started.
func New(cfg Config, logger *log.Logger) (*Race, error) {
	if logger == nil {
		logger = log.Default()
	}

	var templates []*catalog.Template
	if cfg.CatalogPath != "" {
		var err error
		templates, err = catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	}

	st := store.New(cfg.SavePath, store.State{Gold: session.DefaultStartingGold}, logger)
	sess := session.Open(st, session.Options{Templates: templates, Logger: logger})

	track := race.DefaultTrack()
	if cfg.TrackLength > 0 {
		track.Length = cfg.TrackLength
	}

	r := &Race{
		Session: sess,
		Track:   track,
		cfg:     cfg,
		logger:  logger.With("component", "app"),
		winners: make(chan race.Event, 1),
	}
	r.Server = server.NewServer(sess.Setup(), server.Options{
		Track:    track,
		Catalog:  sess.Catalog(),
		Seed:     cfg.Seed,
		Logger:   logger,
		OnWinner: r.onWinner,
	})
	return r, nil
}

// Winners delivers each round's winner event. Slow readers miss rounds.
func (r *Race) Winners() <-chan race.Event {
	return r.winners
}

// Run drives the server until ctx is cancelled.
func (r *Race) Run(ctx context.Context) {
	r.Server.Run(ctx)
}

// onWinner runs on the tick goroutine: it settles bets, saves progress and
// schedules the next round.
func (r *Race) onWinner(e race.Event) {
	won := r.Session.Settle(e.Marble)
	if err := r.Session.Save(); err != nil {
		r.logger.Error("failed to save progress", "err", err)
	}
	r.logger.Info("round won", "marble", e.Name, "payout", won, "gold", r.Session.Inventory().Gold())

	select {
	case r.winners <- e:
	default:
	}

	if r.cfg.RoundPause < 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.pending = time.AfterFunc(r.cfg.RoundPause, r.NextRound)
}

// NextRound re-synchronizes the catalog and queues a fresh round.
func (r *Race) NextRound() {
	r.Server.Reset(r.Session.Setup())
}

// Stop cancels any scheduled round and saves progress.
func (r *Race) Stop() error {
	r.mu.Lock()
	r.stopped = true
	if r.pending != nil {
		r.pending.Stop()
	}
	r.mu.Unlock()
	return r.Session.Save()
}
