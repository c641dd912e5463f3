package app

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/marbles/internal/session"
	"github.com/tomz197/marbles/internal/store"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("MARBLES_SAVE_PATH", "/tmp/x.msgpack")
	t.Setenv("MARBLES_SEED", "7")
	t.Setenv("MARBLES_TRACK_LENGTH", "40")
	t.Setenv("MARBLES_ROUND_PAUSE", "-1")

	cfg := ConfigFromEnv()
	if cfg.SavePath != "/tmp/x.msgpack" || cfg.Seed != 7 || cfg.TrackLength != 40 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.RoundPause != -time.Second {
		t.Fatalf("RoundPause = %v, want -1s", cfg.RoundPause)
	}
}

func TestNewRejectsMissingCatalog(t *testing.T) {
	_, err := New(Config{
		SavePath:    filepath.Join(t.TempDir(), "save.json"),
		CatalogPath: filepath.Join(t.TempDir(), "missing.json"),
	}, log.New(io.Discard))
	if err == nil {
		t.Fatalf("expected an error for a missing catalog file")
	}
}

func TestRaceSettlesAndSavesOnWin(t *testing.T) {
	savePath := filepath.Join(t.TempDir(), "save.json")
	logger := log.New(io.Discard)
	r, err := New(Config{SavePath: savePath, Seed: 11, TrackLength: 25, RoundPause: -1}, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	racers := r.Session.Book().Racers()
	if len(racers) == 0 {
		t.Fatalf("no racers for a new player")
	}
	for _, id := range racers {
		if err := r.Session.Bet(id, 10); err != nil {
			t.Fatalf("Bet(%s): %v", id, err)
		}
	}

	for i := 0; i < 50*120 && !r.Server.GetSnapshot().Finished(); i++ {
		r.Server.Tick()
	}
	if !r.Server.GetSnapshot().Finished() {
		t.Fatalf("race never finished")
	}

	select {
	case e := <-r.Winners():
		if e.Marble != r.Server.GetSnapshot().Winner {
			t.Fatalf("winner event %q, snapshot %q", e.Marble, r.Server.GetSnapshot().Winner)
		}
	default:
		t.Fatalf("no winner delivered")
	}

	if !r.Session.Book().Settled() {
		t.Fatalf("book not settled")
	}
	if r.Session.Inventory().Gold() <= session.DefaultStartingGold-10*len(racers) {
		t.Fatalf("winning bet paid nothing: gold %d", r.Session.Inventory().Gold())
	}
	if _, err := os.Stat(savePath); err != nil {
		t.Fatalf("progress not saved: %v", err)
	}
	saved, err := store.New(savePath, store.State{}, logger).Read()
	if err != nil || saved.Gold != r.Session.Inventory().Gold() {
		t.Fatalf("saved state %+v (err %v), gold %d", saved, err, r.Session.Inventory().Gold())
	}

	r.NextRound()
	r.Server.Tick()
	if snap := r.Server.GetSnapshot(); snap.Round != 2 || snap.Finished() {
		t.Fatalf("next round not started: %+v", snap)
	}
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
