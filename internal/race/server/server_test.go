package server

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/marbles/internal/catalog"
	"github.com/tomz197/marbles/internal/race"
)

func allEntries() []catalog.Entry {
	var entries []catalog.Entry
	for _, t := range catalog.Default() {
		entries = append(entries, catalog.Entry{Template: t, Unlocked: true})
	}
	return entries
}

func testServer(onWinner func(race.Event)) *Server {
	track := race.DefaultTrack()
	track.Length = 25
	return NewServer(allEntries(), Options{
		Track:    track,
		TickTime: time.Second / 50,
		Seed:     42,
		Logger:   log.New(io.Discard),
		OnWinner: onWinner,
	})
}

func drain(ch chan SpectatorEvent) []SpectatorEvent {
	var out []SpectatorEvent
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestInitialSnapshot(t *testing.T) {
	s := testServer(nil)
	snap := s.GetSnapshot()
	if snap == nil || snap.Round != 1 || len(snap.Marbles) != 5 {
		t.Fatalf("unexpected initial snapshot %+v", snap)
	}
	if snap.Finished() {
		t.Fatalf("fresh round should not be finished")
	}
}

func TestRoundRunsToWinner(t *testing.T) {
	var winners []race.Event
	s := testServer(func(e race.Event) { winners = append(winners, e) })
	watcher := s.RegisterSpectator("watcher")

	var events []SpectatorEvent
	for i := 0; i < 50*120 && !s.GetSnapshot().Finished(); i++ {
		s.Tick()
		events = append(events, drain(watcher.EventsCh)...)
	}
	snap := s.GetSnapshot()
	if !snap.Finished() {
		t.Fatalf("no winner after two minutes of race time")
	}
	if len(winners) != 1 || winners[0].Marble != snap.Winner {
		t.Fatalf("OnWinner calls %+v, snapshot winner %q", winners, snap.Winner)
	}
	found := false
	for _, ev := range events {
		if ev.Type == EventWinner && ev.Marble == snap.Winner {
			found = true
		}
	}
	if !found {
		t.Fatalf("spectator never heard about the winner: %+v", events)
	}
	if snap.Standings[0].Marble != snap.Winner {
		t.Fatalf("winner not on top of the standings: %+v", snap.Standings[0])
	}
}

func TestResetStartsNewRound(t *testing.T) {
	s := testServer(nil)
	watcher := s.RegisterSpectator("watcher")
	for i := 0; i < 10; i++ {
		s.Tick()
	}

	s.Reset(allEntries()[:2])
	s.Tick()

	snap := s.GetSnapshot()
	if snap.Round != 2 || len(snap.Marbles) != 2 || snap.Tick != 1 {
		t.Fatalf("reset snapshot %+v", snap)
	}
	events := drain(watcher.EventsCh)
	if len(events) == 0 || events[len(events)-1].Type != EventRoundReset {
		t.Fatalf("expected reset event, got %+v", events)
	}

	s.Reset(nil)
	s.Tick()
	if snap := s.GetSnapshot(); snap.Round != 3 || len(snap.Marbles) != 2 {
		t.Fatalf("nil reset should rerun the same entries: %+v", snap)
	}
}

func TestUnregisterClosesEvents(t *testing.T) {
	s := testServer(nil)
	watcher := s.RegisterSpectator("a-very-long-spectator-name")
	if len(watcher.Name) > 16 {
		t.Fatalf("name not truncated: %q", watcher.Name)
	}
	s.Tick()
	if s.GetSnapshot().Spectators != 1 {
		t.Fatalf("spectator not registered")
	}

	s.UnregisterSpectator(watcher.ID)
	s.Tick()
	if _, ok := <-watcher.EventsCh; ok {
		t.Fatalf("events channel should be closed")
	}
	if s.GetSnapshot().Spectators != 0 {
		t.Fatalf("spectator still counted")
	}
}

func TestShutdownNotifiesSpectators(t *testing.T) {
	s := testServer(nil)
	watcher := s.RegisterSpectator("watcher")
	s.Tick()

	go func() {
		for ev := range watcher.EventsCh {
			if ev.Type == EventServerShutdown {
				s.UnregisterSpectator(watcher.ID)
				return
			}
		}
	}()

	start := time.Now()
	s.Shutdown(5 * time.Second)
	if time.Since(start) > 2*time.Second {
		t.Fatalf("shutdown waited for the full timeout")
	}
}
