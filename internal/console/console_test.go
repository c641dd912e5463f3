package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/marbles/internal/catalog"
	"github.com/tomz197/marbles/internal/object"
	"github.com/tomz197/marbles/internal/race"
	"github.com/tomz197/marbles/internal/race/server"
)

func sampleSnapshot() *server.RaceSnapshot {
	return &server.RaceSnapshot{
		Round:   3,
		Elapsed: 4 * time.Second,
		Marbles: []object.Readout{
			{ID: 1, Name: "Feather", Ability: "SpeedDash", AbilityState: "activating", Speed: 9},
			{ID: 2, Name: "Big Boy", Ability: "GrowthBurst", AbilityState: "cooldown", Speed: 3},
		},
		Standings: []race.Standing{
			{Place: 1, MarbleID: 1, Marble: "Feather", Name: "Feather", Distance: 50},
			{Place: 2, MarbleID: 2, Marble: "BigBoy", Name: "Big Boy", Eliminated: true, Distance: 150},
		},
	}
}

func TestBoardLines(t *testing.T) {
	b := Board{TrackLength: 100, Width: 80}
	lines := b.Lines(sampleSnapshot(), []string{"Big Boy fell off the track"})

	text := strings.Join(lines, "\n")
	for _, want := range []string{"round 3", "1. Feather", "SpeedDash: activating", "out", "Racing...", "fell off"} {
		if !strings.Contains(text, want) {
			t.Fatalf("board missing %q:\n%s", want, text)
		}
	}
}

func TestBoardShowsWinner(t *testing.T) {
	snap := sampleSnapshot()
	snap.Winner, snap.WinnerName = "Feather", "Feather"
	lines := Board{TrackLength: 100}.Lines(snap, nil)
	if !strings.Contains(strings.Join(lines, "\n"), "Winner: Feather!") {
		t.Fatalf("expected winner line in %v", lines)
	}
}

func TestBoardWithoutSnapshot(t *testing.T) {
	if lines := (Board{}).Lines(nil, nil); len(lines) != 1 {
		t.Fatalf("expected a single waiting line, got %v", lines)
	}
}

func TestProgressBar(t *testing.T) {
	b := Board{TrackLength: 100}
	cases := []struct {
		distance   float64
		finished   bool
		eliminated bool
		want       string
	}{
		{100, false, false, "[o.........]"},
		{50, false, false, "[=====o....]"},
		{0, true, false, "[==========]"},
		{-5, false, false, "[==========]"},
		{70, false, true, "[xxx.......]"},
	}
	for _, c := range cases {
		if got := b.progress(c.distance, c.finished, c.eliminated, 10); got != c.want {
			t.Fatalf("progress(%v, %v, %v) = %q, want %q", c.distance, c.finished, c.eliminated, got, c.want)
		}
	}
}

func TestChunkWriterFlush(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out)
	cw.Line(2, "hello")
	if out.Len() != 0 {
		t.Fatalf("nothing should be written before Flush")
	}
	if err := cw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := out.String(); got != "\033[2;1Hhello\033[K" {
		t.Fatalf("unexpected output %q", got)
	}

	long := strings.Repeat("x", 3*maxChunkSize+7)
	cw.WriteString(long)
	out.Reset()
	if err := cw.Flush(); err != nil || out.String() != long {
		t.Fatalf("long frame not written intact (err %v, %d bytes)", err, out.Len())
	}
}

func TestParseKey(t *testing.T) {
	if parseKey('q') != CommandQuit || parseKey(3) != CommandQuit {
		t.Fatalf("q and Ctrl-C should quit")
	}
	if parseKey('r') != CommandReset || parseKey('x') != CommandNone {
		t.Fatalf("unexpected key mapping")
	}
}

type fakeServer struct {
	handle       *server.SpectatorHandle
	snap         *server.RaceSnapshot
	unregistered []int
	resets       int
}

func (f *fakeServer) RegisterSpectator(name string) *server.SpectatorHandle {
	f.handle = &server.SpectatorHandle{ID: 4, Name: name, EventsCh: make(chan server.SpectatorEvent, 8)}
	return f.handle
}

func (f *fakeServer) UnregisterSpectator(id int)        { f.unregistered = append(f.unregistered, id) }
func (f *fakeServer) GetSnapshot() *server.RaceSnapshot { return f.snap }
func (f *fakeServer) Reset(entries []catalog.Entry)     { f.resets++ }

func fixedSize() (int, int, error) { return 100, 30, nil }

func testViewer(fs *fakeServer, r io.Reader, out io.Writer) *Viewer {
	return NewViewer(fs, r, out, ViewerOptions{
		Name:           "tester",
		TrackLength:    100,
		TermSizeFunc:   fixedSize,
		FrameTime:      time.Millisecond,
		ShutdownLinger: 5 * time.Millisecond,
		AllowReset:     true,
		Logger:         log.New(io.Discard),
	})
}

func TestViewerQuitsOnKey(t *testing.T) {
	fs := &fakeServer{snap: sampleSnapshot()}
	var out bytes.Buffer
	v := testViewer(fs, strings.NewReader("q"), &out)

	if err := v.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(fs.unregistered) != 1 || fs.unregistered[0] != 4 {
		t.Fatalf("expected spectator 4 unregistered, got %v", fs.unregistered)
	}
}

func TestViewerLingersAfterShutdown(t *testing.T) {
	fs := &fakeServer{snap: sampleSnapshot()}
	var out bytes.Buffer
	v := testViewer(fs, nil, &out)

	fs.handle.EventsCh <- server.SpectatorEvent{Type: server.EventWinner, Round: 3, Name: "Feather"}
	fs.handle.EventsCh <- server.SpectatorEvent{Type: server.EventServerShutdown, Round: 3}

	done := make(chan error, 1)
	go func() { done <- v.Run(context.Background()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("viewer did not exit after shutdown")
	}

	events := v.Events()
	if len(events) != 2 || !strings.Contains(events[0], "Feather wins") {
		t.Fatalf("unexpected events %v", events)
	}
	if !strings.Contains(out.String(), "server is shutting down") {
		t.Fatalf("shutdown notice never drawn")
	}
}

func TestViewerStopsOnContext(t *testing.T) {
	fs := &fakeServer{snap: sampleSnapshot()}
	var out bytes.Buffer
	v := testViewer(fs, nil, &out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := v.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "Feather") {
		t.Fatalf("final frame not drawn")
	}
}
