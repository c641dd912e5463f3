package store

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"
)

func quiet() *log.Logger { return log.New(io.Discard) }

func TestSaveAndLoadBothFormats(t *testing.T) {
	for _, name := range []string{"save.json", "save.msgpack"} {
		path := filepath.Join(t.TempDir(), name)
		s := New(path, State{}, quiet())
		want := State{Gold: 120, OwnedItems: []string{"Feather"}, Unlocked: []string{"BigBoy", "Feather"}}

		if err := s.Save(want); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		got, ok := s.Load()
		if !ok || !reflect.DeepEqual(got, want) {
			t.Fatalf("%s: Load() = %+v, %v", name, got, ok)
		}
	}
}

func TestMissingFileFallsBackToInitial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.json")
	s := New(path, State{Gold: 100}, quiet())

	if _, err := s.Read(); !errors.Is(err, ErrNoState) {
		t.Fatalf("Read() err = %v, want ErrNoState", err)
	}
	got, ok := s.Load()
	if ok || got.Gold != 100 {
		t.Fatalf("Load() = %+v, %v", got, ok)
	}
}

func TestCorruptFileFallsBackToInitial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	s := New(path, State{Gold: 5, Unlocked: []string{"A"}}, quiet())

	got, ok := s.Load()
	if ok || got.Gold != 5 || len(got.Unlocked) != 1 {
		t.Fatalf("Load() = %+v, %v", got, ok)
	}
	got.Unlocked[0] = "changed"
	if again, _ := s.Load(); again.Unlocked[0] != "A" {
		t.Fatalf("fallback state shares memory with the initial state")
	}
}

func TestFormatFor(t *testing.T) {
	cases := map[string]Format{
		"a.json":    FormatJSON,
		"a.MSGPACK": FormatMsgpack,
		"a.mp":      FormatMsgpack,
		"a":         FormatJSON,
	}
	for path, want := range cases {
		if got := FormatFor(path); got != want {
			t.Fatalf("FormatFor(%q) = %v, want %v", path, got, want)
		}
	}
}
