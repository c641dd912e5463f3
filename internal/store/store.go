// Package store persists player progress between sessions.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrNoState is returned by Read when there is no save file.
var ErrNoState = errors.New("no saved state")

// State is the persisted player record.
type State struct {
	Gold       int      `json:"gold" msgpack:"gold"`
	OwnedItems []string `json:"owned_items" msgpack:"owned_items"`
	Unlocked   []string `json:"unlocked" msgpack:"unlocked"`
}

// Format selects the on-disk encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatMsgpack
)

// FormatFor picks the encoding from the file extension: .msgpack and .mp
// use msgpack, everything else JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp":
		return FormatMsgpack
	default:
		return FormatJSON
	}
}

// Store reads and writes one save file.
type Store struct {
	path    string
	format  Format
	initial State
	logger  *log.Logger
}

// New creates a store for path. initial is the state a new player starts
// with when there is nothing usable on disk.
func New(path string, initial State, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		path:    path,
		format:  FormatFor(path),
		initial: initial,
		logger:  logger.With("component", "store"),
	}
}

// Path returns the save file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the saved state. An absent or unreadable file yields the
// initial state and false; the problem is logged as a warning.
func (s *Store) Load() (State, bool) {
	st, err := s.Read()
	if err != nil {
		if errors.Is(err, ErrNoState) {
			s.logger.Warn("no save file, starting a new game", "path", s.path)
		} else {
			s.logger.Warn("save file unusable, starting a new game", "path", s.path, "err", err)
		}
		return s.fresh(), false
	}
	return st, true
}

func (s *Store) fresh() State {
	st := s.initial
	st.OwnedItems = append([]string(nil), s.initial.OwnedItems...)
	st.Unlocked = append([]string(nil), s.initial.Unlocked...)
	return st
}

// Read decodes the save file without any fallback.
func (s *Store) Read() (State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return State{}, ErrNoState
		}
		return State{}, fmt.Errorf("read save: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return State{}, ErrNoState
	}

	var st State
	switch s.format {
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &st)
	default:
		err = json.Unmarshal(data, &st)
	}
	if err != nil {
		return State{}, fmt.Errorf("decode save: %w", err)
	}
	return st, nil
}

// Save writes st atomically: it encodes to a temporary file in the same
// directory and renames it over the save file.
func (s *Store) Save(st State) error {
	var (
		data []byte
		err  error
	)
	switch s.format {
	case FormatMsgpack:
		data, err = msgpack.Marshal(&st)
	default:
		data, err = json.MarshalIndent(&st, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode save: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".save-*")
	if err != nil {
		return fmt.Errorf("create temp save: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close save: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace save: %w", err)
	}
	s.logger.Debug("saved", "path", s.path, "gold", st.Gold)
	return nil
}
