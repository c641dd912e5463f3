package catalog

import (
	"github.com/charmbracelet/log"
)

// Entry pairs a template with its current unlocked flag.
type Entry struct {
	Template *Template
	Unlocked bool
}

// ID returns the template id, or "" for an entry without a template.
func (e Entry) ID() string {
	if e.Template == nil {
		return ""
	}
	return e.Template.ID
}

// Synchronizer decides, for every template, whether it is unlocked.
//
// Sync always starts again from the template defaults, so calling it twice
// with the same inputs gives the same answer.
type Synchronizer struct {
	templates []*Template
	entries   []Entry
	index     map[string]int
	logger    *log.Logger
}

// NewSynchronizer builds a synchronizer over the templates carried by
// sources. Sources without a template are skipped. Until Sync runs every
// entry holds its default flag.
func NewSynchronizer(sources []Bearer, logger *log.Logger) *Synchronizer {
	if logger == nil {
		logger = log.Default()
	}
	s := &Synchronizer{
		index:  make(map[string]int, len(sources)),
		logger: logger.With("component", "catalog"),
	}
	for _, src := range sources {
		if src == nil {
			continue
		}
		t := src.MarbleTemplate()
		if t == nil || t.ID == "" {
			s.logger.Warn("skipping marble source without template")
			continue
		}
		if _, dup := s.index[t.ID]; dup {
			s.logger.Warn("skipping duplicate marble template", "id", t.ID)
			continue
		}
		s.index[t.ID] = len(s.templates)
		s.templates = append(s.templates, t)
	}
	s.seed()
	return s
}

// FromTemplates is a convenience wrapper for a plain template list.
func FromTemplates(templates []*Template, logger *log.Logger) *Synchronizer {
	sources := make([]Bearer, 0, len(templates))
	for _, t := range templates {
		if t != nil {
			sources = append(sources, t)
		}
	}
	return NewSynchronizer(sources, logger)
}

// seed resets every entry to its template default.
func (s *Synchronizer) seed() {
	s.entries = make([]Entry, len(s.templates))
	for i, t := range s.templates {
		s.entries[i] = Entry{Template: t, Unlocked: t.Unlocked}
	}
}

// Sync reconciles the unlocked flags.
//
//  1. every template starts from its default flag
//  2. a non-empty persisted list unlocks each template it names
//  3. any template whose id is an owned item is unlocked
//  4. if nothing is unlocked and nothing is owned, everything is unlocked
//
// The returned slice is a copy.
func (s *Synchronizer) Sync(persisted, owned []string) []Entry {
	if s == nil {
		return nil
	}
	s.seed()

	for _, id := range persisted {
		if i, ok := s.index[id]; ok {
			s.entries[i].Unlocked = true
		} else if id != "" {
			s.logger.Debug("saved unlock names unknown marble", "id", id)
		}
	}

	for _, id := range owned {
		if i, ok := s.index[id]; ok {
			s.entries[i].Unlocked = true
		}
	}

	if !s.anyUnlocked() && len(owned) == 0 {
		s.logger.Info("no marbles unlocked, unlocking the whole catalog", "count", len(s.entries))
		for i := range s.entries {
			s.entries[i].Unlocked = true
		}
	}

	return s.Entries()
}

func (s *Synchronizer) anyUnlocked() bool {
	for _, e := range s.entries {
		if e.Unlocked {
			return true
		}
	}
	return false
}

// Entries returns every entry in catalog order.
func (s *Synchronizer) Entries() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Unlocked returns the unlocked entries in catalog order.
func (s *Synchronizer) Unlocked() []Entry {
	if s == nil {
		return nil
	}
	var out []Entry
	for _, e := range s.entries {
		if e.Unlocked {
			out = append(out, e)
		}
	}
	return out
}

// UnlockedIDs returns the ids to persist as previously unlocked.
func (s *Synchronizer) UnlockedIDs() []string {
	var ids []string
	for _, e := range s.Unlocked() {
		ids = append(ids, e.ID())
	}
	return ids
}

// Lookup finds a template by id.
func (s *Synchronizer) Lookup(id string) (*Template, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.templates[i], true
}

// IsUnlocked reports the current flag for id.
func (s *Synchronizer) IsUnlocked(id string) bool {
	if s == nil {
		return false
	}
	i, ok := s.index[id]
	return ok && s.entries[i].Unlocked
}
