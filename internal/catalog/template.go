// Package catalog holds the marble templates and reconciles which of them
// are unlocked for the current player.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Template is the immutable stat block for one marble kind.
type Template struct {
	ID           string  `json:"id" jsonschema:"title=Marble id,description=Identifier matched against owned item ids and saved unlocks,pattern=^[A-Za-z0-9]+$,minLength=1,required"`
	Name         string  `json:"name" jsonschema:"title=Display name,required"`
	Description  string  `json:"description,omitempty"`
	Ability      string  `json:"ability" jsonschema:"title=Ability kind,enum=GrowthBurst,enum=JumpBoost,enum=SpeedDash,enum=PhaseShift,enum=RandomTeleport,required"`
	Unlocked     bool    `json:"unlocked" jsonschema:"description=Unlocked before any purchase or save data"`
	Speed        float64 `json:"speed" jsonschema:"minimum=0,required"`
	Acceleration float64 `json:"acceleration" jsonschema:"minimum=0,required"`
	Handling     float64 `json:"handling" jsonschema:"description=Turn rate in degrees per second,minimum=0,required"`
	Health       float64 `json:"health" jsonschema:"minimum=0"`
	Weight       float64 `json:"weight" jsonschema:"description=Mass; must be positive,minimum=0,required"`
	Bounciness   float64 `json:"bounciness" jsonschema:"minimum=0,maximum=1.5"`
	Price        int     `json:"price" jsonschema:"description=Shop price in gold,minimum=0"`
	Material     string  `json:"material,omitempty"`
	Sprite       string  `json:"sprite,omitempty"`
}

// MarbleTemplate implements Bearer.
func (t *Template) MarbleTemplate() *Template {
	return t
}

// Bearer is implemented by anything that carries a marble template
// (templates themselves, spawned marbles, prefab-like descriptors).
type Bearer interface {
	MarbleTemplate() *Template
}

// File is the on-disk catalog document.
type File struct {
	Marbles []Template `json:"marbles" jsonschema:"title=Marbles,description=Every marble kind the race can spawn,minItems=1,required"`
}

//go:embed marbles.json
var defaultCatalog []byte

// Default returns the built-in templates.
func Default() []*Template {
	templates, err := Load(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded marbles.json is invalid: %v", err))
	}
	return templates
}

// LoadFile reads templates from a JSON catalog on disk.
func LoadFile(path string) ([]*Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a JSON catalog.
func Load(r io.Reader) ([]*Template, error) {
	var doc File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(doc.Marbles) == 0 {
		return nil, errors.New("catalog has no marbles")
	}

	seen := make(map[string]struct{}, len(doc.Marbles))
	templates := make([]*Template, 0, len(doc.Marbles))
	for i := range doc.Marbles {
		t := doc.Marbles[i]
		if t.ID == "" {
			return nil, fmt.Errorf("marble %d: missing id", i)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("marble %q: duplicate id", t.ID)
		}
		if t.Weight <= 0 {
			return nil, fmt.Errorf("marble %q: weight must be positive", t.ID)
		}
		seen[t.ID] = struct{}{}
		templates = append(templates, &t)
	}
	return templates, nil
}
