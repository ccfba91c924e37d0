// Package storage loads a world from a directory of JSON documents:
//
//	characters/*.json           one character each (npcs/ is also accepted)
//	locations/*_static.json     static location records
//	locations/*_state.json      mutable location records
//	items/blueprints.json       array of item blueprints
//	items/instances/*.json      one item instance, or an array of them
//
// Every document is validated against an embedded JSON schema before it is
// decoded.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/gobwas/glob"

	"github.com/jwebster45206/hexsim/pkg/actor"
	"github.com/jwebster45206/hexsim/pkg/dice"
	"github.com/jwebster45206/hexsim/pkg/item"
	"github.com/jwebster45206/hexsim/pkg/location"
	"github.com/jwebster45206/hexsim/pkg/rules"
	"github.com/jwebster45206/hexsim/pkg/world"
)

type pattern struct {
	kind string
	glob glob.Glob
}

var patterns = []pattern{
	{DocCharacter, glob.MustCompile("{characters,npcs}/*.json", '/')},
	{DocLocationStatic, glob.MustCompile("locations/*_static.json", '/')},
	{DocLocationState, glob.MustCompile("locations/*_state.json", '/')},
	{DocBlueprints, glob.MustCompile("items/blueprints.json", '/')},
	{DocItemInstance, glob.MustCompile("items/instances/*.json", '/')},
}

// Document is one file found under the data directory.
type Document struct {
	Path string // relative to the data directory, slash separated
	Kind string
}

// Discover lists the world documents under dataDir in a stable order.
// Files matching no pattern are ignored.
func Discover(dataDir string) ([]Document, error) {
	var docs []Document
	err := filepath.WalkDir(dataDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dataDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, pat := range patterns {
			if pat.glob.Match(rel) {
				docs = append(docs, Document{Path: rel, Kind: pat.kind})
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dataDir, err)
	}
	slices.SortFunc(docs, func(a, b Document) int {
		if c := slices.Index(docKinds, a.Kind) - slices.Index(docKinds, b.Kind); c != 0 {
			return c
		}
		if a.Path < b.Path {
			return -1
		}
		if a.Path > b.Path {
			return 1
		}
		return 0
	})
	return docs, nil
}

// Loader reads world documents from a data directory.
type Loader struct {
	dataDir string
	rules   rules.Rules
	schemas *Schemas
	logger  *slog.Logger
}

// NewLoader creates a loader for dataDir.
func NewLoader(dataDir string, r rules.Rules, logger *slog.Logger) (*Loader, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	schemas, err := CompileSchemas()
	if err != nil {
		return nil, err
	}
	return &Loader{dataDir: dataDir, rules: r, schemas: schemas, logger: logger}, nil
}

// LoadWorld is a shorthand for NewLoader followed by Load.
func LoadWorld(ctx context.Context, dataDir string, r rules.Rules, logger *slog.Logger) (*world.World, error) {
	l, err := NewLoader(dataDir, r, logger)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx)
}

// Load reads, validates and links every document. The returned world has
// its location index built and passes world.Validate.
func (l *Loader) Load(ctx context.Context) (*world.World, error) {
	docs, err := Discover(l.dataDir)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no world documents found in %s", l.dataDir)
	}

	w := world.New(l.rules).WithLogger(l.logger)
	statics := make(map[string]*location.Static)
	states := make(map[string]*location.State)

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(l.dataDir, filepath.FromSlash(doc.Path)))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", doc.Path, err)
		}
		if err := l.schemas.Validate(doc.Kind, data); err != nil {
			return nil, fmt.Errorf("invalid %s document %s: %w", doc.Kind, doc.Path, err)
		}
		if err := l.decode(w, doc, data, statics, states); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", doc.Path, err)
		}
		l.logger.Debug("Loaded world document", "path", doc.Path, "kind", doc.Kind)
	}

	for id := range states {
		if _, ok := statics[id]; !ok {
			return nil, fmt.Errorf("location state %s has no static record", id)
		}
	}
	for id, static := range statics {
		w.AddLocation(static, states[id])
	}

	if err := w.Link(); err != nil {
		return nil, fmt.Errorf("failed to link world: %w", err)
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid world: %w", err)
	}

	l.logger.Info("World loaded",
		"data_dir", l.dataDir,
		"characters", len(w.Characters()),
		"locations", len(w.Locations()),
		"items", len(w.Items()))
	return w, nil
}

func (l *Loader) decode(w *world.World, doc Document, data []byte, statics map[string]*location.Static, states map[string]*location.State) error {
	switch doc.Kind {
	case DocCharacter:
		var c actor.Character
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		if _, dup := w.Character(c.ID); dup {
			return fmt.Errorf("duplicate character %s", c.ID)
		}
		w.AddCharacter(&c)

	case DocLocationStatic:
		var s location.Static
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if _, dup := statics[s.ID]; dup {
			return fmt.Errorf("duplicate location %s", s.ID)
		}
		statics[s.ID] = &s

	case DocLocationState:
		var s location.State
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if _, dup := states[s.ID]; dup {
			return fmt.Errorf("duplicate location state %s", s.ID)
		}
		states[s.ID] = &s

	case DocBlueprints:
		var bps []item.Blueprint
		if err := json.Unmarshal(data, &bps); err != nil {
			return err
		}
		for _, b := range bps {
			if b.DamageDice != "" {
				if _, err := dice.Parse(b.DamageDice); err != nil {
					return fmt.Errorf("blueprint %s: %w", b.ID, err)
				}
			}
			w.AddBlueprint(b)
		}

	case DocItemInstance:
		var insts []*item.Instance
		if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(data, &insts); err != nil {
				return err
			}
		} else {
			var inst item.Instance
			if err := json.Unmarshal(data, &inst); err != nil {
				return err
			}
			insts = append(insts, &inst)
		}
		for _, inst := range insts {
			if _, dup := w.Item(inst.ID); dup {
				return fmt.Errorf("duplicate item %s", inst.ID)
			}
			w.AddItem(inst)
		}

	default:
		return fmt.Errorf("unknown document kind %q", doc.Kind)
	}
	return nil
}
