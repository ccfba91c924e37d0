package storage

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"path"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// Document kinds, each validated by schemas/<kind>.schema.json.
const (
	DocCharacter      = "character"
	DocLocationStatic = "location_static"
	DocLocationState  = "location_state"
	DocBlueprints     = "blueprints"
	DocItemInstance   = "item_instance"
)

var docKinds = []string{DocCharacter, DocLocationStatic, DocLocationState, DocBlueprints, DocItemInstance}

// Schemas validates world documents against the embedded JSON schemas.
type Schemas struct {
	byKind map[string]*jsonschema.Schema
}

// CompileSchemas compiles every embedded schema.
func CompileSchemas() (*Schemas, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	for _, kind := range docKinds {
		name := path.Join("schemas", kind+".schema.json")
		data, err := schemaFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
		}
		if err := c.AddResource(kind+".schema.json", bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", name, err)
		}
	}

	s := &Schemas{byKind: make(map[string]*jsonschema.Schema, len(docKinds))}
	for _, kind := range docKinds {
		compiled, err := c.Compile(kind + ".schema.json")
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", kind, err)
		}
		s.byKind[kind] = compiled
	}
	return s, nil
}

// Validate checks raw JSON against the schema for kind.
func (s *Schemas) Validate(kind string, data []byte) error {
	schema, ok := s.byKind[kind]
	if !ok {
		return fmt.Errorf("unknown document kind %q", kind)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return err
	}
	return nil
}
