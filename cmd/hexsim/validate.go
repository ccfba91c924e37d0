package main

import (
	"fmt"
	"io"
	"log/slog"
	"path"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/hexsim/internal/storage"
	"github.com/jwebster45206/hexsim/pkg/rules"
	"github.com/jwebster45206/hexsim/pkg/world"
)

// NewValidateCmd creates the validate subcommand.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [data-dir]",
		Short: "Validate a world data directory without running it",
		Long: `Loads every document under the data directory, checking it against
the JSON schemas and the cross references between characters, locations
and items. Ids and file names are also checked for lowercase snake_case.
Exits with code 0 on success, non-zero on failure.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dataDir := cfg.DataDir
			if len(args) == 1 {
				dataDir = args[0]
			}
			r := rules.Default()
			if cfg.RulesFile != "" {
				if r, err = rules.Load(cfg.RulesFile); err != nil {
					return err
				}
			}

			v := &WorldValidator{}
			w, err := v.Validate(cmd, dataDir, r, log)
			if err != nil {
				return err
			}
			reportWorld(cmd.OutOrStdout(), dataDir, w)
			return nil
		},
	}
}

// WorldValidator collects problems found in a data directory.
type WorldValidator struct {
	errors []string
}

// Validate loads dataDir and lints what it finds.
func (v *WorldValidator) Validate(cmd *cobra.Command, dataDir string, r rules.Rules, log *slog.Logger) (*world.World, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "Validating %s...\n", dataDir)
	v.errors = nil

	docs, err := storage.Discover(dataDir)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no world documents found in %s", dataDir)
	}
	for _, doc := range docs {
		v.validateFilename(doc)
	}

	w, err := storage.LoadWorld(cmd.Context(), dataDir, r, nil)
	if err != nil {
		return nil, fmt.Errorf("world failed to load: %w", err)
	}

	for _, id := range w.Characters() {
		v.validateIDFormat("character ID", id)
	}
	for _, id := range w.Locations() {
		v.validateIDFormat("location ID", id)
	}
	for _, id := range w.Blueprints() {
		v.validateIDFormat("blueprint ID", id)
	}
	for _, id := range w.Items() {
		v.validateIDFormat("item ID", id)
	}

	if len(v.errors) > 0 {
		return nil, fmt.Errorf("validation errors in %s:\n%s", dataDir, strings.Join(v.errors, "\n"))
	}
	log.Info("World is valid", "data_dir", dataDir, "documents", len(docs))
	return w, nil
}

func (v *WorldValidator) validateFilename(doc storage.Document) {
	base := strings.TrimSuffix(path.Base(doc.Path), ".json")
	base = strings.TrimSuffix(strings.TrimSuffix(base, "_static"), "_state")
	if !isValidID(base) {
		v.addError(fmt.Sprintf("file name '%s' should be lowercase snake_case", doc.Path))
	}
}

func (v *WorldValidator) validateIDFormat(fieldName, id string) {
	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *WorldValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func reportWorld(out io.Writer, dataDir string, w *world.World) {
	fmt.Fprintf(out, "World in %s is valid!\n", dataDir)
	fmt.Fprintf(out, "  characters: %d\n", len(w.Characters()))
	fmt.Fprintf(out, "  locations:  %d\n", len(w.Locations()))
	fmt.Fprintf(out, "  blueprints: %d\n", len(w.Blueprints()))
	fmt.Fprintf(out, "  items:      %d\n", len(w.Items()))
}
