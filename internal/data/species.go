package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SpeciesEntry is one row of the species ID -> display name table, used
// only by the save-edit CLI for human-readable listings; the protocol
// itself never needs species names, only IDs (§4.2).
type SpeciesEntry struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

type speciesListFile struct {
	Species []SpeciesEntry `yaml:"species"`
}

// SpeciesTable resolves a species ID to its display name.
type SpeciesTable struct {
	names map[int]string
}

// LoadSpeciesTable loads the species name table from a YAML file.
func LoadSpeciesTable(path string) (*SpeciesTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read species table: %w", err)
	}
	var f speciesListFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse species table: %w", err)
	}
	t := &SpeciesTable{names: make(map[int]string, len(f.Species))}
	for _, e := range f.Species {
		t.names[e.ID] = e.Name
	}
	return t, nil
}

// Name returns the display name for a species ID, or a numeric
// placeholder if the ID isn't in the table.
func (t *SpeciesTable) Name(id int) string {
	if name, ok := t.names[id]; ok {
		return name
	}
	return fmt.Sprintf("Species#%d", id)
}

// Count returns the number of loaded species entries.
func (t *SpeciesTable) Count() int {
	return len(t.names)
}
