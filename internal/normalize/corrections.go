package normalize

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// Correction rewrites a historically miskeyed spelling. Pattern is matched
// literally and case-insensitively anywhere in the label.
type Correction struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
}

// DefaultCorrections returns the legacy table for labels that were stored
// through a broken encoding, where the accented letter became '?'.
func DefaultCorrections() []Correction {
	return []Correction{
		{Pattern: "Pl?stico", Replacement: "Plastico"},
		{Pattern: "M?dio", Replacement: "Medio"},
	}
}

// LoadCorrections reads a JSON array of corrections from path.
func LoadCorrections(path string) ([]Correction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corrections file: %w", err)
	}

	var corrections []Correction
	if err := json.Unmarshal(data, &corrections); err != nil {
		return nil, fmt.Errorf("parse corrections file %s: %w", path, err)
	}

	for i, c := range corrections {
		if c.Pattern == "" {
			return nil, fmt.Errorf("correction %d in %s: empty pattern", i, path)
		}
	}
	return corrections, nil
}

// CorrectionsFromFile returns the defaults extended with the entries of path.
// An empty path yields only the defaults.
func CorrectionsFromFile(path string) ([]Correction, error) {
	corrections := DefaultCorrections()
	if path == "" {
		return corrections, nil
	}
	extra, err := LoadCorrections(path)
	if err != nil {
		return nil, err
	}
	return append(corrections, extra...), nil
}
