package ledger

import (
	_ "embed"
	"fmt"
)

//go:embed default_seed.yaml
var defaultSeedYAML []byte

// DefaultSeed returns the embedded demo ledger: Norwest, Résidence Atlas and
// Jardins du Roi.
func DefaultSeed() Seed {
	s, err := ParseSeed(defaultSeedYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded seed: %v", err))
	}
	return s
}

// SeedFromFile loads path, or the embedded demo ledger when path is empty.
func SeedFromFile(path string) (Seed, error) {
	if path == "" {
		return DefaultSeed(), nil
	}
	return LoadSeed(path)
}
