package cache

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Reed2006/PJ-Y86-64-Simulator/emu"
)

// Config holds cache geometry parameters.
type Config struct {
	// Size is the total cache capacity in bytes.
	Size int `json:"size"`

	// Associativity is the number of ways per set.
	Associativity int `json:"associativity"`

	// BlockSize is the cache line size in bytes.
	BlockSize int `json:"block_size"`
}

// DefaultConfig returns a teaching-scale cache for the 32 KiB Y86-64
// address space: 1 KiB, 2-way, 16-byte lines. Small enough that short
// programs still produce visible evictions.
func DefaultConfig() Config {
	return Config{
		Size:          1024,
		Associativity: 2,
		BlockSize:     16,
	}
}

// NumSets returns the number of sets the geometry yields.
func (c Config) NumSets() int {
	return c.Size / (c.Associativity * c.BlockSize)
}

// Validate checks the geometry for consistency.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("size must be > 0")
	}
	if c.Associativity <= 0 {
		return fmt.Errorf("associativity must be > 0")
	}
	if c.BlockSize < emu.WordSize {
		return fmt.Errorf("block_size must be >= %d", emu.WordSize)
	}
	if c.BlockSize&(c.BlockSize-1) != 0 {
		return fmt.Errorf("block_size must be a power of two")
	}
	if c.Size%(c.Associativity*c.BlockSize) != 0 {
		return fmt.Errorf("size must be a multiple of associativity*block_size")
	}
	return nil
}

// LoadConfig loads a Config from a JSON file. Fields absent from the
// file keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read cache config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse cache config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid cache config: %w", err)
	}

	return config, nil
}

// SaveConfig writes the Config to a JSON file.
func (c Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize cache config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache config file: %w", err)
	}

	return nil
}
