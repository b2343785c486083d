package pbd

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the engine tunables. A zero value is not usable; start from
// DefaultConfig or LoadConfig. All structures derived from a Config treat it
// as immutable after construction.
type Config struct {
	// BVHMaxDepth bounds the recursion depth of particle hierarchies.
	// Depth 0 degenerates to a single leaf holding every particle.
	BVHMaxDepth int `toml:"bvh_max_depth"`

	// BVHLeafSize is the particle count below which a subtree becomes a leaf.
	BVHLeafSize int `toml:"bvh_leaf_size"`

	// ContactLevels enables contact dependency levels. When disabled, every
	// constraint is solved at level 0 and edge levels stay unassigned.
	ContactLevels bool `toml:"contact_levels"`

	// CollisionDistance is the contact offset between surfaces. Also the
	// pairwise threshold of the self-collision kernel.
	CollisionDistance float32 `toml:"collision_distance"`

	// SelfCollisionStiffness scales the self-collision position response.
	SelfCollisionStiffness float32 `toml:"self_collision_stiffness"`

	// Iterations is the number of solver passes over the level/color
	// buckets per step. Must be non-zero.
	Iterations uint `toml:"iterations"`

	// CollisionPersistence is the number of steps cached contact pairs
	// survive after the bodies separate.
	CollisionPersistence uint `toml:"collision_persistence"`

	// Workers bounds the goroutines used for island coloring and for
	// resolving one color bucket. Zero means GOMAXPROCS.
	Workers int `toml:"workers"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() *Config {
	return &Config{
		BVHMaxDepth:            4,
		BVHLeafSize:            8,
		ContactLevels:          true,
		CollisionDistance:      0.1,
		SelfCollisionStiffness: 1.0,
		Iterations:             10,
		CollisionPersistence:   3,
		Workers:                0,
	}
}

// LoadConfig reads a TOML config file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pbd: reading config: %w", err)
	}
	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("pbd: parsing config %s: %w", path, err)
	}
	config.check()
	return config, nil
}

// check asserts the constructor contract. Negative depths and distances are
// programmer errors, not runtime conditions.
func (c *Config) check() {
	assert(c.BVHMaxDepth >= 0, "BVHMaxDepth must not be negative")
	assert(c.BVHLeafSize > 0, "BVHLeafSize must be positive")
	assert(c.CollisionDistance >= 0, "CollisionDistance must not be negative")
	assert(c.SelfCollisionStiffness >= 0 && c.SelfCollisionStiffness <= 1,
		"SelfCollisionStiffness must be in [0, 1]")
	assert(c.Iterations > 0, "Iterations must be non-zero")
	assert(c.Workers >= 0, "Workers must not be negative")
}
