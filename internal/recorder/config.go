package recorder

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/retrace-io/retrace/internal/trajectory"
)

// Thresholds holds the minimum per-axis/value deltas required to record a
// new sample. Deltas are compared component-wise with a strict > test,
// never as Euclidean distance.
type Thresholds struct {
	// Position applies per axis to position vectors.
	Position float64 `yaml:"position"`

	// Direction applies per axis to camera forward vectors.
	Direction float64 `yaml:"direction"`

	// Value applies to scalar series deltas.
	Value float64 `yaml:"value"`
}

// Config configures a Recorder: default thresholds plus optional per-track
// overrides keyed by track name.
type Config struct {
	Defaults Thresholds            `yaml:"defaults"`
	Tracks   map[string]Thresholds `yaml:"tracks,omitempty"`
}

// DefaultConfig returns the stock threshold set. Positions move in world
// units, directions are near-unit vectors, so direction changes warrant a
// tighter threshold.
func DefaultConfig() Config {
	return Config{
		Defaults: Thresholds{
			Position:  0.04,
			Direction: 0.01,
			Value:     0.001,
		},
	}
}

// ConfigFromYAML parses a threshold configuration document.
//
// Unknown fields are rejected so typos surface instead of silently using
// defaults. All thresholds must be non-negative.
func ConfigFromYAML(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse recorder config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if err := c.Defaults.validate("defaults"); err != nil {
		return err
	}
	for name, t := range c.Tracks {
		if err := t.validate(fmt.Sprintf("tracks[%q]", name)); err != nil {
			return err
		}
	}
	return nil
}

func (t Thresholds) validate(where string) error {
	if t.Position < 0 || t.Direction < 0 || t.Value < 0 {
		return fmt.Errorf("%s: thresholds must be non-negative", where)
	}
	return nil
}

// forTrack resolves the thresholds for a track name, preferring an
// explicit override. Names are NFC normalized before lookup, matching
// track identity.
func (c Config) forTrack(name string) Thresholds {
	if t, ok := c.Tracks[trajectory.NormalizeName(name)]; ok {
		return t
	}
	return c.Defaults
}
