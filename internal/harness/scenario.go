// Package harness runs recording conformance scenarios.
//
// A scenario scripts the world: per-tick positions for a set of named
// entities, plus which entities are absent on a given tick. Running a
// scenario drives a recorder through the scripted ticks and yields the
// resulting trajectory store, which tests assert against expectations or
// compare to a golden document. Scenarios live in YAML files next to the
// tests, so threshold edge cases read as data instead of test code.
package harness

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines one scripted recording session.
type Scenario struct {
	// Name uniquely identifies the scenario. Golden documents are stored
	// under testdata/<Name>.golden.
	Name string `yaml:"name"`

	// Description explains what the scenario exercises.
	Description string `yaml:"description,omitempty"`

	// Thresholds configure the recorder for every scripted track.
	Thresholds ScenarioThresholds `yaml:"thresholds"`

	// Steps are recorder ticks in execution order. Timestamps must be
	// strictly increasing; the runner rejects scripts that violate this
	// rather than silently recording nothing.
	Steps []Step `yaml:"steps"`

	// Expect lists the tracks and samples the recording must contain.
	// Optional: golden-file scenarios may omit it.
	Expect []ExpectedTrack `yaml:"expect,omitempty"`
}

// ScenarioThresholds mirrors the recorder threshold set in scenario YAML.
type ScenarioThresholds struct {
	Position float64 `yaml:"position"`
}

// Step is one recorder tick: the wall positions of every entity at that
// instant.
type Step struct {
	// AtMs is the tick timestamp.
	AtMs int64 `yaml:"at_ms"`

	// Positions maps track name to the entity's position at this tick.
	// A track missing from the map keeps its previous scripted position.
	Positions map[string]Point `yaml:"positions,omitempty"`

	// Absent lists entities whose provider reports unavailable on this
	// tick (removed from the scene); they are skipped, never dropped.
	Absent []string `yaml:"absent,omitempty"`
}

// Point is a scripted position.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// ExpectedTrack asserts the exact recorded samples for one track.
type ExpectedTrack struct {
	Track   string           `yaml:"track"`
	Samples []ExpectedSample `yaml:"samples"`
}

// ExpectedSample is one expected recorded sample.
type ExpectedSample struct {
	AtMs     int64 `yaml:"at_ms"`
	Position Point `yaml:"position"`
}

// LoadScenario reads and validates a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("missing name")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("no steps")
	}
	if s.Thresholds.Position < 0 {
		return fmt.Errorf("negative position threshold")
	}
	last := int64(-1)
	for i, step := range s.Steps {
		if step.AtMs <= last {
			return fmt.Errorf("steps[%d]: at_ms %d not after %d", i, step.AtMs, last)
		}
		last = step.AtMs
	}
	return nil
}

// trackNames returns every track name mentioned by any step, sorted.
func (s *Scenario) trackNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, step := range s.Steps {
		for name := range step.Positions {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	// Map iteration order is random; sort for deterministic registration
	// and serialization order.
	sort.Strings(names)
	return names
}
