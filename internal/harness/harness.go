package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrace-io/retrace/internal/geom"
	"github.com/retrace-io/retrace/internal/recorder"
	"github.com/retrace-io/retrace/internal/trajectory"
)

// world holds the scripted state the providers read during a run.
type world struct {
	positions map[string]geom.Vec3
	absent    map[string]bool
}

// Run executes a scenario: registers one position provider per scripted
// track, then ticks the recorder through every step. Returns the frozen
// store.
func Run(s *Scenario) (*trajectory.Store, error) {
	cfg := recorder.Config{
		Defaults: recorder.Thresholds{Position: s.Thresholds.Position},
	}
	rec := recorder.New(cfg)

	w := &world{
		positions: make(map[string]geom.Vec3),
		absent:    make(map[string]bool),
	}
	for _, name := range s.trackNames() {
		name := name
		err := rec.TrackPosition(name, func() (geom.Vec3, bool) {
			if w.absent[name] {
				return geom.Vec3{}, false
			}
			return w.positions[name], true
		})
		if err != nil {
			return nil, fmt.Errorf("register %q: %w", name, err)
		}
	}

	rec.Start()
	for _, step := range s.Steps {
		for name, p := range step.Positions {
			w.positions[name] = geom.Vec3{X: p.X, Y: p.Y, Z: p.Z}
		}
		for name := range w.absent {
			delete(w.absent, name)
		}
		for _, name := range step.Absent {
			w.absent[name] = true
		}
		rec.Tick(step.AtMs)
	}
	return rec.Stop(), nil
}

// Assert checks the store against the scenario's expectations.
func Assert(t *testing.T, s *Scenario, store *trajectory.Store) {
	t.Helper()

	for _, want := range s.Expect {
		track, ok := store.Track(want.Track)
		require.True(t, ok, "scenario %s: track %q missing", s.Name, want.Track)
		require.Equal(t, len(want.Samples), track.Len(),
			"scenario %s: track %q sample count", s.Name, want.Track)

		for i, ws := range want.Samples {
			got := track.At(i)
			assert.Equal(t, ws.AtMs, got.TimeMs,
				"scenario %s: track %q sample %d timestamp", s.Name, want.Track, i)
			assert.Equal(t, geom.Vec3{X: ws.Position.X, Y: ws.Position.Y, Z: ws.Position.Z},
				got.Position,
				"scenario %s: track %q sample %d position", s.Name, want.Track, i)
		}
	}
}

// RunWithGolden executes a scenario and compares the encoded document
// against testdata/<scenario name>.golden. Regenerate golden files with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, s *Scenario) {
	t.Helper()

	store, err := Run(s)
	require.NoError(t, err)
	Assert(t, s, store)

	data, err := trajectory.Encode(store)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, s.Name, data)
}
