// Package recorder implements the adaptive-threshold multi-track sampler.
//
// Callers register value providers (closures returning the current value
// of some external entity) and then drive the recorder with Tick calls at
// whatever cadence they choose. A sample is appended to a track only when
// the provider's value differs from the last *recorded* value by more than
// the configured threshold; intermediate sub-threshold changes are
// discarded, not integrated. The first observation of every track records
// unconditionally.
//
// The recorder is single-threaded and tick-driven: no internal goroutines,
// no blocking, every operation completes within the call.
package recorder

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/retrace-io/retrace/internal/geom"
	"github.com/retrace-io/retrace/internal/trajectory"
)

// PositionProvider reports the current position of an entity. ok=false
// means the entity is currently unavailable (e.g. removed from the scene);
// the recorder skips it for that tick only.
type PositionProvider func() (pos geom.Vec3, ok bool)

// CameraProvider reports the current position and forward direction of a
// camera-like entity.
type CameraProvider func() (pos, forward geom.Vec3, ok bool)

// ScalarProvider reports the current value of one chart data point.
type ScalarProvider func() (value float64, ok bool)

type registration struct {
	name       string
	kind       trajectory.Kind
	thresholds Thresholds

	position PositionProvider
	camera   CameraProvider
	scalar   ScalarProvider

	chart     string
	serie     int
	dataIndex int
}

// Recorder samples registered providers into a trajectory.Store.
//
// Lifecycle: register providers, Start, Tick repeatedly with
// non-decreasing timestamps, Stop. Start clears all previously recorded
// data; Stop freezes the store and returns it. Registration is only
// allowed while not recording.
type Recorder struct {
	cfg  Config
	regs []registration

	store     *trajectory.Store
	last      map[string]trajectory.Sample // last recorded value per track
	recording bool
}

// New creates a recorder with the given threshold configuration.
func New(cfg Config) *Recorder {
	return &Recorder{cfg: cfg}
}

// TrackPosition registers a position provider under the given track name.
func (r *Recorder) TrackPosition(name string, fn PositionProvider) error {
	name = trajectory.NormalizeName(name)
	return r.register(registration{
		name:       name,
		kind:       trajectory.KindPosition,
		thresholds: r.cfg.forTrack(name),
		position:   fn,
	})
}

// TrackCamera registers a position+direction provider under the given
// track name.
func (r *Recorder) TrackCamera(name string, fn CameraProvider) error {
	name = trajectory.NormalizeName(name)
	return r.register(registration{
		name:       name,
		kind:       trajectory.KindCamera,
		thresholds: r.cfg.forTrack(name),
		camera:     fn,
	})
}

// TrackScalar registers a scalar provider for one chart data point. The
// track name is derived from (chart, serie, dataIndex).
func (r *Recorder) TrackScalar(chart string, serie, dataIndex int, fn ScalarProvider) error {
	name := trajectory.ScalarTrackName(chart, serie, dataIndex)
	return r.register(registration{
		name:       name,
		kind:       trajectory.KindScalar,
		thresholds: r.cfg.forTrack(name),
		scalar:     fn,
		chart:      trajectory.NormalizeName(chart),
		serie:      serie,
		dataIndex:  dataIndex,
	})
}

func (r *Recorder) register(reg registration) error {
	if r.recording {
		return fmt.Errorf("track %q: cannot register while recording", reg.name)
	}
	for _, existing := range r.regs {
		if existing.name == reg.name {
			return fmt.Errorf("track %q: already registered", reg.name)
		}
	}
	r.regs = append(r.regs, reg)
	return nil
}

// Start begins a recording session. All tracks and last-recorded caches
// are cleared and empty tracks re-created for every registration, so a
// recorder can run multiple sessions back to back.
func (r *Recorder) Start() {
	r.store = trajectory.NewStore()
	r.last = make(map[string]trajectory.Sample, len(r.regs))
	for _, reg := range r.regs {
		var track *trajectory.Track
		if reg.kind == trajectory.KindScalar {
			track = trajectory.NewScalarTrack(reg.chart, reg.serie, reg.dataIndex)
		} else {
			track = trajectory.NewTrack(reg.name, reg.kind)
		}
		// Names are unique by registration, so Add cannot fail here.
		_ = r.store.Add(track)
	}
	r.recording = true
}

// Stop freezes the store and returns it. Further ticks are ignored until
// the next Start. Returns nil if no session was started.
func (r *Recorder) Stop() *trajectory.Store {
	r.recording = false
	return r.store
}

// Recording reports whether a session is active.
func (r *Recorder) Recording() bool {
	return r.recording
}

// Tick evaluates every provider at the given timestamp and appends a
// sample wherever the change since the last recorded value exceeds the
// track's threshold.
//
// Unavailable providers are skipped for this tick only. A timestamp not
// after a track's last appended sample is skipped for that track with a
// debug log; it never fails the tick.
func (r *Recorder) Tick(nowMs int64) {
	if !r.recording {
		return
	}
	for _, reg := range r.regs {
		track, ok := r.store.Track(reg.name)
		if !ok {
			continue
		}
		sample, record := r.evaluate(reg, nowMs)
		if !record {
			continue
		}
		if err := track.Append(sample); err != nil {
			slog.Debug("recorder: sample skipped", "track", reg.name, "err", err)
			continue
		}
		r.last[reg.name] = sample
	}
}

// evaluate queries a provider and applies the track's threshold policy
// against the last recorded value.
func (r *Recorder) evaluate(reg registration, nowMs int64) (trajectory.Sample, bool) {
	prev, seen := r.last[reg.name]

	switch reg.kind {
	case trajectory.KindPosition:
		pos, ok := reg.position()
		if !ok {
			return trajectory.Sample{}, false
		}
		if seen && !pos.ExceedsPerAxis(prev.Position, reg.thresholds.Position) {
			return trajectory.Sample{}, false
		}
		return trajectory.Sample{TimeMs: nowMs, Position: pos}, true

	case trajectory.KindCamera:
		pos, fwd, ok := reg.camera()
		if !ok {
			return trajectory.Sample{}, false
		}
		if seen &&
			!pos.ExceedsPerAxis(prev.Position, reg.thresholds.Position) &&
			!fwd.ExceedsPerAxis(prev.Forward, reg.thresholds.Direction) {
			return trajectory.Sample{}, false
		}
		return trajectory.Sample{TimeMs: nowMs, Position: pos, Forward: fwd}, true

	case trajectory.KindScalar:
		val, ok := reg.scalar()
		if !ok {
			return trajectory.Sample{}, false
		}
		if seen && math.Abs(val-prev.Value) <= reg.thresholds.Value {
			return trajectory.Sample{}, false
		}
		return trajectory.Sample{TimeMs: nowMs, Value: val}, true
	}
	return trajectory.Sample{}, false
}
