// Package replay implements the scrubbable playback engine.
//
// An Engine owns a timeline clock and a loaded, read-only trajectory
// store. Callers register sinks (closures accepting an interpolated value)
// per track, drive the engine with one Tick per frame, and control the
// timeline through Start/Stop/Pause/Resume/Seek/Nudge. The engine never
// holds a handle into the caller's object graph; the sink call is the
// single coupling point with any consuming layer.
//
// All failure modes are recoverable and handled locally: a missing or
// malformed document loads as an empty store, an unknown track name leaves
// its sink uncalled, and out-of-range seeks clamp. Nothing here returns an
// error to the caller; diagnostics go to the structured log.
package replay

import (
	"log/slog"

	"github.com/retrace-io/retrace/internal/clock"
	"github.com/retrace-io/retrace/internal/geom"
	"github.com/retrace-io/retrace/internal/trajectory"
)

// Value is one interpolated reading from a track. Which fields are
// meaningful depends on Kind, mirroring trajectory.Sample.
type Value struct {
	Kind     trajectory.Kind
	Position geom.Vec3
	Forward  geom.Vec3
	Scalar   float64
}

// target pairs a track name with a caller-supplied sink and its playhead:
// the index of the latest sample not exceeding current elapsed time.
type target struct {
	track    string
	playhead int

	position func(geom.Vec3)
	camera   func(pos, forward geom.Vec3)
	scalar   func(float64)
}

// Engine replays a loaded trajectory store on a pausable, seekable
// timeline. Single-threaded and tick-driven, like the recorder.
type Engine struct {
	store       *trajectory.Store
	clk         *clock.SampleClock
	targets     []*target
	interpolate bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithInterpolation toggles sample interpolation. When disabled, sampling
// holds the left-bracketing sample instead of blending toward the next.
func WithInterpolation(on bool) Option {
	return func(e *Engine) {
		e.interpolate = on
	}
}

// WithClock substitutes the timeline clock. Tests inject a clock backed by
// a fake time source.
func WithClock(c *clock.SampleClock) Option {
	return func(e *Engine) {
		e.clk = c
	}
}

// New creates an engine with no store loaded. Interpolation defaults on.
func New(opts ...Option) *Engine {
	e := &Engine{
		clk:         clock.New(),
		interpolate: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load installs a store for playback: duration recomputed, clock stopped,
// every playhead reset. A nil store unloads the engine.
func (e *Engine) Load(store *trajectory.Store) {
	e.store = store
	e.clk.Stop()
	e.clk.SetDuration(0)
	if store != nil {
		e.clk.SetDuration(store.DurationMs())
	}
	e.resetPlayheads()
}

// LoadBytes decodes a persisted document and loads it. A malformed or
// empty input is not an error: the engine degrades to an empty store with
// zero duration and logs the reason, so subsequent playback calls are
// harmless no-ops.
func (e *Engine) LoadBytes(data []byte) *trajectory.Store {
	if len(data) == 0 {
		slog.Warn("replay: no recording data, loading empty store")
		e.Load(trajectory.NewStore())
		return e.store
	}
	store, err := trajectory.Decode(data)
	if err != nil {
		slog.Warn("replay: recording rejected, loading empty store", "err", err)
		store = trajectory.NewStore()
	}
	e.Load(store)
	return store
}

// WatchPosition registers a sink for a position track. Registering a name
// absent from the loaded store is allowed; the sink is simply never
// called until a store containing that track is loaded.
func (e *Engine) WatchPosition(track string, sink func(geom.Vec3)) {
	e.targets = append(e.targets, &target{
		track:    trajectory.NormalizeName(track),
		position: sink,
	})
}

// WatchCamera registers a sink for a camera track.
func (e *Engine) WatchCamera(track string, sink func(pos, forward geom.Vec3)) {
	e.targets = append(e.targets, &target{
		track:  trajectory.NormalizeName(track),
		camera: sink,
	})
}

// WatchScalar registers a sink for one chart data point.
func (e *Engine) WatchScalar(chart string, serie, dataIndex int, sink func(float64)) {
	e.targets = append(e.targets, &target{
		track:  trajectory.ScalarTrackName(chart, serie, dataIndex),
		scalar: sink,
	})
}

// Start begins playback from elapsed 0. No-op (logged) when no store is
// loaded; an empty store is loaded but reports zero duration, so playback
// finishes immediately.
func (e *Engine) Start() {
	if e.store == nil {
		slog.Info("replay: start ignored, no store loaded")
		return
	}
	e.clk.Start()
	e.resetPlayheads()
}

// Stop halts playback and resets the timeline; the next Start begins at 0.
func (e *Engine) Stop() {
	e.clk.Stop()
	e.resetPlayheads()
}

// Pause freezes the timeline. Delegates to the clock.
func (e *Engine) Pause() {
	e.clk.Pause()
}

// Resume continues a paused timeline.
func (e *Engine) Resume() {
	e.clk.Resume()
}

// TogglePause flips between playing and paused. No-op while stopped.
func (e *Engine) TogglePause() {
	if e.clk.Paused() {
		e.clk.Resume()
		return
	}
	e.clk.Pause()
}

// Seek moves the timeline to targetMs (clamped to [0, duration]) and
// re-derives every playhead from scratch. Seeks may move backward, so
// playheads are recomputed rather than advanced.
func (e *Engine) Seek(targetMs int64) {
	e.clk.Seek(targetMs)
	e.rederivePlayheads()
}

// Nudge shifts the timeline by deltaSeconds relative to the current
// clamped elapsed time. Safe to call every tick while a control is held:
// each call recomputes from the clamped position, so repeated nudges at
// the timeline ends do not accumulate drift.
func (e *Engine) Nudge(deltaSeconds float64) {
	e.Seek(e.clk.ElapsedMs() + int64(deltaSeconds*1000))
}

// Tick advances every target's playhead to the current elapsed time and
// fans the interpolated values out to the sinks. Call once per frame.
// Targets whose track is absent from the store, or whose track has no
// samples, are left untouched.
func (e *Engine) Tick() {
	if e.store == nil || !e.clk.Running() {
		return
	}
	elapsed := e.clk.ElapsedMs()
	for _, tg := range e.targets {
		track, ok := e.store.Track(tg.track)
		if !ok || track.Len() == 0 {
			continue
		}
		// Monotonic advance; Seek handles backward moves.
		for tg.playhead+1 < track.Len() && track.At(tg.playhead+1).TimeMs <= elapsed {
			tg.playhead++
		}
		sample := e.valueAt(track, tg.playhead, elapsed)
		tg.emit(sample)
	}
}

func (tg *target) emit(s trajectory.Sample) {
	switch {
	case tg.position != nil:
		tg.position(s.Position)
	case tg.camera != nil:
		tg.camera(s.Position, s.Forward)
	case tg.scalar != nil:
		tg.scalar(s.Value)
	}
}

// SampleAt returns the interpolated value of a track at an arbitrary
// timeline position, independent of any registered target. ok is false
// when the track is unknown or has no samples.
func (e *Engine) SampleAt(trackName string, atMs int64) (Value, bool) {
	if e.store == nil {
		return Value{}, false
	}
	track, ok := e.store.Track(trackName)
	if !ok || track.Len() == 0 {
		return Value{}, false
	}
	idx := track.Bracket(atMs)
	if idx < 0 {
		idx = 0 // before the first sample: hold it
	}
	s := e.valueAt(track, idx, atMs)
	return Value{Kind: track.Kind, Position: s.Position, Forward: s.Forward, Scalar: s.Value}, true
}

// valueAt computes the (possibly interpolated) sample for playhead index
// idx at time atMs. Past the end of the track the last sample is held,
// which also covers tracks that never exceeded their recording threshold.
func (e *Engine) valueAt(track *trajectory.Track, idx int, atMs int64) trajectory.Sample {
	cur := track.At(idx)
	if !e.interpolate || idx+1 >= track.Len() {
		return cur
	}
	next := track.At(idx + 1)
	span := next.TimeMs - cur.TimeMs
	if span <= 0 {
		return cur
	}
	t := float64(atMs-cur.TimeMs) / float64(span)

	blended := trajectory.Sample{TimeMs: atMs}
	switch track.Kind {
	case trajectory.KindPosition:
		blended.Position = geom.Lerp(cur.Position, next.Position, t)
	case trajectory.KindCamera:
		blended.Position = geom.Lerp(cur.Position, next.Position, t)
		blended.Forward = geom.Slerp(cur.Forward, next.Forward, t)
	case trajectory.KindScalar:
		blended.Value = geom.LerpScalar(cur.Value, next.Value, t)
	}
	return blended
}

// Playing reports whether the timeline is running and not paused. Note a
// finished timeline still reports playing until Stop; poll Progress or
// Finished to detect completion.
func (e *Engine) Playing() bool {
	return e.clk.Running() && !e.clk.Paused()
}

// Paused reports whether the timeline is paused.
func (e *Engine) Paused() bool {
	return e.clk.Paused()
}

// Finished reports whether a running timeline has reached the end.
func (e *Engine) Finished() bool {
	return e.clk.Finished()
}

// ElapsedMs returns the current timeline position.
func (e *Engine) ElapsedMs() int64 {
	return e.clk.ElapsedMs()
}

// DurationMs returns the loaded recording's duration.
func (e *Engine) DurationMs() int64 {
	return e.clk.DurationMs()
}

// Progress returns playback progress in [0, 1]; 0 when nothing is loaded.
func (e *Engine) Progress() float64 {
	d := e.clk.DurationMs()
	if d <= 0 {
		return 0
	}
	return float64(e.clk.ElapsedMs()) / float64(d)
}

func (e *Engine) resetPlayheads() {
	for _, tg := range e.targets {
		tg.playhead = 0
	}
}

// rederivePlayheads recomputes every playhead from scratch for the current
// elapsed time using the left-bracketing search. Ties (a sample exactly at
// the seek target) resolve to that sample's index.
func (e *Engine) rederivePlayheads() {
	if e.store == nil {
		return
	}
	elapsed := e.clk.ElapsedMs()
	for _, tg := range e.targets {
		track, ok := e.store.Track(tg.track)
		if !ok || track.Len() == 0 {
			tg.playhead = 0
			continue
		}
		idx := track.Bracket(elapsed)
		if idx < 0 {
			idx = 0
		}
		tg.playhead = idx
	}
}
