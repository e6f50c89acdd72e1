package trajectory

import (
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/retrace-io/retrace/internal/geom"
)

// Kind identifies what a track measures. It is fixed at track creation and
// determines both threshold comparison during recording and interpolation
// during replay.
type Kind int

const (
	// KindPosition tracks a 3D position.
	KindPosition Kind = iota
	// KindCamera tracks a 3D position plus a forward direction vector.
	KindCamera
	// KindScalar tracks a single float series (one chart data point).
	KindScalar
)

// String returns the kind name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindPosition:
		return "position"
	case KindCamera:
		return "camera"
	case KindScalar:
		return "scalar"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Sample is a single timestamped observation. Which value fields are
// meaningful depends on the owning track's kind: Position for KindPosition,
// Position+Forward for KindCamera, Value for KindScalar.
type Sample struct {
	TimeMs   int64
	Position geom.Vec3
	Forward  geom.Vec3
	Value    float64
}

// Track is an ordered, append-only sequence of samples for one named
// entity. Sample timestamps are strictly increasing; Append enforces this.
type Track struct {
	// Name uniquely identifies the track within a Store. Names are NFC
	// normalized so that visually identical identifiers compare equal.
	Name string

	// Kind is fixed at creation.
	Kind Kind

	// Chart, Serie and DataIndex locate a scalar track in the persisted
	// charts family. Unused for position and camera tracks.
	Chart     string
	Serie     int
	DataIndex int

	samples []Sample
}

// NormalizeName returns the NFC-normalized form of a track or chart name.
// All name lookups and track creation go through this so identity is
// stable regardless of the caller's Unicode composition.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// ScalarTrackName derives the flat track name for one chart data point.
// Scalar tracks live in a composite namespace (chart, serie, data index);
// the joined form keeps the Store's track map flat.
func ScalarTrackName(chart string, serie, dataIndex int) string {
	return fmt.Sprintf("%s#%d#%d", NormalizeName(chart), serie, dataIndex)
}

// NewTrack creates an empty track of the given kind.
func NewTrack(name string, kind Kind) *Track {
	return &Track{Name: NormalizeName(name), Kind: kind}
}

// NewScalarTrack creates an empty scalar track for one chart data point.
func NewScalarTrack(chart string, serie, dataIndex int) *Track {
	return &Track{
		Name:      ScalarTrackName(chart, serie, dataIndex),
		Kind:      KindScalar,
		Chart:     NormalizeName(chart),
		Serie:     serie,
		DataIndex: dataIndex,
	}
}

// Append adds a sample to the end of the track. The timestamp must be
// strictly greater than the last appended timestamp; violations return an
// error and leave the track unchanged.
func (t *Track) Append(s Sample) error {
	if s.TimeMs < 0 {
		return fmt.Errorf("track %q: negative timestamp %d", t.Name, s.TimeMs)
	}
	if n := len(t.samples); n > 0 && s.TimeMs <= t.samples[n-1].TimeMs {
		return fmt.Errorf("track %q: timestamp %d not after last %d",
			t.Name, s.TimeMs, t.samples[n-1].TimeMs)
	}
	t.samples = append(t.samples, s)
	return nil
}

// Len returns the number of samples.
func (t *Track) Len() int {
	return len(t.samples)
}

// At returns the sample at index i. Panics on out-of-range, like a slice.
func (t *Track) At(i int) Sample {
	return t.samples[i]
}

// Last returns the final sample and true, or a zero sample and false for
// an empty track.
func (t *Track) Last() (Sample, bool) {
	if len(t.samples) == 0 {
		return Sample{}, false
	}
	return t.samples[len(t.samples)-1], true
}

// EndMs returns the timestamp of the final sample, or 0 for an empty track.
func (t *Track) EndMs() int64 {
	if s, ok := t.Last(); ok {
		return s.TimeMs
	}
	return 0
}

// Bracket returns the index of the latest sample whose timestamp does not
// exceed atMs (the left-bracketing sample). Returns -1 when the track is
// empty or every sample is later than atMs.
//
// Ties resolve to the sample at exactly atMs, matching a linear scan with
// a <= comparison. Implemented as a binary search; seeks may move backward
// so callers re-derive from scratch rather than walking incrementally.
func (t *Track) Bracket(atMs int64) int {
	lo, hi := 0, len(t.samples)
	for lo < hi {
		mid := (lo + hi) / 2
		if t.samples[mid].TimeMs <= atMs {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1
}
