package trajectory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrace-io/retrace/internal/geom"
)

func TestTrack_AppendEnforcesStrictOrdering(t *testing.T) {
	track := NewTrack("scout", KindPosition)

	require.NoError(t, track.Append(Sample{TimeMs: 0}))
	require.NoError(t, track.Append(Sample{TimeMs: 500}))

	// Equal timestamp rejected.
	err := track.Append(Sample{TimeMs: 500})
	assert.Error(t, err)

	// Earlier timestamp rejected.
	err = track.Append(Sample{TimeMs: 100})
	assert.Error(t, err)

	// Track unchanged by rejected appends.
	assert.Equal(t, 2, track.Len())
	assert.Equal(t, int64(500), track.EndMs())

	// Later timestamp still accepted afterwards.
	require.NoError(t, track.Append(Sample{TimeMs: 501}))
	assert.Equal(t, 3, track.Len())
}

func TestTrack_AppendRejectsNegativeTimestamp(t *testing.T) {
	track := NewTrack("scout", KindPosition)
	assert.Error(t, track.Append(Sample{TimeMs: -1}))
	assert.Equal(t, 0, track.Len())
}

func TestTrack_LastAndEnd(t *testing.T) {
	track := NewTrack("scout", KindPosition)

	_, ok := track.Last()
	assert.False(t, ok)
	assert.Equal(t, int64(0), track.EndMs())

	require.NoError(t, track.Append(Sample{TimeMs: 42, Position: geom.Vec3{X: 1}}))
	last, ok := track.Last()
	require.True(t, ok)
	assert.Equal(t, int64(42), last.TimeMs)
	assert.Equal(t, 1.0, last.Position.X)
}

func TestTrack_Bracket(t *testing.T) {
	track := NewTrack("scout", KindPosition)
	for _, ts := range []int64{100, 200, 300} {
		require.NoError(t, track.Append(Sample{TimeMs: ts}))
	}

	tests := []struct {
		name string
		atMs int64
		want int
	}{
		{"before first", 50, -1},
		{"exactly first", 100, 0},
		{"between first and second", 150, 0},
		{"exactly second", 200, 1},
		{"exactly last", 300, 2},
		{"after last", 1000, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, track.Bracket(tt.atMs))
		})
	}
}

func TestTrack_BracketEmpty(t *testing.T) {
	track := NewTrack("scout", KindPosition)
	assert.Equal(t, -1, track.Bracket(0))
}

func TestNormalizeName_NFC(t *testing.T) {
	// "é" as combining sequence vs precomposed must collapse to one identity.
	decomposed := "caméra"
	precomposed := "caméra"

	assert.Equal(t, NormalizeName(precomposed), NormalizeName(decomposed))
}

func TestScalarTrackName(t *testing.T) {
	assert.Equal(t, "fps#0#3", ScalarTrackName("fps", 0, 3))
}

func TestNewScalarTrack(t *testing.T) {
	track := NewScalarTrack("fps", 1, 2)
	assert.Equal(t, "fps#1#2", track.Name)
	assert.Equal(t, KindScalar, track.Kind)
	assert.Equal(t, "fps", track.Chart)
	assert.Equal(t, 1, track.Serie)
	assert.Equal(t, 2, track.DataIndex)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "position", KindPosition.String())
	assert.Equal(t, "camera", KindCamera.String())
	assert.Equal(t, "scalar", KindScalar.String())
}
