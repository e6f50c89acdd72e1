package trajectory

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrace-io/retrace/internal/geom"
)

// fixtureStore builds one store exercising all three track families.
func fixtureStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()

	scout := NewTrack("scout", KindPosition)
	require.NoError(t, scout.Append(Sample{TimeMs: 0, Position: geom.Vec3{}}))
	require.NoError(t, scout.Append(Sample{TimeMs: 500, Position: geom.Vec3{Z: 0.05}}))
	require.NoError(t, store.Add(scout))

	cam := NewTrack("main-camera", KindCamera)
	require.NoError(t, cam.Append(Sample{
		TimeMs:   0,
		Position: geom.Vec3{X: 1, Y: 2, Z: 3},
		Forward:  geom.Vec3{Z: 1},
	}))
	require.NoError(t, cam.Append(Sample{
		TimeMs:   1000,
		Position: geom.Vec3{X: 1, Y: 2, Z: 4},
		Forward:  geom.Vec3{Y: 1},
	}))
	require.NoError(t, store.Add(cam))

	fps0 := NewScalarTrack("fps", 0, 0)
	require.NoError(t, fps0.Append(Sample{TimeMs: 0, Value: 60}))
	require.NoError(t, fps0.Append(Sample{TimeMs: 250, Value: 58.5}))
	require.NoError(t, store.Add(fps0))

	fps1 := NewScalarTrack("fps", 0, 1)
	require.NoError(t, fps1.Append(Sample{TimeMs: 0, Value: 16.6}))
	require.NoError(t, store.Add(fps1))

	return store
}

func trackSamples(t *testing.T, store *Store, name string) []Sample {
	t.Helper()
	track, ok := store.Track(name)
	require.True(t, ok, "track %q missing", name)
	out := make([]Sample, 0, track.Len())
	for i := 0; i < track.Len(); i++ {
		out = append(out, track.At(i))
	}
	return out
}

func TestEncode_Golden(t *testing.T) {
	data, err := Encode(fixtureStore(t))
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "document", data)
}

func TestEncode_Deterministic(t *testing.T) {
	store := fixtureStore(t)

	first, err := Encode(store)
	require.NoError(t, err)
	second, err := Encode(store)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRoundTrip(t *testing.T) {
	original := fixtureStore(t)

	data, err := Encode(original)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	require.Equal(t, original.Len(), decoded.Len())
	assert.Equal(t, original.DurationMs(), decoded.DurationMs())

	for _, name := range []string{"scout", "main-camera", "fps#0#0", "fps#0#1"} {
		want := trackSamples(t, original, name)
		got := trackSamples(t, decoded, name)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("track %q samples mismatch (-want +got):\n%s", name, diff)
		}
	}

	// Scalar identity fields survive the trip.
	fps, ok := decoded.Track("fps#0#1")
	require.True(t, ok)
	assert.Equal(t, "fps", fps.Chart)
	assert.Equal(t, 0, fps.Serie)
	assert.Equal(t, 1, fps.DataIndex)

	// Re-encoding the decoded store reproduces the bytes exactly.
	again, err := Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestDecode_EmptyDocument(t *testing.T) {
	store, err := Decode([]byte(`{"objects": [], "cameras": []}`))
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, int64(0), store.DurationMs())
}

func TestDecode_RejectsInvalidJSON(t *testing.T) {
	_, err := Decode([]byte(`{"objects": [`))
	require.Error(t, err)

	var de *DocumentError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrCodeSyntax, de.Code)
}

func TestDecode_RejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			"negative timestamp",
			`{"objects": [{"objectName": "a", "samples": [{"position": {"x":0,"y":0,"z":0}, "timeMs": -5}]}], "cameras": []}`,
		},
		{
			"missing forward on camera sample",
			`{"objects": [], "cameras": [{"cameraName": "c", "samples": [{"position": {"x":0,"y":0,"z":0}, "timeMs": 0}]}]}`,
		},
		{
			"empty object name",
			`{"objects": [{"objectName": "", "samples": []}], "cameras": []}`,
		},
		{
			"missing top-level cameras",
			`{"objects": []}`,
		},
		{
			"string where number expected",
			`{"objects": [{"objectName": "a", "samples": [{"position": {"x":"0","y":0,"z":0}, "timeMs": 0}]}], "cameras": []}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			require.Error(t, err)

			var de *DocumentError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, ErrCodeSchema, de.Code)
		})
	}
}

func TestDecode_RejectsUnorderedSamples(t *testing.T) {
	doc := `{
		"objects": [{
			"objectName": "a",
			"samples": [
				{"position": {"x":0,"y":0,"z":0}, "timeMs": 500},
				{"position": {"x":1,"y":0,"z":0}, "timeMs": 100}
			]
		}],
		"cameras": []
	}`

	_, err := Decode([]byte(doc))
	require.Error(t, err)

	var de *DocumentError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrCodeUnordered, de.Code)
	assert.Contains(t, de.Path, "objects[0]")
}

func TestDecode_RejectsDuplicateTimestamps(t *testing.T) {
	doc := `{
		"objects": [{
			"objectName": "a",
			"samples": [
				{"position": {"x":0,"y":0,"z":0}, "timeMs": 100},
				{"position": {"x":1,"y":0,"z":0}, "timeMs": 100}
			]
		}],
		"cameras": []
	}`

	_, err := Decode([]byte(doc))
	require.Error(t, err)

	var de *DocumentError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrCodeUnordered, de.Code)
}

func TestDecode_RejectsDuplicateTrackNames(t *testing.T) {
	doc := `{
		"objects": [
			{"objectName": "a", "samples": []},
			{"objectName": "a", "samples": []}
		],
		"cameras": []
	}`

	_, err := Decode([]byte(doc))
	require.Error(t, err)

	var de *DocumentError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrCodeDuplicateTrack, de.Code)
}
