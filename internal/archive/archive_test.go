package archive

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrace-io/retrace/internal/geom"
	"github.com/retrace-io/retrace/internal/trajectory"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func testDocument(t *testing.T) []byte {
	t.Helper()
	store := trajectory.NewStore()
	track := trajectory.NewTrack("scout", trajectory.KindPosition)
	require.NoError(t, track.Append(trajectory.Sample{TimeMs: 0}))
	require.NoError(t, track.Append(trajectory.Sample{TimeMs: 750, Position: geom.Vec3{X: 1}}))
	require.NoError(t, store.Add(track))

	data, err := trajectory.Encode(store)
	require.NoError(t, err)
	return data
}

func TestArchive_PutGetRoundTrip(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()
	doc := testDocument(t)

	rec, err := a.Put(ctx, "patrol-7", doc)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "patrol-7", rec.Name)
	assert.Equal(t, int64(750), rec.DurationMs)
	assert.Equal(t, 2, rec.SampleCount)

	got, err := a.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, doc, got.Document, "document bytes stored verbatim")

	// The fetched document loads back into a store.
	store, err := trajectory.Decode(got.Document)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestArchive_PutRejectsInvalidDocument(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	_, err := a.Put(ctx, "broken", []byte(`{"objects": [`))
	require.Error(t, err)
	assert.True(t, trajectory.IsDocumentError(err))

	recordings, err := a.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, recordings, "rejected documents never enter the archive")
}

func TestArchive_List(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()
	doc := testDocument(t)

	recordings, err := a.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, recordings)
	assert.Empty(t, recordings)

	first, err := a.Put(ctx, "one", doc)
	require.NoError(t, err)
	second, err := a.Put(ctx, "two", doc)
	require.NoError(t, err)

	recordings, err = a.List(ctx)
	require.NoError(t, err)
	require.Len(t, recordings, 2)

	// Newest first; UUIDv7 ids break created_at ties.
	assert.Equal(t, second.ID, recordings[0].ID)
	assert.Equal(t, first.ID, recordings[1].ID)

	// Listing omits document bytes.
	assert.Nil(t, recordings[0].Document)
	assert.Equal(t, int64(750), recordings[0].DurationMs)
}

func TestArchive_GetUnknown(t *testing.T) {
	a := openTestArchive(t)

	_, err := a.Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArchive_Delete(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	rec, err := a.Put(ctx, "doomed", testDocument(t))
	require.NoError(t, err)

	require.NoError(t, a.Delete(ctx, rec.ID))

	_, err = a.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, a.Delete(ctx, rec.ID), ErrNotFound)
}

func TestArchive_OpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")

	a, err := Open(path)
	require.NoError(t, err)
	rec, err := a.Put(context.Background(), "kept", testDocument(t))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	// Reopen and read back.
	a, err = Open(path)
	require.NoError(t, err)
	defer a.Close()

	got, err := a.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Name)
}
