package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_Missing(t *testing.T) {
	s := createTestStore(t)
	_, ok, err := s.Lookup(context.Background(), "Player.cs")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecord_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	b, err := s.BeginBuild(ctx, ModeFull)
	require.NoError(t, err)

	rec := createTestRecord("Game/Player.cs", "h1", StatusBuilt)
	rec.BuildID = b.ID
	require.NoError(t, s.Record(ctx, rec))

	got, ok, err := s.Lookup(ctx, "Game/Player.cs")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec, got)
	assert.Equal(t, "Game/Player.lua", got.OutputPath)
}

func TestRecord_Replaces(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, createTestRecord("A.cs", "h1", StatusBuilt)))

	failed := createTestRecord("A.cs", "h2", StatusFailed)
	failed.OutputHash = ""
	failed.Message = "invalid UTF-8"
	require.NoError(t, s.Record(ctx, failed))

	got, ok, err := s.Lookup(ctx, "A.cs")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, failed, got)

	all, err := s.Files(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRecord_RejectsInvalid(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	assert.Error(t, s.Record(ctx, FileRecord{}), "empty source path")
	assert.Error(t, s.Record(ctx, createTestRecord("A.cs", "h", FileStatus("exploded"))), "status check constraint")
	rec := createTestRecord("B.cs", "h", StatusBuilt)
	rec.BuildID = "no-such-build"
	assert.Error(t, s.Record(ctx, rec), "foreign key on build_id")
}

func TestForget(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, createTestRecord("A.cs", "h", StatusBuilt)))
	require.NoError(t, s.Forget(ctx, "A.cs"))
	require.NoError(t, s.Forget(ctx, "A.cs"), "forgetting twice is fine")

	_, ok, err := s.Lookup(ctx, "A.cs")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFiles_SortedByPath(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, p := range []string{"b/Z.cs", "A.cs", "b/A.cs", "a.cs"} {
		require.NoError(t, s.Record(ctx, createTestRecord(p, "h", StatusSkipped)))
	}

	all, err := s.Files(ctx)
	require.NoError(t, err)
	var paths []string
	for _, r := range all {
		paths = append(paths, r.SourcePath)
	}
	assert.Equal(t, []string{"A.cs", "a.cs", "b/A.cs", "b/Z.cs"}, paths)
}
