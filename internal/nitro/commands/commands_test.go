package commands

import (
	"path/filepath"
	"testing"

	"github.com/gingerrexayers/nitro-go/internal/nitro/lib"
	"github.com/gingerrexayers/nitro-go/internal/nitro/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBytes(t *testing.T) {
	testCases := []struct {
		bytes    int64
		decimals int
		expected string
	}{
		{0, 2, "0 Bytes"},
		{5, 2, "5.00 Bytes"},
		{1024, 2, "1.00 KB"},
		{1536, 1, "1.5 KB"},
		{3 * 1024 * 1024, 0, "3 MB"},
		{10, -1, "10 Bytes"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, formatBytes(tc.bytes, tc.decimals))
	}
}

func TestEntryDepth(t *testing.T) {
	assert.Equal(t, 0, entryDepth("readme.txt", false))
	assert.Equal(t, 1, entryDepth("data", true))
	assert.Equal(t, 1, entryDepth("data/a.bin", false))
	assert.Equal(t, 2, entryDepth("data/sub", true))
}

func TestPathFilter(t *testing.T) {
	filter, err := newPathFilter(FilterOptions{Exclude: []string{"sound", "*.tmp"}})
	require.NoError(t, err)

	assert.False(t, filter.skip("readme.txt", false))
	assert.True(t, filter.skip("sound", true))
	assert.True(t, filter.skip("sound/bgm.sdat", false), "entries below an excluded directory are skipped")
	assert.True(t, filter.skip("data/cache.tmp", false))
	assert.False(t, filter.skip("soundtrack/theme.sdat", false), "a shared prefix is not a parent directory")
}

func TestBuildReport(t *testing.T) {
	files := []types.FileFingerprint{
		{Path: "b", Hash: "h1", Size: 4, Chunks: []types.ChunkRef{{Hash: "c1", Size: 4}}},
		{Path: "a", Hash: "h1", Size: 4, Chunks: []types.ChunkRef{{Hash: "c1", Size: 4}}},
		{Path: "c", Hash: "h2", Size: 8, Chunks: []types.ChunkRef{{Hash: "c1", Size: 4}, {Hash: "c2", Size: 4}}},
	}

	report := buildReport(files)

	assert.Equal(t, 4, report.TotalChunks)
	assert.Equal(t, 2, report.UniqueChunks)
	require.Len(t, report.Duplicates, 1)
	assert.Equal(t, "h1", report.Duplicates[0].Hash)
	assert.Equal(t, int64(4), report.Duplicates[0].Size)
	assert.Equal(t, []string{"a", "b"}, report.Duplicates[0].Paths)

	t.Run("no duplicates", func(t *testing.T) {
		report := buildReport(files[2:])

		assert.NotNil(t, report.Duplicates)
		assert.Empty(t, report.Duplicates)
	})
}

func TestSafeName(t *testing.T) {
	for _, name := range []string{"a.bin", "..a", "a..", "...", "data"} {
		assert.True(t, safeName(name), name)
	}
	for _, name := range []string{"", ".", "..", "a/b", `a\b`, "/"} {
		assert.False(t, safeName(name), name)
	}
}

func TestDestination(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")

	dst, err := destination(root, filepath.FromSlash("data/sub/c.bin"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "data", "sub", "c.bin"), dst)

	dst, err = destination(root, "..data")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "..data"), dst)

	_, err = destination(root, filepath.FromSlash("../../etc/passwd"))
	assert.ErrorIs(t, err, lib.ErrMalformed)

	_, err = destination(root, "..")
	assert.ErrorIs(t, err, lib.ErrMalformed)
}
