package lib

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkContents(t *testing.T) {
	t.Run("Chunk a normal-sized file", func(t *testing.T) {
		// avgChunkSize is 2KB, so 20KB should produce several chunks.
		content := make([]byte, 20*1024)
		_, err := rand.Read(content)
		require.NoError(t, err, "Failed to generate random content")

		chunks, totalSize, err := ChunkContents(bytes.NewReader(content))

		require.NoError(t, err)
		assert.Greater(t, len(chunks), 1, "Expected contents to be split into multiple chunks")
		assert.Equal(t, int64(len(content)), totalSize)

		// Verify that the concatenated chunks re-form the original content.
		var reconstructed []byte
		for _, chunk := range chunks {
			assert.Equal(t, GetHash(chunk.Data), chunk.Hash)
			assert.Equal(t, int64(len(chunk.Data)), chunk.Size)
			reconstructed = append(reconstructed, chunk.Data...)
		}
		assert.True(t, bytes.Equal(content, reconstructed), "Reconstructed content does not match original content")
	})

	t.Run("Chunk a small file (less than min chunk size)", func(t *testing.T) {
		content := []byte("this file is too small to be split.")

		chunks, totalSize, err := ChunkContents(bytes.NewReader(content))

		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, int64(len(content)), totalSize)
		assert.Equal(t, content, chunks[0].Data)
	})

	t.Run("Chunk an empty file", func(t *testing.T) {
		chunks, totalSize, err := ChunkContents(bytes.NewReader(nil))

		require.NoError(t, err)
		assert.Empty(t, chunks)
		assert.Equal(t, int64(0), totalSize)
	})

	t.Run("Shared data produces shared chunks", func(t *testing.T) {
		shared := make([]byte, 32*1024)
		_, err := rand.Read(shared)
		require.NoError(t, err)
		prefixed := append([]byte("a different header"), shared...)

		first, _, err := ChunkContents(bytes.NewReader(shared))
		require.NoError(t, err)
		second, _, err := ChunkContents(bytes.NewReader(prefixed))
		require.NoError(t, err)

		hashes := map[string]bool{}
		for _, c := range first {
			hashes[c.Hash] = true
		}
		common := 0
		for _, c := range second {
			if hashes[c.Hash] {
				common++
			}
		}
		assert.Greater(t, common, 0, "content-defined chunks should resynchronise after the prefix")
	})
}
