// Package lib contains the core, reusable services for the nitro application.
package lib

import (
	"bytes"
	"io"

	"github.com/aclements/go-rabin/rabin"
	"github.com/gingerrexayers/nitro-go/internal/nitro/types"
)

// Constants for the Rabin chunker configuration. Cartridge files are small
// compared to backup data, so the chunks are too.
const (
	minChunkSize = 1 * 1024 // 1KB
	avgChunkSize = 2 * 1024 // 2KB
	maxChunkSize = 8 * 1024 // 8KB

	// A 64-bit irreducible polynomial over GF(2).
	defaultPoly = rabin.Poly64
	// The size of the rolling hash window.
	defaultWindowSize = 64
)

// rabinTable is a pre-computed table for the Rabin chunker.
// Initializing this is computationally expensive, so we do it once and reuse it.
var rabinTable = rabin.NewTable(defaultPoly, defaultWindowSize)

// ChunkContents reads r to the end, splits the data into variable-sized
// chunks using Rabin fingerprinting, and returns the chunks along with the
// total size. Identical runs of bytes in different files produce identical
// chunks, which is what the fingerprint report relies on.
func ChunkContents(r io.Reader) ([]types.Chunk, int64, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}

	if len(content) == 0 {
		return []types.Chunk{}, 0, nil
	}

	chunker := rabin.NewChunker(rabinTable, bytes.NewReader(content), minChunkSize, avgChunkSize, maxChunkSize)

	var chunks []types.Chunk
	var totalSize int64
	var offset int64

	for {
		length, err := chunker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		// Slicing the buffer avoids copying the data for each chunk.
		chunkData := content[offset : offset+int64(length)]
		offset += int64(length)

		size := int64(len(chunkData))
		totalSize += size
		chunks = append(chunks, types.Chunk{
			Hash: GetHash(chunkData),
			Size: size,
			Data: chunkData,
		})
	}

	// Data smaller than the minimum chunk size may produce no chunk at all;
	// treat it as a single chunk.
	if len(chunks) == 0 {
		size := int64(len(content))
		chunks = append(chunks, types.Chunk{Hash: GetHash(content), Size: size, Data: content})
		totalSize = size
	}

	return chunks, totalSize, nil
}
