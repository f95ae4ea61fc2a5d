package lib

// chunkHeaderSize covers the 4-byte tag and the 4-byte length.
const chunkHeaderSize = 8

// Chunk describes one framed section of a NARC container.
type Chunk struct {
	// Tag is the 4-byte chunk name.
	Tag string
	// Offset is the absolute position of the chunk tag.
	Offset uint32
	// Len is the 4-byte field stored right after the declared extent of the
	// chunk, not the declared length itself.
	Len uint32
}

// readChunk reads the chunk at the cursor and checks that it is named tag.
// minLen is the smallest declared length a well-formed chunk of that kind can
// have.
//
// The body is skipped, then one more u32 is read from start+length. On
// success the cursor is positioned just past that field. On a tag mismatch
// nothing past the tag has been read.
func readChunk(src *Source, tag string, minLen uint32) (Chunk, error) {
	pos, err := src.Position()
	if err != nil {
		return Chunk{}, err
	}
	actual, err := src.ReadString(4)
	if err != nil {
		return Chunk{}, err
	}
	if actual != tag {
		return Chunk{}, malformed("incorrect NARC chunk name %q, expected %q", actual, tag)
	}
	length, err := src.ReadU32()
	if err != nil {
		return Chunk{}, err
	}
	if length < minLen {
		return Chunk{}, malformed("NARC chunk %q is %d bytes, expected at least %d", tag, length, minLen)
	}

	if err := src.Seek(pos + int64(length)); err != nil { // skip contents.
		return Chunk{}, err
	}
	// TODO: this field belongs to whatever follows the chunk; check the
	// framing against a dumped NARC before relying on Len.
	trailer, err := src.ReadU32()
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{Tag: tag, Offset: uint32(pos), Len: trailer}, nil
}
