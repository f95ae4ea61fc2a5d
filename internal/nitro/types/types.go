package types

// `json:"..."` tags are used by the --json output of the list and
// fingerprint commands.

// EntryInfo describes one filesystem entry as printed by the list command.
type EntryInfo struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	Type   string `json:"type"` // "file" or "dir"
	Depth  int    `json:"depth"`
	ID     uint16 `json:"id"`
	Offset uint32 `json:"offset,omitempty"`
	Length uint32 `json:"length,omitempty"`
}

type ChunkRef struct {
	Hash   string `json:"hash"`
	Offset int64  `json:"offset"`
	Size   int64  `json:"size"`
}

// Chunk represents a piece of a file's data. The Data field is not serialized.
type Chunk struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
	Data []byte `json:"-"`
}

// FileFingerprint identifies the contents of one file of an image.
type FileFingerprint struct {
	Path   string     `json:"path"`
	Offset uint32     `json:"offset"`
	Size   int64      `json:"size"`
	Hash   string     `json:"hash"`
	Chunks []ChunkRef `json:"chunks"`
}

// DuplicateGroup lists files with identical contents.
type DuplicateGroup struct {
	Hash  string   `json:"hash"`
	Size  int64    `json:"size"`
	Paths []string `json:"paths"`
}

// FingerprintReport is the result of fingerprinting an image.
type FingerprintReport struct {
	Files        []FileFingerprint `json:"files"`
	Duplicates   []DuplicateGroup  `json:"duplicates"`
	UniqueChunks int               `json:"uniqueChunks"`
	TotalChunks  int               `json:"totalChunks"`
}
