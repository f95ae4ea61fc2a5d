// Package lib contains the core, reusable services for the nitro application.
package lib

import (
	"os"
	"strings"

	"github.com/denormal/go-gitignore"
)

// --- Constants ---

// Cartridge header fields locating the filesystem tables.
const (
	// ROMFNTOffsetField holds the absolute offset of the File Name Table.
	ROMFNTOffsetField = 0x40
	// ROMFNTSizeField holds the size of the File Name Table in bytes.
	ROMFNTSizeField = 0x44
	// ROMFATOffsetField holds the absolute offset of the File Allocation Table.
	ROMFATOffsetField = 0x48
	// ROMFATSizeField holds the size of the File Allocation Table in bytes.
	ROMFATSizeField = 0x4C
)

// Nitro Archive (NARC) container constants.
const (
	ArchiveMagic     = "NARC"
	ArchiveByteOrder = 0xFFFE
	ArchiveVersion   = 0x10
	ArchiveChunks    = 3

	FATChunkTag   = "BTAF"
	FNTChunkTag   = "BTNF"
	ImageChunkTag = "GMIF"
)

// Table layout constants.
const (
	// FNTEntrySize is the stride of the FNT main table.
	FNTEntrySize = 8
	// FATEntrySize is the stride of the FAT.
	FATEntrySize = 8
	// SubdirIDMask extracts the directory id from a sub-table directory entry.
	SubdirIDMask = 0x0FFF
	// RootDirName is the name given to directory id 0.
	RootDirName = "root"
	// MaxTreeDepth is the deepest an acyclic tree can be: a path through
	// more directories than there are directory ids repeats one of them.
	MaxTreeDepth = SubdirIDMask
)

// IgnoreFilename is the name of the file containing user-defined path
// patterns that list, extract and fingerprint should skip.
const IgnoreFilename = ".nitroignore"

// --- Ignore patterns ---

// Matcher decides whether an in-image path is excluded. The zero value and a
// nil *Matcher exclude nothing.
type Matcher struct {
	ignore gitignore.GitIgnore
}

// NewMatcher compiles gitignore-style patterns. Blank lines and comments are
// dropped; directory patterns ("dir/") also cover everything below them.
func NewMatcher(patterns []string) *Matcher {
	var finalPatterns []string
	for _, p := range patterns {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		trimmed = strings.ReplaceAll(trimmed, "\\", "/")
		if strings.HasSuffix(trimmed, "/") && !strings.HasSuffix(trimmed, "**/") {
			trimmed = trimmed + "**"
		}
		finalPatterns = append(finalPatterns, trimmed)
	}
	if len(finalPatterns) == 0 {
		return &Matcher{}
	}

	reader := strings.NewReader(strings.Join(finalPatterns, "\n"))
	// In-image paths are virtual, so the base only has to be stable.
	ignore := gitignore.New(reader, "/", func(err gitignore.Error) bool { return false })
	return &Matcher{ignore: ignore}
}

// LoadMatcher reads patterns from ignoreFile, if it exists, and appends the
// extra patterns given on the command line.
func LoadMatcher(ignoreFile string, extra []string) (*Matcher, error) {
	var patterns []string
	if ignoreFile != "" {
		content, err := os.ReadFile(ignoreFile)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			patterns = append(patterns, strings.Split(string(content), "\n")...)
		}
	}
	patterns = append(patterns, extra...)
	return NewMatcher(patterns), nil
}

// Excluded reports whether the slash-separated path, relative to the image
// root, matches an ignore pattern.
func (m *Matcher) Excluded(path string, isDir bool) bool {
	if m == nil || m.ignore == nil {
		return false
	}
	match := m.ignore.Relative(strings.Trim(path, "/"), isDir)
	if match == nil {
		return false
	}
	return match.Ignore()
}
