package lib

import (
	"io"
	"log/slog"
)

// Filesystem is a NitroROM filesystem: the main filesystem of a cartridge or
// the virtual filesystem of a Nitro Archive (NARC). It exclusively owns the
// cursor of its Source while reading; the trees it produces are immutable and
// can be shared freely afterwards.
type Filesystem struct {
	src *Source

	// fntOffset is the absolute position of the File Name Table.
	fntOffset uint32
	// fatOffset is the absolute position of the File Allocation Table.
	fatOffset uint32
	// imageOffset is the absolute position at which file contents start. It
	// is zero for a cartridge; FAT offsets are relative to the ROM start.
	// The console only accepts files outside the Secure Area (0x8000 and up),
	// this reader is lenient and accepts any offset.
	imageOffset uint32
	// fileCount is the number of FAT entries.
	fileCount uint32

	logger *slog.Logger
}

// Option configures a Filesystem.
type Option func(*Filesystem)

// WithLogger sets the logger used for parse diagnostics.
// By default, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(fs *Filesystem) {
		fs.logger = logger
	}
}

func newFilesystem(src *Source, opts []Option) *Filesystem {
	fs := &Filesystem{src: src}
	for _, opt := range opts {
		opt(fs)
	}
	return fs
}

func (fs *Filesystem) log() *slog.Logger {
	if fs.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return fs.logger
}

// FromROM reads the table roots of the main filesystem of a cartridge image
// from the cartridge header.
//
// The cursor of src is not affected.
func FromROM(src *Source, opts ...Option) (*Filesystem, error) {
	fs := newFilesystem(src, opts)

	var err error
	if fs.fntOffset, err = src.ReadU32At(ROMFNTOffsetField); err != nil {
		return nil, err
	}
	if fs.fatOffset, err = src.ReadU32At(ROMFATOffsetField); err != nil {
		return nil, err
	}
	fatSize, err := src.ReadU32At(ROMFATSizeField)
	if err != nil {
		return nil, err
	}
	fs.fileCount = fatSize / FATEntrySize
	fs.imageOffset = 0

	fs.log().Debug("resolved cartridge filesystem",
		"fnt", fs.fntOffset, "fat", fs.fatOffset, "files", fs.fileCount)
	return fs, nil
}

// FromArchive reads a Nitro Archive (NARC) container starting at the cursor
// of src.
//
// A NARC is a 16-byte header followed by exactly three chunks: the FAT
// (BTAF), the FNT (BTNF) and the image holding the file contents (GMIF).
// Any mismatch fails with ErrMalformed as soon as it is read. The table
// bases are the start offsets of the three chunks.
//
// On success the cursor is positioned just past the field that follows the
// image chunk. If this function returns an error, the cursor position is
// unspecified.
func FromArchive(src *Source, opts ...Option) (*Filesystem, error) {
	fs := newFilesystem(src, opts)

	sig, err := src.ReadString(4)
	if err != nil {
		return nil, err
	}
	if sig != ArchiveMagic {
		return nil, malformed("incorrect file signature %q, expected %q", sig, ArchiveMagic)
	}
	if err := src.Skip(2); err != nil { // byte order
		return nil, err
	}
	version, err := src.ReadU16()
	if err != nil {
		return nil, err
	}
	if version != ArchiveVersion {
		return nil, malformed("unknown NARC file version %#04x, expected %#04x", version, ArchiveVersion)
	}
	if err := src.Skip(6); err != nil { // file size, header size
		return nil, err
	}
	chunkCount, err := src.ReadU16()
	if err != nil {
		return nil, err
	}
	if chunkCount != ArchiveChunks {
		return nil, malformed("NARC file has %d chunks, expected %d", chunkCount, ArchiveChunks)
	}

	// BTAF carries a file count and two reserved bytes after its header.
	fat, err := readChunk(src, FATChunkTag, chunkHeaderSize+4)
	if err != nil {
		return nil, err
	}
	fnt, err := readChunk(src, FNTChunkTag, chunkHeaderSize)
	if err != nil {
		return nil, err
	}
	image, err := readChunk(src, ImageChunkTag, chunkHeaderSize)
	if err != nil {
		return nil, err
	}

	// The count is only a bound on file ids; it does not move any base.
	count, err := src.ReadU16At(int64(fat.Offset) + chunkHeaderSize)
	if err != nil {
		return nil, err
	}
	fs.fileCount = uint32(count)
	// TODO: these point at the chunk tags rather than the tables inside the
	// chunks. Verify against a dumped NARC before changing them.
	fs.fatOffset = fat.Offset
	fs.fntOffset = fnt.Offset
	fs.imageOffset = image.Offset

	fs.log().Debug("resolved archive filesystem",
		"fnt", fs.fntOffset, "fat", fs.fatOffset, "image", fs.imageOffset, "files", fs.fileCount,
		"fat_len", fat.Len, "fnt_len", fnt.Len, "image_len", image.Len)
	return fs, nil
}

// FNTOffset returns the absolute position of the File Name Table.
func (fs *Filesystem) FNTOffset() uint32 { return fs.fntOffset }

// FATOffset returns the absolute position of the File Allocation Table.
func (fs *Filesystem) FATOffset() uint32 { return fs.fatOffset }

// ImageOffset returns the absolute position at which file contents start.
func (fs *Filesystem) ImageOffset() uint32 { return fs.imageOffset }

// FileCount returns the number of entries in the File Allocation Table.
func (fs *Filesystem) FileCount() uint32 { return fs.fileCount }

// fatEntryOffset returns the absolute position of the FAT entry for the file
// with the given id.
func (fs *Filesystem) fatEntryOffset(fileID uint16) int64 {
	return int64(fs.fatOffset) + int64(fileID)*FATEntrySize
}

// fntEntryOffset returns the absolute position of the FNT main table entry
// for the directory with the given id.
func (fs *Filesystem) fntEntryOffset(dirID uint16) int64 {
	return int64(fs.fntOffset) + int64(dirID)*FNTEntrySize
}

// Open returns a reader over the contents of f. The reader does not use the
// filesystem cursor and may be used concurrently with other readers.
func (fs *Filesystem) Open(f *File) (*io.SectionReader, error) {
	at, ok := fs.src.ReaderAt()
	if !ok {
		return nil, ioError("open "+f.Name(), errNoReaderAt)
	}
	return io.NewSectionReader(at, int64(f.Offset()), int64(f.Len())), nil
}
