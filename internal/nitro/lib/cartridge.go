package lib

import (
	"os"
)

// Cartridge is an open Nintendo DS cartridge image, or a standalone NARC
// file. All filesystems read from one Cartridge share its file cursor, so
// they must be read one at a time.
type Cartridge struct {
	file *os.File
	src  *Source
	opts []Option
}

// OpenCartridge opens the image at path. The options are passed on to every
// filesystem read from it.
func OpenCartridge(path string, opts ...Option) (*Cartridge, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Cartridge{file: file, src: NewSource(file), opts: opts}, nil
}

// Close closes the underlying file.
func (c *Cartridge) Close() error {
	return c.file.Close()
}

// IsArchive reports whether the image is a standalone NARC file rather than
// a cartridge. A cartridge starts with its game title, which can be any
// ASCII text, so the signature alone is not enough: the byte-order mark that
// follows it in a NARC is not ASCII.
func (c *Cartridge) IsArchive() (bool, error) {
	info, err := c.file.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() < int64(len(ArchiveMagic))+2 {
		return false, nil
	}
	sig, err := c.src.ReadStringAt(len(ArchiveMagic), 0)
	if err != nil {
		// Binary garbage is not a NARC signature.
		return false, nil
	}
	if sig != ArchiveMagic {
		return false, nil
	}
	bom, err := c.src.ReadU16At(int64(len(ArchiveMagic)))
	if err != nil {
		return false, err
	}
	return bom == ArchiveByteOrder, nil
}

// FileSystem reads the main filesystem of the image: the NitroROM filesystem
// of a cartridge, or the archive filesystem of a standalone NARC file.
func (c *Cartridge) FileSystem() (*Filesystem, error) {
	isArchive, err := c.IsArchive()
	if err != nil {
		return nil, err
	}
	if !isArchive {
		return FromROM(c.src, c.opts...)
	}
	if err := c.src.Seek(0); err != nil {
		return nil, err
	}
	return FromArchive(c.src, c.opts...)
}

// OpenArchive reads the NARC stored as the contents of f, a file of one of
// the filesystems of this cartridge.
func (c *Cartridge) OpenArchive(f *File) (*Filesystem, error) {
	if err := c.src.Seek(int64(f.Offset())); err != nil {
		return nil, err
	}
	return FromArchive(c.src, c.opts...)
}
