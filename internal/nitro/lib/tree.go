package lib

// Entry is a node of a NitroROM filesystem tree: either a *Directory or a
// *File.
type Entry interface {
	Name() string
	isEntry()
}

// listing holds the children of a directory. Directories that reach the same
// directory id through a cycle share one listing.
type listing struct {
	entries []Entry
}

// Directory is a directory stored within a NitroROM filesystem. It contains
// zero or more entries, in the order of its FNT sub-table.
type Directory struct {
	name    string
	id      uint16
	listing *listing
}

func (*Directory) isEntry() {}

// Name returns the name of the directory.
func (d *Directory) Name() string { return d.name }

// ID returns the index of the directory in the FNT main table.
func (d *Directory) ID() uint16 { return d.id }

// Entries returns the children of the directory in sub-table order. The
// returned slice must not be modified.
func (d *Directory) Entries() []Entry {
	if d.listing == nil {
		return nil
	}
	return d.listing.entries
}

// File is a file stored within a NitroROM filesystem. Only its location is
// known; its contents are read with Filesystem.Open.
type File struct {
	name   string
	id     uint16
	offset uint32
	length uint32
}

func (*File) isEntry() {}

// Name returns the name of the file.
func (f *File) Name() string { return f.name }

// ID returns the index of the file in the FAT.
func (f *File) ID() uint16 { return f.id }

// Offset returns the absolute offset at which the file contents start.
func (f *File) Offset() uint32 { return f.offset }

// Len returns the length of the file contents in bytes.
func (f *File) Len() uint32 { return f.length }

// treeReader walks the FNT. open maps the ids of the directories currently
// being read to their listings.
type treeReader struct {
	fs   *Filesystem
	open map[uint16]*listing
}

// RootDir reads the whole directory tree.
//
// The FNT consists of a main table, holding for every directory an offset to
// its sub-table and the id of its first file, and the sub-tables, holding the
// names of the entries of each directory. File ids are assigned sequentially
// within each directory, starting at the first file id, and index the FAT.
//
// The cursor position is unspecified upon return.
func (fs *Filesystem) RootDir() (*Directory, error) {
	if err := fs.src.Seek(int64(fs.fntOffset)); err != nil {
		return nil, err
	}
	r := &treeReader{fs: fs, open: make(map[uint16]*listing)}
	return r.readDirectory(RootDirName, 0)
}

// readDirectory reads the directory whose FNT main table entry is at the
// cursor.
//
// The cursor position is unspecified upon return.
func (r *treeReader) readDirectory(name string, id uint16) (*Directory, error) {
	src := r.fs.src
	subTableOffset, err := src.ReadU32()
	if err != nil {
		return nil, err
	}
	firstFileID, err := src.ReadU16()
	if err != nil {
		return nil, err
	}
	// The last field is the parent id, except for the root entry where it
	// holds the total number of directories.
	if id == 0 {
		dirCount, err := src.ReadU16()
		if err != nil {
			return nil, err
		}
		r.fs.log().Debug("reading root directory", "directories", dirCount)
	}

	l := &listing{}
	r.open[id] = l
	defer delete(r.open, id)

	if err := src.Seek(int64(r.fs.fntOffset) + int64(subTableOffset)); err != nil {
		return nil, err
	}
	l.entries, err = r.readSubTable(firstFileID)
	if err != nil {
		return nil, err
	}
	return &Directory{name: name, id: id, listing: l}, nil
}

// readSubTable reads the FNT sub-table at the cursor. fileID is the id of the
// first file of the sub-table, if any.
//
// On success the cursor is positioned just past the terminating zero byte.
func (r *treeReader) readSubTable(fileID uint16) ([]Entry, error) {
	src := r.fs.src
	var entries []Entry
	for {
		// Each entry has a 1-byte header: the top bit flags a directory, the
		// low 7 bits are the name length. Directories follow their name with
		// their main table index; files carry no id, they are numbered in
		// order from fileID.
		header, err := src.ReadU8()
		if err != nil {
			return nil, err
		}
		if header == 0 {
			break
		}
		if header == 0x80 {
			continue // reserved.
		}
		name, err := src.ReadString(int(header & 0x7F))
		if err != nil {
			return nil, err
		}

		var entry Entry
		var entryEnd int64
		if header&0x80 == 0 {
			if entryEnd, err = src.Position(); err != nil {
				return nil, err
			}
			entry, err = r.readFile(name, fileID)
			fileID++
		} else {
			var subdirID uint16
			if subdirID, err = src.ReadU16(); err != nil {
				return nil, err
			}
			subdirID &= SubdirIDMask
			if entryEnd, err = src.Position(); err != nil {
				return nil, err
			}
			entry, err = r.readSubdir(name, subdirID)
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)

		// Reading the FAT or a sub-directory moves the cursor elsewhere.
		if err := src.Seek(entryEnd); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// readFile reads the FAT entry of the file with the given id.
//
// The cursor position is unspecified upon return.
func (r *treeReader) readFile(name string, id uint16) (*File, error) {
	if uint32(id) >= r.fs.fileCount {
		return nil, malformed("file %q has id %d, but the FAT holds %d files", name, id, r.fs.fileCount)
	}
	src := r.fs.src
	if err := src.Seek(r.fs.fatEntryOffset(id)); err != nil {
		return nil, err
	}
	start, err := src.ReadU32() // relative to the image base
	if err != nil {
		return nil, err
	}
	end, err := src.ReadU32()
	if err != nil {
		return nil, err
	}
	if end < start {
		return nil, malformed("file %q ends at %#x before its start %#x", name, end, start)
	}
	return &File{
		name:   name,
		id:     id,
		offset: r.fs.imageOffset + start,
		// TODO: confirm against a dumped cartridge whether end is inclusive.
		length: end - start,
	}, nil
}

// readSubdir reads the directory with the given id. A directory that is
// already being read, i.e. an ancestor, is linked rather than read again, so
// the tree keeps the cycle without recursing forever.
//
// The cursor position is unspecified upon return.
func (r *treeReader) readSubdir(name string, id uint16) (*Directory, error) {
	if l, ok := r.open[id]; ok {
		r.fs.log().Debug("directory refers to an ancestor", "name", name, "id", id)
		return &Directory{name: name, id: id, listing: l}, nil
	}
	if err := r.fs.src.Seek(r.fs.fntEntryOffset(id)); err != nil {
		return nil, err
	}
	return r.readDirectory(name, id)
}
