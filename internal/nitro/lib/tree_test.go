package lib

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/gingerrexayers/nitro-go/internal/nitro/nitrotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readROM parses the filesystem of a synthetic cartridge image.
func readROM(t *testing.T, rom []byte) (*Filesystem, *Directory) {
	t.Helper()
	fs, err := FromROM(NewSource(bytes.NewReader(rom)))
	require.NoError(t, err)
	root, err := fs.RootDir()
	require.NoError(t, err)
	return fs, root
}

// fntBuilder assembles a raw FNT for layouts the nitrotest encoder does not
// produce: reserved headers and cycles.
type fntBuilder struct {
	main []uint32
	sub  [][]byte
}

func (b *fntBuilder) dir(firstFileID uint16, parent uint16, sub ...[]byte) {
	b.main = append(b.main, uint32(firstFileID)|uint32(parent)<<16)
	b.sub = append(b.sub, bytes.Join(append(sub, []byte{0}), nil))
}

func (b *fntBuilder) bytes() []byte {
	var fnt, subs []byte
	for i, entry := range b.main {
		fnt = binary.LittleEndian.AppendUint32(fnt, uint32(8*len(b.main)+len(subs)))
		fnt = binary.LittleEndian.AppendUint32(fnt, entry)
		subs = append(subs, b.sub[i]...)
	}
	return append(fnt, subs...)
}

func fileEntry(name string) []byte {
	return append([]byte{byte(len(name))}, name...)
}

func dirEntry(name string, id uint16) []byte {
	e := append([]byte{0x80 | byte(len(name))}, name...)
	return binary.LittleEndian.AppendUint16(e, 0xF000|id)
}

func TestRootDir(t *testing.T) {
	_, root := readROM(t, nitrotest.ROM(sampleTree))

	assert.Equal(t, RootDirName, root.Name())
	assert.Equal(t, uint16(0), root.ID())

	entries := root.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, "r1", entries[0].Name())
	assert.Equal(t, "a", entries[1].Name())
	assert.Equal(t, "r2", entries[2].Name())
	assert.Equal(t, "b", entries[3].Name())
	assert.IsType(t, &File{}, entries[0])
	assert.IsType(t, &Directory{}, entries[1])

	a := entries[1].(*Directory)
	require.Len(t, a.Entries(), 3)
	assert.Equal(t, uint16(1), a.ID())
	c := a.Entries()[2].(*Directory)
	assert.Equal(t, "c", c.Name())
	require.Len(t, c.Entries(), 1)
	assert.Equal(t, "c1", c.Entries()[0].Name())
}

func TestFileIDsAreContiguousPerDirectory(t *testing.T) {
	tables := nitrotest.Encode(sampleTree)
	_, root := readROM(t, nitrotest.ROMFromTables(tables))

	dirs := []*Directory{root}
	for _, entry := range root.Traverse() {
		if d, ok := entry.(*Directory); ok {
			dirs = append(dirs, d)
		}
	}
	require.Len(t, dirs, tables.Dirs)

	for _, d := range dirs {
		firstFileID := binary.LittleEndian.Uint16(tables.FNT[8*int(d.ID())+4:])
		next := firstFileID
		for _, entry := range d.Entries() {
			if f, ok := entry.(*File); ok {
				assert.Equal(t, next, f.ID(), "file %s of directory %s", f.Name(), d.Name())
				next++
			}
		}
	}
}

func TestFileLocations(t *testing.T) {
	tables := nitrotest.Encode(sampleTree)
	rom := nitrotest.ROMFromTables(tables)
	fs, root := readROM(t, rom)

	for _, entry := range root.Traverse() {
		f, ok := entry.(*File)
		if !ok {
			continue
		}
		fatEntry := rom[int(fs.FATOffset())+8*int(f.ID()):]
		start := binary.LittleEndian.Uint32(fatEntry)
		end := binary.LittleEndian.Uint32(fatEntry[4:])

		assert.Equal(t, fs.ImageOffset()+start, f.Offset(), "offset of %s", f.Name())
		assert.Equal(t, end-start, f.Len(), "length of %s", f.Name())

		contents, err := fs.Open(f)
		require.NoError(t, err)
		data, err := io.ReadAll(contents)
		require.NoError(t, err)
		assert.Equal(t, tables.Files[f.ID()], data, "contents of %s", f.Name())
	}
}

func TestArchiveTablesStartAtChunkTags(t *testing.T) {
	narc := nitrotest.Archive(sampleTree)
	fs, err := FromArchive(NewSource(bytes.NewReader(narc)))
	require.NoError(t, err)

	// The root main-table entry is read from the BTNF tag, whose bytes make a
	// sub-table offset far past the end of the archive.
	tagAsOffset := binary.LittleEndian.Uint32([]byte("BTNF"))
	require.Greater(t, int64(fs.FNTOffset())+int64(tagAsOffset), int64(len(narc)))

	root, err := fs.RootDir()

	assert.Nil(t, root)
	assert.ErrorIs(t, err, ErrIO)
}

func TestEmptySubTable(t *testing.T) {
	_, root := readROM(t, nitrotest.ROM(nitrotest.D("root")))

	assert.Empty(t, root.Entries())
	for range root.Traverse() {
		t.Fatal("an empty directory should yield no entries")
	}
}

func TestReservedSubTableHeaderIsSkipped(t *testing.T) {
	var fnt fntBuilder
	fnt.dir(0, 1, []byte{0x80}, fileEntry("hi"), []byte{0x80}, fileEntry("yo"))
	tables := nitrotest.Tables{FNT: fnt.bytes(), Files: [][]byte{[]byte("X"), []byte("YZ")}, Dirs: 1}

	_, root := readROM(t, nitrotest.ROMFromTables(tables))

	require.Len(t, root.Entries(), 2)
	hi := root.Entries()[0].(*File)
	yo := root.Entries()[1].(*File)
	assert.Equal(t, "hi", hi.Name())
	assert.Equal(t, uint16(0), hi.ID())
	assert.Equal(t, "yo", yo.Name())
	assert.Equal(t, uint16(1), yo.ID())
	assert.Equal(t, uint32(2), yo.Len())
}

func TestCyclicDirectoryIsLinked(t *testing.T) {
	var fnt fntBuilder
	fnt.dir(0, 2, dirEntry("a", 1))
	fnt.dir(0, 0xF000, dirEntry("loop", 0), fileEntry("x"))
	tables := nitrotest.Tables{FNT: fnt.bytes(), Files: [][]byte{[]byte("X")}, Dirs: 2}

	_, root := readROM(t, nitrotest.ROMFromTables(tables))

	a := root.Entries()[0].(*Directory)
	loop := a.Entries()[0].(*Directory)
	assert.Equal(t, "loop", loop.Name())
	assert.Equal(t, uint16(0), loop.ID())
	require.Len(t, loop.Entries(), 1)
	assert.Same(t, a, loop.Entries()[0], "the cycle should lead back to the same directory")

	// The traversal of a cyclic tree does not end.
	count := 0
	for range root.Traverse() {
		count++
		if count == 100 {
			break
		}
	}
	assert.Equal(t, 100, count)

	entry, ok := root.Search("a/loop/a/loop/a/x")
	require.True(t, ok)
	assert.Equal(t, "x", entry.Name())
}

func TestRootDirErrors(t *testing.T) {
	t.Run("file id beyond the FAT", func(t *testing.T) {
		tables := nitrotest.Encode(sampleTree)
		rom := nitrotest.ROMFromTables(tables)
		// Shrink the FAT by one entry.
		binary.LittleEndian.PutUint32(rom[0x4C:], uint32(8*(len(tables.Files)-1)))
		fs, err := FromROM(NewSource(bytes.NewReader(rom)))
		require.NoError(t, err)

		_, err = fs.RootDir()

		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("file ending before its start", func(t *testing.T) {
		tables := nitrotest.Encode(sampleTree)
		rom := nitrotest.ROMFromTables(tables)
		fatOffset := binary.LittleEndian.Uint32(rom[0x48:])
		binary.LittleEndian.PutUint32(rom[fatOffset+4:], 0)
		fs, err := FromROM(NewSource(bytes.NewReader(rom)))
		require.NoError(t, err)

		_, err = fs.RootDir()

		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("name that is not UTF-8", func(t *testing.T) {
		var fnt fntBuilder
		fnt.dir(0, 1, fileEntry("\xff\xfe"))
		tables := nitrotest.Tables{FNT: fnt.bytes(), Files: [][]byte{[]byte("X")}, Dirs: 1}
		fs, err := FromROM(NewSource(bytes.NewReader(nitrotest.ROMFromTables(tables))))
		require.NoError(t, err)

		_, err = fs.RootDir()

		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("truncated image", func(t *testing.T) {
		tables := nitrotest.Encode(sampleTree)
		rom := nitrotest.ROMFromTables(tables)
		// Cut the image inside the last sub-table, before the FAT.
		cut := nitrotest.ROMHeaderSize + len(tables.FNT) - 2
		fs, err := FromROM(NewSource(bytes.NewReader(rom[:cut])))
		require.NoError(t, err)

		_, err = fs.RootDir()

		assert.ErrorIs(t, err, ErrIO)
	})
}
