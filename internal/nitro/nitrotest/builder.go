// Package nitrotest builds synthetic cartridge images and NARC archives for
// tests.
package nitrotest

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// Node is a *Dir or a *File of a synthetic filesystem.
type Node interface {
	node()
}

// Dir is a synthetic directory.
type Dir struct {
	Name     string
	Children []Node
}

// File is a synthetic file.
type File struct {
	Name string
	Data []byte
}

func (*Dir) node()  {}
func (*File) node() {}

// D returns a directory with the given children.
func D(name string, children ...Node) *Dir {
	return &Dir{Name: name, Children: children}
}

// F returns a file with the given contents.
func F(name, data string) *File {
	return &File{Name: name, Data: []byte(data)}
}

// Tables is the encoded filesystem of a tree.
type Tables struct {
	// FNT is the File Name Table: main table then sub-tables.
	FNT []byte
	// Files holds the file contents in file id order.
	Files [][]byte
	// Dirs is the number of directories, root included.
	Dirs int
}

// fat encodes the File Allocation Table, placing the files back to back
// starting at base.
func (t Tables) fat(base uint32) []byte {
	fat := make([]byte, 0, 8*len(t.Files))
	pos := base
	for _, data := range t.Files {
		fat = binary.LittleEndian.AppendUint32(fat, pos)
		pos += uint32(len(data))
		fat = binary.LittleEndian.AppendUint32(fat, pos)
	}
	return fat
}

func (t Tables) data() []byte {
	var data []byte
	for _, f := range t.Files {
		data = append(data, f...)
	}
	return data
}

// Encode lays out the tables of root. Directory ids follow a pre-order walk
// with the root at 0; file ids are assigned directory by directory, in
// sub-table order.
func Encode(root *Dir) Tables {
	var dirs []*Dir
	var walk func(d *Dir)
	walk = func(d *Dir) {
		dirs = append(dirs, d)
		for _, c := range d.Children {
			if sub, ok := c.(*Dir); ok {
				walk(sub)
			}
		}
	}
	walk(root)

	ids := make(map[*Dir]int, len(dirs))
	for i, d := range dirs {
		ids[d] = i
	}
	parents := make(map[*Dir]int, len(dirs))
	for _, d := range dirs {
		for _, c := range d.Children {
			if sub, ok := c.(*Dir); ok {
				parents[sub] = ids[d]
			}
		}
	}

	var t Tables
	t.Dirs = len(dirs)
	firstFileIDs := make([]int, len(dirs))
	for i, d := range dirs {
		firstFileIDs[i] = len(t.Files)
		for _, c := range d.Children {
			if f, ok := c.(*File); ok {
				t.Files = append(t.Files, f.Data)
			}
		}
	}

	mainTable := make([]byte, 0, 8*len(dirs))
	var subTables []byte
	for i, d := range dirs {
		mainTable = binary.LittleEndian.AppendUint32(mainTable, uint32(8*len(dirs)+len(subTables)))
		mainTable = binary.LittleEndian.AppendUint16(mainTable, uint16(firstFileIDs[i]))
		if i == 0 {
			mainTable = binary.LittleEndian.AppendUint16(mainTable, uint16(len(dirs)))
		} else {
			mainTable = binary.LittleEndian.AppendUint16(mainTable, 0xF000|uint16(parents[d]))
		}

		for _, c := range d.Children {
			switch n := c.(type) {
			case *File:
				subTables = append(subTables, byte(len(n.Name)))
				subTables = append(subTables, n.Name...)
			case *Dir:
				subTables = append(subTables, 0x80|byte(len(n.Name)))
				subTables = append(subTables, n.Name...)
				subTables = binary.LittleEndian.AppendUint16(subTables, 0xF000|uint16(ids[n]))
			}
		}
		subTables = append(subTables, 0)
	}
	t.FNT = append(mainTable, subTables...)
	return t
}

// ROMHeaderSize is where ROM places the FNT.
const ROMHeaderSize = 0x200

// ROM returns a cartridge image holding the filesystem of root: a zeroed
// header with the table fields set, the FNT, the FAT and the file contents.
func ROM(root *Dir) []byte {
	return ROMFromTables(Encode(root))
}

// ROMFromTables is ROM for tables that were encoded, and possibly altered,
// by the caller.
func ROMFromTables(t Tables) []byte {
	fntOffset := uint32(ROMHeaderSize)
	fatOffset := fntOffset + uint32(len(t.FNT))
	fatSize := uint32(8 * len(t.Files))
	dataOffset := fatOffset + fatSize

	rom := make([]byte, ROMHeaderSize)
	binary.LittleEndian.PutUint32(rom[0x40:], fntOffset)
	binary.LittleEndian.PutUint32(rom[0x44:], uint32(len(t.FNT)))
	binary.LittleEndian.PutUint32(rom[0x48:], fatOffset)
	binary.LittleEndian.PutUint32(rom[0x4C:], fatSize)
	rom = append(rom, t.FNT...)
	rom = append(rom, t.fat(dataOffset)...)
	return append(rom, t.data()...)
}

// Archive returns a NARC holding the filesystem of root.
func Archive(root *Dir) []byte {
	return ArchiveFromTables(Encode(root))
}

// ArchiveFromTables is Archive for tables that were encoded, and possibly
// altered, by the caller.
//
// Every chunk is followed by a u32 repeating its length, which is where the
// reader takes a chunk's Len from.
func ArchiveFromTables(t Tables) []byte {
	var btaf []byte
	btaf = append(btaf, "BTAF"...)
	btaf = binary.LittleEndian.AppendUint32(btaf, uint32(12+8*len(t.Files)))
	btaf = binary.LittleEndian.AppendUint16(btaf, uint16(len(t.Files)))
	btaf = binary.LittleEndian.AppendUint16(btaf, 0)
	btaf = append(btaf, t.fat(0)...)

	var btnf []byte
	btnf = append(btnf, "BTNF"...)
	btnf = binary.LittleEndian.AppendUint32(btnf, uint32(8+len(t.FNT)))
	btnf = append(btnf, t.FNT...)

	data := t.data()
	var gmif []byte
	gmif = append(gmif, "GMIF"...)
	gmif = binary.LittleEndian.AppendUint32(gmif, uint32(8+len(data)))
	gmif = append(gmif, data...)

	size := 16 + len(btaf) + len(btnf) + len(gmif) + 3*4
	var narc []byte
	narc = append(narc, "NARC"...)
	narc = binary.LittleEndian.AppendUint16(narc, 0xFFFE)
	narc = binary.LittleEndian.AppendUint16(narc, 0x10)
	narc = binary.LittleEndian.AppendUint32(narc, uint32(size))
	narc = binary.LittleEndian.AppendUint16(narc, 16)
	narc = binary.LittleEndian.AppendUint16(narc, 3)
	for _, chunk := range [][]byte{btaf, btnf, gmif} {
		narc = append(narc, chunk...)
		narc = binary.LittleEndian.AppendUint32(narc, uint32(len(chunk)))
	}
	return narc
}

// WriteFile writes data to a file named name in a test temporary directory
// and returns its path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write test image: %v", err)
	}
	return path
}
