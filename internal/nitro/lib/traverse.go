package lib

import "iter"

// Traversal walks the entries below a directory, each directory before its
// descendants.
//
// Depths are relative to the start directory: its files are at depth 0 and
// its subdirectories at depth 1. A directory at depth d is followed by its own
// files, also at depth d, while its subdirectories are at depth d+1. In other
// words the depth of an entry is the number of directories in its path.
//
// Files of a directory keep their sub-table order and always come before any
// of its subdirectories. Sibling directories do NOT: pending directories are
// kept on a stack, so the last one declared is expanded first. Consumers that
// need declaration order must sort by themselves.
//
// If the tree has cycles, the traversal never ends.
type Traversal struct {
	depth   int
	files   []Entry
	pending []pendingDir
}

type pendingDir struct {
	depth int
	dir   *Directory
}

// NewTraversal returns a traversal of the entries below start. start itself
// is not part of the traversal.
func NewTraversal(start *Directory) *Traversal {
	t := &Traversal{}
	for _, entry := range start.Entries() {
		switch e := entry.(type) {
		case *File:
			t.files = append(t.files, e)
		case *Directory:
			t.pending = append(t.pending, pendingDir{depth: 1, dir: e})
		}
	}
	return t
}

// Next returns the next entry and its depth. ok is false once every entry has
// been visited.
func (t *Traversal) Next() (depth int, entry Entry, ok bool) {
	// First, we visit the files in the current directory.
	if len(t.files) > 0 {
		entry, t.files = t.files[0], t.files[1:]
		return t.depth, entry, true
	}

	// Once we run out of files, we expand the most recent subdirectory.
	if len(t.pending) == 0 {
		return 0, nil, false
	}
	next := t.pending[len(t.pending)-1]
	t.pending = t.pending[:len(t.pending)-1]
	for _, child := range next.dir.Entries() {
		switch e := child.(type) {
		case *File:
			t.files = append(t.files, e)
		case *Directory:
			t.pending = append(t.pending, pendingDir{depth: next.depth + 1, dir: e})
		}
	}
	t.depth = next.depth
	return next.depth, next.dir, true
}

// Traverse returns an iterator over the entries below d with their depths.
// See Traversal for the visiting order.
func (d *Directory) Traverse() iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		t := NewTraversal(d)
		for {
			depth, entry, ok := t.Next()
			if !ok || !yield(depth, entry) {
				return
			}
		}
	}
}
