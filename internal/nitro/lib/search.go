package lib

import (
	"iter"
	"slices"
	"strings"
)

// nameStack mirrors the position of a Traversal: element i is the name of
// the directory at depth i+1 on the current path.
type nameStack []string

// enter pops the names at depth d and deeper, then pushes the directory name.
// This only relies on depths, so it is correct whatever the sibling order.
func (s nameStack) enter(depth int, name string) nameStack {
	if keep := depth - 1; keep < len(s) {
		s = s[:keep]
	}
	return append(s, name)
}

// splitPath splits a slash-separated path into its non-empty components.
func splitPath(path string) []string {
	var parts []string
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// Search looks up the entry at the given slash-separated path relative to d.
// Repeated and trailing slashes are ignored. The empty path names d itself,
// which is not below d, so it is never found.
//
// If the tree has cycles and the path does not exist, Search never returns.
func (d *Directory) Search(path string) (Entry, bool) {
	target := splitPath(path)
	if len(target) == 0 {
		return nil, false
	}

	var stack nameStack
	for depth, entry := range d.Traverse() {
		switch e := entry.(type) {
		case *Directory:
			stack = stack.enter(depth, e.Name())
			if slices.Equal(stack, target) {
				return e, true
			}
		case *File:
			// Files are leaves: compare without keeping the name.
			n := len(stack)
			if n+1 == len(target) && target[n] == e.Name() && slices.Equal(stack, target[:n]) {
				return e, true
			}
		}
	}
	return nil, false
}

// Walk returns an iterator over the entries below d keyed by their
// slash-separated path relative to d. Entries come in Traversal order.
func (d *Directory) Walk() iter.Seq2[string, Entry] {
	return func(yield func(string, Entry) bool) {
		var stack nameStack
		for depth, entry := range d.Traverse() {
			var path string
			switch e := entry.(type) {
			case *Directory:
				stack = stack.enter(depth, e.Name())
				path = strings.Join(stack, "/")
			case *File:
				path = strings.Join(append(stack[:len(stack):len(stack)], e.Name()), "/")
			}
			if !yield(path, entry) {
				return
			}
		}
	}
}
