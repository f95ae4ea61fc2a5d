package lib

import (
	"fmt"
	"testing"

	"github.com/gingerrexayers/nitro-go/internal/nitro/nitrotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func describe(depth int, entry Entry) string {
	if _, ok := entry.(*Directory); ok {
		return fmt.Sprintf("%d %s/", depth, entry.Name())
	}
	return fmt.Sprintf("%d %s", depth, entry.Name())
}

func TestTraversalOrder(t *testing.T) {
	_, root := readROM(t, nitrotest.ROM(sampleTree))

	var visited []string
	for depth, entry := range root.Traverse() {
		visited = append(visited, describe(depth, entry))
	}

	// Sibling directories come out last declared first.
	assert.Equal(t, []string{
		"0 r1",
		"0 r2",
		"1 b/",
		"1 b1",
		"1 a/",
		"1 a1",
		"1 a2",
		"2 c/",
		"2 c1",
	}, visited)
}

func TestTraversalNext(t *testing.T) {
	_, root := readROM(t, nitrotest.ROM(nitrotest.D("root",
		nitrotest.D("only", nitrotest.F("leaf", "x")),
	)))
	tr := NewTraversal(root)

	depth, entry, ok := tr.Next()
	require.True(t, ok)
	assert.Equal(t, "1 only/", describe(depth, entry))

	depth, entry, ok = tr.Next()
	require.True(t, ok)
	assert.Equal(t, "1 leaf", describe(depth, entry))

	_, _, ok = tr.Next()
	assert.False(t, ok)
	_, _, ok = tr.Next()
	assert.False(t, ok, "an exhausted traversal stays exhausted")
}

func TestTraversalProperties(t *testing.T) {
	tree := nitrotest.D("root",
		nitrotest.D("x",
			nitrotest.D("y", nitrotest.F("y1", "1"), nitrotest.D("z")),
			nitrotest.F("x1", "2"),
			nitrotest.D("w", nitrotest.F("w1", "3"), nitrotest.F("w2", "4")),
			nitrotest.F("x2", "5"),
		),
		nitrotest.F("top", "6"),
		nitrotest.D("v", nitrotest.D("u", nitrotest.D("t", nitrotest.F("deep", "7")))),
	)
	_, root := readROM(t, nitrotest.ROM(tree))

	seen := map[Entry]int{}
	var order []Entry
	for _, entry := range root.Traverse() {
		seen[entry]++
		order = append(order, entry)
	}
	index := func(e Entry) int {
		for i, o := range order {
			if o == e {
				return i
			}
		}
		return -1
	}

	// Every entry below root exactly once.
	var all func(d *Directory) int
	all = func(d *Directory) int {
		n := 0
		for _, e := range d.Entries() {
			n++
			assert.Equal(t, 1, seen[e], "entry %s", e.Name())
			if sub, ok := e.(*Directory); ok {
				n += all(sub)
			}
		}
		return n
	}
	assert.Equal(t, all(root), len(order))

	var check func(d *Directory)
	check = func(d *Directory) {
		lastFile := -1
		for _, e := range d.Entries() {
			if _, ok := e.(*File); ok && index(e) > lastFile {
				lastFile = index(e)
			}
		}
		for _, e := range d.Entries() {
			sub, ok := e.(*Directory)
			if !ok {
				continue
			}
			// Files of a directory come before its subdirectories.
			assert.Greater(t, index(sub), lastFile, "directory %s", sub.Name())
			// A directory comes before its descendants.
			for _, child := range sub.Entries() {
				assert.Greater(t, index(child), index(sub), "child %s of %s", child.Name(), sub.Name())
			}
			check(sub)
		}
	}
	check(root)
}

func TestTraverseStopsEarly(t *testing.T) {
	_, root := readROM(t, nitrotest.ROM(sampleTree))

	count := 0
	for range root.Traverse() {
		count++
		if count == 3 {
			break
		}
	}

	assert.Equal(t, 3, count)
}
