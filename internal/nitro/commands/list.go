// Package commands contains the command-line interface for the nitro application.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gingerrexayers/nitro-go/internal/nitro/lib"
	"github.com/gingerrexayers/nitro-go/internal/nitro/types"
)

// ListOptions configures the 'list' command.
type ListOptions struct {
	ImageOptions
	FilterOptions
	// JSON prints one JSON array of entries instead of the indented tree.
	JSON bool
	// Out receives the listing. Nil means stdout.
	Out io.Writer
}

// formatBytes is a utility to convert bytes into a human-readable string (KB, MB, GB).
func formatBytes(bytes int64, decimals int) string {
	if bytes == 0 {
		return "0 Bytes"
	}
	const k = 1024
	if decimals < 0 {
		decimals = 0
	}
	sizes := []string{"Bytes", "KB", "MB", "GB", "TB"}

	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(k)))
	if i >= len(sizes) {
		i = len(sizes) - 1
	}

	return fmt.Sprintf("%.*f %s", decimals, float64(bytes)/math.Pow(k, float64(i)), sizes[i])
}

// entryInfo describes entry for the JSON listing.
func entryInfo(path string, depth int, entry lib.Entry) types.EntryInfo {
	info := types.EntryInfo{Path: path, Name: entry.Name(), Depth: depth}
	switch e := entry.(type) {
	case *lib.Directory:
		info.Type = "dir"
		info.ID = e.ID()
	case *lib.File:
		info.Type = "file"
		info.ID = e.ID()
		info.Offset = e.Offset()
		info.Length = e.Len()
	}
	return info
}

// entryDepth returns the traversal depth of the entry at path: the number of
// directories in the path.
func entryDepth(path string, isDir bool) int {
	depth := strings.Count(path, "/")
	if isDir {
		depth++
	}
	return depth
}

// collectEntries walks root and keeps the entries the filter lets through.
func collectEntries(root *lib.Directory, filter *pathFilter) ([]types.EntryInfo, error) {
	infos := []types.EntryInfo{}
	err := walk(root, func(path string, entry lib.Entry) bool {
		_, isDir := entry.(*lib.Directory)
		if !filter.skip(path, isDir) {
			infos = append(infos, entryInfo(path, entryDepth(path, isDir), entry))
		}
		return true
	})
	return infos, err
}

// List is the main function for the 'list' command. It prints every entry of
// the filesystem in traversal order, indented by two spaces per depth level.
// Sibling directories come out in reverse declaration order.
func List(imagePath string, opts ListOptions) error {
	img, err := openImage(imagePath, opts.ImageOptions)
	if err != nil {
		return err
	}
	defer img.Close()

	filter, err := newPathFilter(opts.FilterOptions)
	if err != nil {
		return err
	}
	infos, err := collectEntries(img.root, filter)
	if err != nil {
		return err
	}

	out := output(opts.Out)
	if opts.JSON {
		listJSON, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(listJSON))
		return err
	}

	var fileCount, dirCount int
	var totalSize int64
	for _, info := range infos {
		prefix := strings.Repeat(" ", info.Depth*2)
		if info.Type == "dir" {
			dirCount++
			fmt.Fprintf(out, "%s- %s/\n", prefix, info.Name)
			continue
		}
		fileCount++
		totalSize += int64(info.Length)
		fmt.Fprintf(out, "%s- %s  [id %d, offset 0x%08x, %s]\n",
			prefix, info.Name, info.ID, info.Offset, formatBytes(int64(info.Length), 2))
	}

	fmt.Fprintf(out, "\n%d files in %d directories, %s total\n", fileCount, dirCount, formatBytes(totalSize, 2))
	return nil
}
