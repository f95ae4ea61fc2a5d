package commands

import (
	"fmt"
	"io"

	"github.com/gingerrexayers/nitro-go/internal/nitro/lib"
)

// SearchOptions configures the 'search' command.
type SearchOptions struct {
	ImageOptions
	// Out receives the result. Nil means stdout.
	Out io.Writer
}

// Search is the main function for the 'search' command. It resolves a
// slash-separated path inside the image and prints what it names. A path
// that names nothing is reported as an error wrapping lib.ErrNotFound.
func Search(imagePath, entryPath string, opts SearchOptions) error {
	img, err := openImage(imagePath, opts.ImageOptions)
	if err != nil {
		return err
	}
	defer img.Close()

	entry, err := lookup(img.root, entryPath)
	if err != nil {
		return err
	}

	out := output(opts.Out)
	switch e := entry.(type) {
	case *lib.File:
		fmt.Fprintf(out, "file %s\n", entryPath)
		fmt.Fprintf(out, "  id      %d\n", e.ID())
		fmt.Fprintf(out, "  offset  0x%08x\n", e.Offset())
		fmt.Fprintf(out, "  length  %d (%s)\n", e.Len(), formatBytes(int64(e.Len()), 2))
	case *lib.Directory:
		fmt.Fprintf(out, "dir %s\n", entryPath)
		fmt.Fprintf(out, "  id       %d\n", e.ID())
		fmt.Fprintf(out, "  entries  %d\n", len(e.Entries()))
	}
	return nil
}
