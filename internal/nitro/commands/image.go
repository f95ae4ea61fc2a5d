// Package commands contains the command-line interface for the nitro application.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gingerrexayers/nitro-go/internal/nitro/lib"
)

// ImageOptions selects the filesystem a command works on.
type ImageOptions struct {
	// Archive is the path of a NARC file inside the image. When set, the
	// command works on the archive's filesystem instead of the image's.
	Archive string
	// Logger receives parse diagnostics. Nil disables them.
	Logger *slog.Logger
}

// FilterOptions selects the entries a command skips.
type FilterOptions struct {
	// Exclude holds gitignore-style patterns matched against in-image paths.
	Exclude []string
	// IgnoreFile is a file of further patterns. A missing file is not an error.
	IgnoreFile string
}

// image is an open image with its selected filesystem fully read.
type image struct {
	cart *lib.Cartridge
	fs   *lib.Filesystem
	root *lib.Directory
}

func (img *image) Close() error {
	return img.cart.Close()
}

// openImage opens the image at imagePath and reads the filesystem selected
// by opts.
func openImage(imagePath string, opts ImageOptions) (*image, error) {
	absPath, err := filepath.Abs(imagePath)
	if err != nil {
		return nil, fmt.Errorf("could not resolve absolute path for %s: %w", imagePath, err)
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("image does not exist: %s", absPath)
	}

	var libOpts []lib.Option
	if opts.Logger != nil {
		libOpts = append(libOpts, lib.WithLogger(opts.Logger))
	}
	cart, err := lib.OpenCartridge(absPath, libOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	img := &image{cart: cart}

	img.fs, err = cart.FileSystem()
	if err != nil {
		cart.Close()
		return nil, fmt.Errorf("failed to read filesystem of %s: %w", absPath, err)
	}
	img.root, err = img.fs.RootDir()
	if err != nil {
		cart.Close()
		return nil, fmt.Errorf("failed to read directory tree of %s: %w", absPath, err)
	}

	if opts.Archive == "" {
		return img, nil
	}

	entry, err := lookup(img.root, opts.Archive)
	if err != nil {
		cart.Close()
		return nil, fmt.Errorf("archive %w", err)
	}
	file, ok := entry.(*lib.File)
	if !ok {
		cart.Close()
		return nil, fmt.Errorf("archive %s is a directory", opts.Archive)
	}
	img.fs, err = cart.OpenArchive(file)
	if err != nil {
		cart.Close()
		return nil, fmt.Errorf("failed to read archive %s: %w", opts.Archive, err)
	}
	img.root, err = img.fs.RootDir()
	if err != nil {
		cart.Close()
		return nil, fmt.Errorf("failed to read directory tree of archive %s: %w", opts.Archive, err)
	}
	return img, nil
}

// walk calls fn for every entry below dir in traversal order until fn
// returns false. A path through more directories than an acyclic tree can
// hold means the tree has a cycle, which is reported instead of followed.
func walk(dir *lib.Directory, fn func(path string, entry lib.Entry) bool) error {
	for path, entry := range dir.Walk() {
		_, isDir := entry.(*lib.Directory)
		if entryDepth(path, isDir) > lib.MaxTreeDepth {
			return fmt.Errorf("%w: directory tree is deeper than %d levels, it has a cycle", lib.ErrMalformed, lib.MaxTreeDepth)
		}
		if !fn(path, entry) {
			return nil
		}
	}
	return nil
}

// lookup resolves a slash-separated path below dir. It finds what
// Directory.Search finds, but gives up on cyclic trees.
func lookup(dir *lib.Directory, entryPath string) (lib.Entry, error) {
	target := strings.Join(strings.FieldsFunc(entryPath, func(r rune) bool { return r == '/' }), "/")
	var found lib.Entry
	if target != "" {
		err := walk(dir, func(path string, entry lib.Entry) bool {
			if path == target {
				found = entry
				return false
			}
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%s: %w", entryPath, lib.ErrNotFound)
	}
	return found, nil
}

// pathFilter skips excluded entries and everything below excluded
// directories.
type pathFilter struct {
	matcher *lib.Matcher
	skipped []string
}

func newPathFilter(opts FilterOptions) (*pathFilter, error) {
	matcher, err := lib.LoadMatcher(opts.IgnoreFile, opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to load ignore patterns: %w", err)
	}
	return &pathFilter{matcher: matcher}, nil
}

func (f *pathFilter) skip(path string, isDir bool) bool {
	for _, dir := range f.skipped {
		if strings.HasPrefix(path, dir+"/") {
			return true
		}
	}
	if !f.matcher.Excluded(path, isDir) {
		return false
	}
	if isDir {
		f.skipped = append(f.skipped, path)
	}
	return true
}

// output returns w, or stdout if w is nil.
func output(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
