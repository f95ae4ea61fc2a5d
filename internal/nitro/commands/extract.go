package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gingerrexayers/nitro-go/internal/nitro/lib"
	"golang.org/x/sync/errgroup"
)

// ExtractOptions configures the 'extract' command.
type ExtractOptions struct {
	ImageOptions
	FilterOptions
	// Out receives progress messages. Nil means stdout.
	Out io.Writer
}

// fileExtractJob holds the information needed for a worker to extract one file.
type fileExtractJob struct {
	File            *lib.File
	DestinationPath string
}

// safeName reports whether an entry name can be used as a single path
// element on disk. Names come straight from the image and must not climb out
// of the output directory.
func safeName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// destination joins rel below root and checks that the result stays inside
// root.
func destination(root string, rel ...string) (string, error) {
	dst := filepath.Join(append([]string{root}, rel...)...)
	inside, err := filepath.Rel(root, dst)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s escapes the output directory", lib.ErrMalformed, filepath.Join(rel...))
	}
	return dst, nil
}

// planExtraction lists the files below dir, and the directories to create,
// relative to dest. Entries with names that cannot be written safely fail
// the whole plan.
func planExtraction(dir *lib.Directory, dest string, filter *pathFilter) ([]string, []fileExtractJob, error) {
	dirs := []string{dest}
	var jobs []fileExtractJob
	var planErr error
	err := walk(dir, func(path string, entry lib.Entry) bool {
		_, isDir := entry.(*lib.Directory)
		if filter.skip(path, isDir) {
			return true
		}
		if !safeName(entry.Name()) {
			planErr = fmt.Errorf("%w: entry %q has an unsafe name", lib.ErrMalformed, path)
			return false
		}
		dst, err := destination(dest, filepath.FromSlash(path))
		if err != nil {
			planErr = err
			return false
		}
		switch e := entry.(type) {
		case *lib.Directory:
			dirs = append(dirs, dst)
		case *lib.File:
			jobs = append(jobs, fileExtractJob{File: e, DestinationPath: dst})
		}
		return true
	})
	if err != nil {
		return nil, nil, err
	}
	if planErr != nil {
		return nil, nil, planErr
	}
	return dirs, jobs, nil
}

// Extract is the main function for the 'extract' command. It writes the
// contents of the file or directory at entryPath to outputDir. An empty
// entryPath extracts the whole filesystem.
func Extract(imagePath, entryPath, outputDir string, opts ExtractOptions) error {
	absOutputDir, err := filepath.Abs(outputDir)
	if err != nil {
		return fmt.Errorf("could not resolve output path: %w", err)
	}

	img, err := openImage(imagePath, opts.ImageOptions)
	if err != nil {
		return err
	}
	defer img.Close()

	filter, err := newPathFilter(opts.FilterOptions)
	if err != nil {
		return err
	}

	var dirs []string
	var jobs []fileExtractJob
	if entryPath == "" {
		dirs, jobs, err = planExtraction(img.root, absOutputDir, filter)
	} else {
		var entry lib.Entry
		if entry, err = lookup(img.root, entryPath); err != nil {
			return err
		}
		if !safeName(entry.Name()) {
			return fmt.Errorf("%w: entry %q has an unsafe name", lib.ErrMalformed, entryPath)
		}
		var dst string
		if dst, err = destination(absOutputDir, entry.Name()); err != nil {
			return err
		}
		switch e := entry.(type) {
		case *lib.File:
			dirs = []string{absOutputDir}
			jobs = []fileExtractJob{{File: e, DestinationPath: dst}}
		case *lib.Directory:
			dirs, jobs, err = planExtraction(e, dst, filter)
		}
	}
	if err != nil {
		return err
	}

	out := output(opts.Out)
	fmt.Fprintf(out, "Extracting %d files to \"%s\"...\n", len(jobs), absOutputDir)

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// File contents are read through io.SectionReader, which does not share
	// the filesystem cursor, so the workers can run in parallel.
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.NumCPU())
	for _, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := lib.ExtractFile(img.fs, job.File, job.DestinationPath); err != nil {
				return fmt.Errorf("failed to extract %s: %w", job.DestinationPath, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintln(out, "Extraction complete.")
	return nil
}
