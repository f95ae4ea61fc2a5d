package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"sort"

	"github.com/gingerrexayers/nitro-go/internal/nitro/lib"
	"github.com/gingerrexayers/nitro-go/internal/nitro/types"
	"golang.org/x/sync/errgroup"
)

// FingerprintOptions configures the 'fingerprint' command.
type FingerprintOptions struct {
	ImageOptions
	FilterOptions
	// JSON prints the whole report as JSON.
	JSON bool
	// Out receives the report. Nil means stdout.
	Out io.Writer
}

// fingerprintFile hashes the contents of f and splits them into
// content-defined chunks.
func fingerprintFile(fs *lib.Filesystem, path string, f *lib.File) (types.FileFingerprint, error) {
	contents, err := fs.Open(f)
	if err != nil {
		return types.FileFingerprint{}, err
	}
	chunks, totalSize, err := lib.ChunkContents(contents)
	if err != nil {
		return types.FileFingerprint{}, err
	}
	if _, err := contents.Seek(0, io.SeekStart); err != nil {
		return types.FileFingerprint{}, err
	}
	hash, _, err := lib.GetReaderHash(contents)
	if err != nil {
		return types.FileFingerprint{}, err
	}

	refs := make([]types.ChunkRef, len(chunks))
	var offset int64
	for i, c := range chunks {
		refs[i] = types.ChunkRef{Hash: c.Hash, Offset: offset, Size: c.Size}
		offset += c.Size
	}
	return types.FileFingerprint{
		Path:   path,
		Offset: f.Offset(),
		Size:   totalSize,
		Hash:   hash,
		Chunks: refs,
	}, nil
}

// buildReport groups identical files and counts the distinct chunks.
func buildReport(files []types.FileFingerprint) types.FingerprintReport {
	report := types.FingerprintReport{Files: files, Duplicates: []types.DuplicateGroup{}}

	byHash := make(map[string]*types.DuplicateGroup)
	var hashes []string
	chunks := make(map[string]struct{})
	for _, f := range files {
		group, ok := byHash[f.Hash]
		if !ok {
			group = &types.DuplicateGroup{Hash: f.Hash, Size: f.Size}
			byHash[f.Hash] = group
			hashes = append(hashes, f.Hash)
		}
		group.Paths = append(group.Paths, f.Path)

		for _, c := range f.Chunks {
			chunks[c.Hash] = struct{}{}
		}
		report.TotalChunks += len(f.Chunks)
	}
	report.UniqueChunks = len(chunks)

	// Sort the hashes for deterministic report ordering.
	sort.Strings(hashes)
	for _, hash := range hashes {
		if group := byHash[hash]; len(group.Paths) > 1 {
			sort.Strings(group.Paths)
			report.Duplicates = append(report.Duplicates, *group)
		}
	}
	return report
}

// Fingerprint is the main function for the 'fingerprint' command. It hashes
// every file of the filesystem and reports files with identical contents and
// how many content-defined chunks the files share.
func Fingerprint(imagePath string, opts FingerprintOptions) error {
	img, err := openImage(imagePath, opts.ImageOptions)
	if err != nil {
		return err
	}
	defer img.Close()

	filter, err := newPathFilter(opts.FilterOptions)
	if err != nil {
		return err
	}

	type target struct {
		path string
		file *lib.File
	}
	var targets []target
	err = walk(img.root, func(path string, entry lib.Entry) bool {
		switch e := entry.(type) {
		case *lib.Directory:
			filter.skip(path, true)
		case *lib.File:
			if !filter.skip(path, false) {
				targets = append(targets, target{path: path, file: e})
			}
		}
		return true
	})
	if err != nil {
		return err
	}

	files := make([]types.FileFingerprint, len(targets))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.NumCPU())
	for i, t := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fp, err := fingerprintFile(img.fs, t.path, t.file)
			if err != nil {
				return fmt.Errorf("failed to fingerprint %s: %w", t.path, err)
			}
			files[i] = fp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	report := buildReport(files)

	out := output(opts.Out)
	if opts.JSON {
		reportJSON, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(reportJSON))
		return err
	}

	fmt.Fprintf(out, "%-64s %-12s %s\n", "SHA-256", "SIZE", "PATH")
	for _, f := range report.Files {
		fmt.Fprintf(out, "%-64s %-12s %s\n", f.Hash, formatBytes(f.Size, 2), f.Path)
	}
	fmt.Fprintf(out, "\n%d files, %d chunks (%d unique)\n", len(report.Files), report.TotalChunks, report.UniqueChunks)
	if len(report.Duplicates) == 0 {
		fmt.Fprintln(out, "No duplicate files.")
		return nil
	}
	fmt.Fprintln(out, "Duplicate files:")
	for _, group := range report.Duplicates {
		fmt.Fprintf(out, "  %s (%s)\n", group.Hash[:7], formatBytes(group.Size, 2))
		for _, path := range group.Paths {
			fmt.Fprintf(out, "    %s\n", path)
		}
	}
	return nil
}
