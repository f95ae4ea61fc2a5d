package lib

import (
	"io"
	"os"
	"path/filepath"
)

// ExtractFile copies the contents of f to dst. If dst does not exist, it is
// created along with its parent directories. If it does exist, it is
// overwritten.
func ExtractFile(fs *Filesystem, f *File, dst string) error {
	contents, err := fs.Open(f)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	n, err := io.Copy(destFile, contents)
	if err != nil {
		return err
	}
	if n != int64(f.Len()) {
		return ioError("extract "+f.Name(), io.ErrUnexpectedEOF)
	}

	// Ensure the data is written to stable storage.
	return destFile.Sync()
}
