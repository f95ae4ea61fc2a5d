package commands

import (
	"strings"

	"github.com/gingerrexayers/nitro-go/internal/nitro/lib"
)

// CompleteEntries returns the in-image paths starting with prefix, for shell
// completion. Directories end with a slash.
func CompleteEntries(imagePath, prefix string, opts ImageOptions) ([]string, error) {
	img, err := openImage(imagePath, opts)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	var suggestions []string
	err = walk(img.root, func(path string, entry lib.Entry) bool {
		if !strings.HasPrefix(path, prefix) {
			return true
		}
		if _, ok := entry.(*lib.Directory); ok {
			path += "/"
		}
		suggestions = append(suggestions, path)
		return true
	})
	return suggestions, err
}
