package repository

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
)

// WalkFiles returns every regular file under root, depth first and in
// lexical order within each directory. Directories whose base name is in
// excludeDirs are not entered. Symlinks and other special files are skipped
// so that nothing outside root is ever read. Any read error aborts the walk.
func WalkFiles(root string, excludeDirs ...string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && slices.Contains(excludeDirs, d.Name()) {
				return fs.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			slog.Debug("Skipping non-regular file", "path", path, "mode", d.Type().String())
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	return files, nil
}
