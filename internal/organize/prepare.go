package organize

import (
	"os"
	"path/filepath"

	"filesort/internal/config"
	"filesort/internal/errors"
)

// PrepareDirectories creates the incoming, sorted, and archive folders
// under baseDir, plus one sorted subfolder per distinct category in the
// extension table. Safe to call repeatedly; existing folders are left
// untouched.
func PrepareDirectories(baseDir string, cfg *config.Config) error {
	dirs := []string{
		filepath.Join(baseDir, cfg.IncomingDirectory),
		filepath.Join(baseDir, cfg.SortedDirectory),
		filepath.Join(baseDir, cfg.ArchiveDirectory),
	}
	for _, category := range cfg.Categories() {
		dirs = append(dirs, filepath.Join(baseDir, cfg.SortedDirectory, category))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.NewFileError("failed to create folder", dir, errors.FileCreateFailed, err)
		}
	}
	return nil
}
