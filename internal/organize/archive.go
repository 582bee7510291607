package organize

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"filesort/internal/errors"
)

// ArchiveFile copies path into a date-partitioned folder (YYYY-MM-DD)
// under archiveRoot, keeping the original filename. Archiving the same
// filename twice on one day overwrites the earlier copy; that is the
// documented behavior, not a defect. Callers treat failures as
// best-effort: log and move on, never retry or roll back.
func ArchiveFile(path, archiveRoot string) error {
	dateDir := filepath.Join(archiveRoot, time.Now().Format("2006-01-02"))
	if err := os.MkdirAll(dateDir, 0755); err != nil {
		return errors.NewFileError("failed to create archive folder", dateDir, errors.FileCreateFailed, err)
	}

	archivePath := filepath.Join(dateDir, filepath.Base(path))
	if err := copyFile(path, archivePath); err != nil {
		return errors.NewFileError("failed to archive file", path, errors.ArchiveFailed, err)
	}
	return nil
}

// copyFile copies src to dst, preserving the file mode and modification
// time where the platform allows.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// Best effort; some filesystems refuse to set times
	_ = os.Chtimes(dst, time.Now(), info.ModTime())
	return nil
}
