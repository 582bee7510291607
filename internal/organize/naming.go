package organize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UniquePath returns a collision-free destination path for filename in
// destDir. If the plain name is taken it appends a counter to the base
// name, "report.txt" -> "report 1.txt" -> "report 2.txt", probing each
// candidate in sequence until a free slot is found. The existence check
// and the eventual move are not atomic; a concurrent creator of the same
// candidate can still win the slot.
func UniquePath(destDir, filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	destPath := filepath.Join(destDir, filename)
	for counter := 1; exists(destPath); counter++ {
		destPath = filepath.Join(destDir, fmt.Sprintf("%s %d%s", base, counter, ext))
	}
	return destPath
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
