package organize

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"filesort/internal/config"
	"filesort/internal/errors"
	"filesort/internal/log"
	"filesort/pkg/types"

	"github.com/gobwas/glob"
)

// Engine routes incoming files into category folders and keeps a dated
// backup copy of everything it moves. One Engine serves one base
// directory; all outcomes are logged, per-file failures never stop the
// caller's loop.
type Engine struct {
	cfg     *config.Config
	baseDir string
	dryRun  bool
	ignore  []glob.Glob

	// Serializes the name-probe-then-move sequence within this process.
	// A creator outside the process can still take a resolved slot
	// between the probe and the rename; that race is accepted.
	mu sync.Mutex
}

// New creates an engine for the given configuration. Ignore patterns are
// compiled here; Validate has already rejected malformed ones.
func New(cfg *config.Config) *Engine {
	e := &Engine{
		cfg:    cfg,
		dryRun: cfg.Settings.DryRun,
	}
	for _, pattern := range cfg.Ignore {
		if g, err := glob.Compile(pattern); err == nil {
			e.ignore = append(e.ignore, g)
		}
	}
	return e
}

// SetBaseDirectory binds the engine to an operator-chosen base directory.
func (e *Engine) SetBaseDirectory(dir string) {
	e.baseDir = dir
}

// BaseDirectory returns the currently bound base directory.
func (e *Engine) BaseDirectory() string {
	return e.baseDir
}

// SetDryRun sets whether moves should be performed or just logged.
func (e *Engine) SetDryRun(dryRun bool) {
	e.dryRun = dryRun
}

// IsDryRun returns whether the engine is in dry run mode.
func (e *Engine) IsDryRun() bool {
	return e.dryRun
}

// Dispatch routes one incoming file: classify by extension, resolve a
// collision-free destination under the sorted tree, move, then archive
// the moved file. Unsupported extensions and ignore-pattern matches
// leave the file untouched. Archiving is best-effort; a failed archive
// never rolls back the move.
func (e *Engine) Dispatch(srcPath string) types.MoveOutcome {
	outcome := types.MoveOutcome{SourcePath: srcPath}
	filename := filepath.Base(srcPath)

	if e.ignored(filename) {
		log.LogWithFields(log.F("file", srcPath)).Debug("Skipping ignored file")
		outcome.Skipped = true
		outcome.Reason = types.SkipIgnored
		return outcome
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == strings.ToLower(filename) {
		// A dot-leading name like ".jpg" has no real extension
		ext = ""
	}
	category, ok := Classify(ext, e.cfg.Extensions)
	if !ok {
		log.LogWithFields(log.F("file", srcPath)).Warn("Unknown / unsupported file type")
		outcome.Skipped = true
		outcome.Reason = types.SkipUnsupported
		return outcome
	}
	outcome.Category = category

	destDir := filepath.Join(e.baseDir, e.cfg.SortedDirectory, category)

	e.mu.Lock()
	if err := os.MkdirAll(destDir, 0755); err != nil {
		e.mu.Unlock()
		outcome.Error = errors.NewFileError("failed to create destination folder", destDir, errors.FileCreateFailed, err)
		log.LogError(outcome.Error, "Error moving file")
		return outcome
	}

	finalDest := UniquePath(destDir, filename)
	outcome.DestinationPath = finalDest

	if e.dryRun {
		e.mu.Unlock()
		log.LogWithFields(log.F("file", srcPath), log.F("dest", finalDest)).Info("Would move file (dry run)")
		outcome.Skipped = true
		outcome.Reason = types.SkipDryRun
		return outcome
	}

	err := moveFile(srcPath, finalDest)
	e.mu.Unlock()
	if err != nil {
		outcome.Error = errors.NewFileError("failed to move file", srcPath, errors.MoveFailed, err)
		log.LogError(outcome.Error, "Error moving file")
		return outcome
	}
	outcome.Moved = true
	log.LogWithFields(log.F("file", srcPath), log.F("dest", finalDest)).Info("Moved file")

	archiveRoot := filepath.Join(e.baseDir, e.cfg.ArchiveDirectory)
	if err := ArchiveFile(finalDest, archiveRoot); err != nil {
		log.LogError(err, "Error archiving file")
	} else {
		outcome.Archived = true
		log.LogWithFields(log.F("file", finalDest), log.F("archive", archiveRoot)).Info("Archived file")
	}

	return outcome
}

// Sweep dispatches every regular file currently sitting in the incoming
// directory. Used by the one-shot command; the watcher handles files as
// they arrive.
func (e *Engine) Sweep() ([]types.MoveOutcome, error) {
	incoming := filepath.Join(e.baseDir, e.cfg.IncomingDirectory)
	entries, err := os.ReadDir(incoming)
	if err != nil {
		return nil, errors.NewFileError("error reading incoming directory", incoming, errors.FileAccessDenied, err)
	}

	var outcomes []types.MoveOutcome
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		outcomes = append(outcomes, e.Dispatch(filepath.Join(incoming, entry.Name())))
	}
	return outcomes, nil
}

func (e *Engine) ignored(filename string) bool {
	for _, g := range e.ignore {
		if g.Match(filename) {
			return true
		}
	}
	return false
}

// moveFile renames src to dest, falling back to copy-then-delete when
// the rename crosses filesystems.
func moveFile(src, dest string) error {
	err := os.Rename(src, dest)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return err
	}
	if _, statErr := os.Stat(src); statErr != nil {
		return err
	}

	if copyErr := copyFile(src, dest); copyErr != nil {
		return copyErr
	}
	return os.Remove(src)
}
