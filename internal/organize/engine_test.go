package organize_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"filesort/internal/config"
	"filesort/internal/errors"
	"filesort/internal/organize"
	"filesort/pkg/testutils"
	"filesort/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEngine prepares a base directory tree and an engine bound to it.
func newTestEngine(t *testing.T, cfg *config.Config) (*organize.Engine, string) {
	t.Helper()
	baseDir := t.TempDir()
	require.NoError(t, organize.PrepareDirectories(baseDir, cfg))
	engine := organize.New(cfg)
	engine.SetBaseDirectory(baseDir)
	return engine, baseDir
}

func TestDispatchSupportedFile(t *testing.T) {
	cfg := config.NewTestConfig()
	engine, baseDir := newTestEngine(t, cfg)

	src := filepath.Join(baseDir, "in", "photo.jpg")
	require.NoError(t, os.WriteFile(src, []byte("jpg content"), 0644))

	outcome := engine.Dispatch(src)

	assert.True(t, outcome.Moved)
	assert.True(t, outcome.Archived)
	assert.Equal(t, "images", outcome.Category)
	assert.NoError(t, outcome.Error)

	dest := filepath.Join(baseDir, "sorted", "images", "photo.jpg")
	assert.Equal(t, dest, outcome.DestinationPath)

	// Moved into the category folder
	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "jpg content", string(content))

	// Archived under today's date with the same filename
	archived := filepath.Join(baseDir, "archive", time.Now().Format("2006-01-02"), "photo.jpg")
	_, err = os.Stat(archived)
	assert.NoError(t, err)

	// Original no longer at the source path
	_, err = os.Stat(src)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDispatchUppercaseExtension(t *testing.T) {
	cfg := config.NewTestConfig()
	engine, baseDir := newTestEngine(t, cfg)

	src := filepath.Join(baseDir, "in", "HOLIDAY.JPG")
	require.NoError(t, os.WriteFile(src, []byte("jpg"), 0644))

	outcome := engine.Dispatch(src)

	assert.True(t, outcome.Moved)
	assert.Equal(t, "images", outcome.Category)
	_, err := os.Stat(filepath.Join(baseDir, "sorted", "images", "HOLIDAY.JPG"))
	assert.NoError(t, err)
}

func TestDispatchUnsupportedFile(t *testing.T) {
	cfg := config.NewTestConfig()
	engine, baseDir := newTestEngine(t, cfg)

	src := filepath.Join(baseDir, "in", "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("text"), 0644))

	outcome := engine.Dispatch(src)

	assert.True(t, outcome.Skipped)
	assert.Equal(t, types.SkipUnsupported, outcome.Reason)
	assert.False(t, outcome.Moved)
	assert.NoError(t, outcome.Error)

	// File left in place untouched
	_, err := os.Stat(src)
	assert.NoError(t, err)

	// Nothing appeared under sorted or archive
	for _, sub := range []string{"sorted", "archive"} {
		var found []string
		err := filepath.Walk(filepath.Join(baseDir, sub), func(path string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() {
				found = append(found, path)
			}
			return nil
		})
		require.NoError(t, err)
		assert.Empty(t, found)
	}
}

func TestDispatchDotfile(t *testing.T) {
	cfg := config.NewTestConfig()
	engine, baseDir := newTestEngine(t, cfg)

	// ".jpg" is a hidden file with no extension, not a jpg image
	src := filepath.Join(baseDir, "in", ".jpg")
	require.NoError(t, os.WriteFile(src, []byte("hidden"), 0644))

	outcome := engine.Dispatch(src)

	assert.True(t, outcome.Skipped)
	assert.Equal(t, types.SkipUnsupported, outcome.Reason)
	assert.False(t, outcome.Moved)

	_, err := os.Stat(src)
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(baseDir, "sorted", "images", ".jpg"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDispatchCollisions(t *testing.T) {
	cfg := config.NewTestConfig()
	engine, baseDir := newTestEngine(t, cfg)

	incoming := filepath.Join(baseDir, "in")
	imagesDir := filepath.Join(baseDir, "sorted", "images")

	for i, want := range []string{"photo.jpg", "photo 1.jpg", "photo 2.jpg"} {
		src := filepath.Join(incoming, "photo.jpg")
		require.NoError(t, os.WriteFile(src, []byte("round"), 0644))

		outcome := engine.Dispatch(src)
		require.True(t, outcome.Moved, "round %d", i)
		assert.Equal(t, filepath.Join(imagesDir, want), outcome.DestinationPath)
	}

	entries, err := os.ReadDir(imagesDir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestDispatchIgnorePattern(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.Extensions[".part"] = "partials"
	cfg.Ignore = []string{"*.part"}
	engine, baseDir := newTestEngine(t, cfg)

	src := filepath.Join(baseDir, "in", "download.part")
	require.NoError(t, os.WriteFile(src, []byte("partial"), 0644))

	outcome := engine.Dispatch(src)

	// Ignore filter wins over the extension table
	assert.True(t, outcome.Skipped)
	assert.Equal(t, types.SkipIgnored, outcome.Reason)
	_, err := os.Stat(src)
	assert.NoError(t, err)
}

func TestDispatchDryRun(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.Settings.DryRun = true
	engine, baseDir := newTestEngine(t, cfg)
	require.True(t, engine.IsDryRun())

	src := filepath.Join(baseDir, "in", "photo.jpg")
	require.NoError(t, os.WriteFile(src, []byte("jpg"), 0644))

	outcome := engine.Dispatch(src)

	assert.True(t, outcome.Skipped)
	assert.Equal(t, types.SkipDryRun, outcome.Reason)
	assert.Equal(t, filepath.Join(baseDir, "sorted", "images", "photo.jpg"), outcome.DestinationPath)

	// Nothing moved, nothing archived
	_, err := os.Stat(src)
	assert.NoError(t, err)
	_, err = os.Stat(outcome.DestinationPath)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDispatchMoveFailure(t *testing.T) {
	cfg := config.NewTestConfig()
	engine, baseDir := newTestEngine(t, cfg)

	// Source consumed before dispatch gets to it
	src := filepath.Join(baseDir, "in", "vanished.jpg")
	outcome := engine.Dispatch(src)

	require.Error(t, outcome.Error)
	assert.True(t, errors.IsMoveFailed(outcome.Error))
	assert.False(t, outcome.Moved)
	assert.False(t, outcome.Archived)

	// No archive copy for a failed move
	_, err := os.Stat(filepath.Join(baseDir, "archive", time.Now().Format("2006-01-02"), "vanished.jpg"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSweep(t *testing.T) {
	cfg := config.NewTestConfig()
	engine, baseDir := newTestEngine(t, cfg)

	incoming := filepath.Join(baseDir, "in")
	testutils.CreateTestFilesWithDefault(t, incoming)
	require.NoError(t, os.Mkdir(filepath.Join(incoming, "subdir"), 0755))

	outcomes, err := engine.Sweep()
	require.NoError(t, err)
	assert.Len(t, outcomes, 3, "subdirectories are not dispatched")

	moved := 0
	for _, outcome := range outcomes {
		if outcome.Moved {
			moved++
		}
	}
	assert.Equal(t, 2, moved, "jpg and png move, txt is unsupported")

	_, err = os.Stat(filepath.Join(incoming, "notes.txt"))
	assert.NoError(t, err)
}

func TestPrepareDirectoriesIdempotent(t *testing.T) {
	cfg := config.NewTestConfig()
	baseDir := t.TempDir()

	require.NoError(t, organize.PrepareDirectories(baseDir, cfg))
	require.NoError(t, organize.PrepareDirectories(baseDir, cfg))

	for _, dir := range []string{
		filepath.Join(baseDir, "in"),
		filepath.Join(baseDir, "sorted"),
		filepath.Join(baseDir, "sorted", "images"),
		filepath.Join(baseDir, "sorted", "documents"),
		filepath.Join(baseDir, "archive"),
	} {
		info, err := os.Stat(dir)
		require.NoError(t, err, "expected %s to exist", dir)
		assert.True(t, info.IsDir())
	}

	// One folder per distinct category, nothing duplicated
	entries, err := os.ReadDir(filepath.Join(baseDir, "sorted"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
