package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollingSourceDetectsNewFile(t *testing.T) {
	tempDir := t.TempDir()

	// Pre-existing files belong to the initial snapshot, not the stream
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "existing.txt"), []byte("old"), 0644))

	s := NewPollingSource(tempDir, 50*time.Millisecond)
	require.NoError(t, s.Start())
	defer s.Stop()

	newFile := filepath.Join(tempDir, "fresh.jpg")
	require.NoError(t, os.WriteFile(newFile, []byte("new"), 0644))

	select {
	case event, ok := <-s.Events():
		require.True(t, ok)
		assert.Equal(t, newFile, event.Path)
		assert.False(t, event.Dir)
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for polled create event")
	}
}

func TestPollingSourceReportsEachFileOnce(t *testing.T) {
	tempDir := t.TempDir()

	s := NewPollingSource(tempDir, 20*time.Millisecond)
	require.NoError(t, s.Start())
	defer s.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "once.txt"), []byte("x"), 0644))

	select {
	case <-s.Events():
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for first event")
	}

	// Several more scan intervals pass without re-reporting
	select {
	case ev := <-s.Events():
		t.Fatalf("file reported twice: %s", ev.Path)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestPollingSourceRecreatedFile(t *testing.T) {
	tempDir := t.TempDir()

	s := NewPollingSource(tempDir, 20*time.Millisecond)
	require.NoError(t, s.Start())
	defer s.Stop()

	path := filepath.Join(tempDir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("first"), 0644))

	select {
	case ev := <-s.Events():
		assert.Equal(t, path, ev.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for first event")
	}

	// The dispatcher normally moves the file out; a later drop of the
	// same filename must be reported again.
	require.NoError(t, os.Remove(path))
	time.Sleep(200 * time.Millisecond) // let a scan observe the absence

	require.NoError(t, os.WriteFile(path, []byte("second"), 0644))

	select {
	case ev := <-s.Events():
		assert.Equal(t, path, ev.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for re-created file event")
	}
}

func TestPollingSourceStartTwice(t *testing.T) {
	s := NewPollingSource(t.TempDir(), 50*time.Millisecond)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Error(t, s.Start())
}

func TestPollingSourceStopQuiesces(t *testing.T) {
	tempDir := t.TempDir()
	watched := filepath.Join(tempDir, "in")
	require.NoError(t, os.Mkdir(watched, 0755))

	s := NewPollingSource(watched, 20*time.Millisecond)
	require.NoError(t, s.Start())

	done := make(chan struct{})
	go func() {
		for range s.Events() {
		}
		close(done)
	}()

	s.Stop()
	assert.False(t, s.IsRunning())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Events channel was not closed after Stop")
	}

	require.NoError(t, os.RemoveAll(watched))
}
