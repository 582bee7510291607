package watch

import (
	"fmt"
	"os"
	"sync"
	"time"

	"filesort/internal/log"

	"github.com/fsnotify/fsnotify"
)

// NotifySource watches a single directory for file creation using
// fsnotify. Subdirectories are not watched. Callers must consume the
// Events channel until it is closed.
type NotifySource struct {
	dir       string
	fsWatcher *fsnotify.Watcher
	queue     *eventQueue
	events    chan Event
	wg        sync.WaitGroup

	mutex   sync.Mutex
	running bool
}

// NewNotifySource creates a source for the given directory. The
// underlying watcher is not created until Start.
func NewNotifySource(dir string) *NotifySource {
	return &NotifySource{dir: dir}
}

// Events returns the channel that delivers creation events. It is nil
// before the first Start and closed after Stop.
func (s *NotifySource) Events() <-chan Event {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.events
}

// Start begins watching. Starting an already-running source is an error.
func (s *NotifySource) Start() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.running {
		return fmt.Errorf("watch source already running")
	}

	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(s.dir); err != nil {
		fsWatcher.Close()
		return fmt.Errorf("failed to add directory %s to watcher: %w", s.dir, err)
	}

	s.fsWatcher = fsWatcher
	s.queue = newEventQueue()
	s.events = make(chan Event)
	s.running = true

	s.wg.Add(2)
	go s.readLoop()
	go s.deliverLoop()

	log.LogWithFields(log.F("directory", s.dir)).Info("Watching directory")
	return nil
}

// readLoop turns fsnotify notifications into queued events. It exits
// when the underlying watcher is closed.
func (s *NotifySource) readLoop() {
	defer s.wg.Done()

	for {
		select {
		case event, ok := <-s.fsWatcher.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Create) {
				continue
			}
			// The file may already be gone again; a stat failure
			// just means there is nothing left to dispatch.
			info, err := os.Stat(event.Name)
			if err != nil {
				if !os.IsNotExist(err) {
					log.LogWithFields(log.F("file", event.Name), log.F("error", err)).Error("Error stating file")
				}
				continue
			}
			s.queue.push(Event{
				Path: event.Name,
				Dir:  info.IsDir(),
				Time: time.Now(),
			})

		case err, ok := <-s.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")
		}
	}
}

// deliverLoop drains the queue into the events channel, closing the
// channel once the queue is closed.
func (s *NotifySource) deliverLoop() {
	defer s.wg.Done()

	for {
		ev, ok := s.queue.pop()
		if !ok {
			close(s.events)
			return
		}
		s.events <- ev
	}
}

// Stop halts watching and blocks until both loops have quiesced and the
// events channel is closed. Queued events that have not been delivered
// are discarded. Stopping a stopped source is a no-op.
func (s *NotifySource) Stop() {
	s.mutex.Lock()
	if !s.running {
		s.mutex.Unlock()
		return
	}
	s.running = false
	s.mutex.Unlock()

	if err := s.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
	}
	s.queue.close()
	s.wg.Wait()

	log.Info("Watch source stopped")
}

// IsRunning returns whether the source is currently active.
func (s *NotifySource) IsRunning() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.running
}
