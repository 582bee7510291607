package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"filesort/internal/log"
)

// PollingSource is a fallback Source for platforms or filesystems where
// native notification is unavailable. It lists the directory on a fixed
// interval and reports entries that were not present on the previous
// scan. Entries existing before Start are treated as already seen. A
// name that disappears (the dispatcher moves routed files out) and is
// later re-created is reported again.
type PollingSource struct {
	dir      string
	interval time.Duration
	seen     map[string]bool
	queue    *eventQueue
	events   chan Event
	stop     chan struct{}
	wg       sync.WaitGroup

	mutex   sync.Mutex
	running bool
}

// NewPollingSource creates a polling source over dir.
func NewPollingSource(dir string, interval time.Duration) *PollingSource {
	return &PollingSource{dir: dir, interval: interval}
}

// Events returns the channel that delivers creation events.
func (s *PollingSource) Events() <-chan Event {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.events
}

// Start takes the initial directory snapshot and begins scanning.
func (s *PollingSource) Start() error {
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

	s.seen = make(map[string]bool)
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("error reading directory: %w", err)
	}
	for _, entry := range entries {
		s.seen[entry.Name()] = true
	}

	s.queue = newEventQueue()
	s.events = make(chan Event)
	s.stop = make(chan struct{})
	s.running = true

	s.wg.Add(2)
	go s.scanLoop()
	go s.deliverLoop()

	log.LogWithFields(log.F("directory", s.dir), log.F("interval", s.interval)).Info("Polling directory")
	return nil
}

func (s *PollingSource) scanLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.scan()
		case <-s.stop:
			return
		}
	}
}

func (s *PollingSource) scan() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		log.LogWithFields(log.F("directory", s.dir), log.F("error", err)).Error("Error scanning directory")
		return
	}

	// Replace the snapshot wholesale so names that left the directory
	// are forgotten and re-creations get reported again.
	current := make(map[string]bool, len(entries))
	for _, entry := range entries {
		current[entry.Name()] = true
		if s.seen[entry.Name()] {
			continue
		}
		s.queue.push(Event{
			Path: filepath.Join(s.dir, entry.Name()),
			Dir:  entry.IsDir(),
			Time: time.Now(),
		})
	}
	s.seen = current
}

func (s *PollingSource) deliverLoop() {
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

// Stop halts scanning and blocks until both loops have quiesced and the
// events channel is closed. Stopping a stopped source is a no-op.
func (s *PollingSource) Stop() {
	s.mutex.Lock()
	if !s.running {
		s.mutex.Unlock()
		return
	}
	s.running = false
	s.mutex.Unlock()

	close(s.stop)
	s.queue.close()
	s.wg.Wait()

	log.Info("Watch source stopped")
}

// IsRunning returns whether the source is currently active.
func (s *PollingSource) IsRunning() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.running
}
