package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"filesort/internal/config"
	"filesort/internal/log"
	"filesort/internal/organize"
	"filesort/pkg/types"
)

// Status reports the current state of the monitor.
type Status struct {
	Running       bool      // Whether the monitor is currently active
	BaseDirectory string    // Operator-selected base directory
	LastActivity  time.Time // Time of last file activity
	FilesMoved    int       // Total files moved since start
}

// Monitor owns the configuration and the operator-chosen base directory,
// and manages the watch source lifecycle. Any caller can drive it: CLI,
// UI, or test harness.
type Monitor struct {
	cfg    *config.Config
	engine *organize.Engine

	// newSource builds the watch source for the incoming directory.
	// Swapped out in tests to inject synthetic events.
	newSource func(dir string) Source

	source       Source
	baseDir      string
	moved        int
	lastActivity time.Time
	callback     func(types.MoveOutcome)
	wg           sync.WaitGroup

	mutex   sync.RWMutex
	running bool
}

// NewMonitor creates a monitor for the given configuration. The source
// variant follows the watch settings: fsnotify by default, polling when
// configured.
func NewMonitor(cfg *config.Config) *Monitor {
	m := &Monitor{
		cfg:    cfg,
		engine: organize.New(cfg),
	}
	m.newSource = func(dir string) Source {
		if cfg.Watch.Poll {
			return NewPollingSource(dir, time.Duration(cfg.Watch.Interval)*time.Second)
		}
		return NewNotifySource(dir)
	}
	return m
}

// SelectDirectory chooses the base directory and prepares the folder
// tree underneath it. Must be called before Start. Safe to call again
// while stopped to re-point the monitor.
func (m *Monitor) SelectDirectory(path string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.running {
		return fmt.Errorf("cannot change base directory while monitoring")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", absPath)
	}

	if err := organize.PrepareDirectories(absPath, m.cfg); err != nil {
		return err
	}

	m.baseDir = absPath
	m.engine.SetBaseDirectory(absPath)
	log.LogWithFields(log.F("directory", absPath)).Info("Base directory selected")
	return nil
}

// Start constructs a watch source over the incoming directory and begins
// dispatching created files. It fails when no base directory has been
// selected or when the monitor is already running.
func (m *Monitor) Start() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.running {
		return fmt.Errorf("monitor already running")
	}
	if m.baseDir == "" {
		return fmt.Errorf("no base directory selected")
	}

	incoming := filepath.Join(m.baseDir, m.cfg.IncomingDirectory)
	source := m.newSource(incoming)
	if err := source.Start(); err != nil {
		return fmt.Errorf("error starting watch source: %w", err)
	}

	m.source = source
	m.running = true
	m.wg.Add(1)
	go m.dispatchLoop(source)

	log.LogWithFields(log.F("directory", incoming)).Info("Monitoring started")
	return nil
}

// dispatchLoop feeds created files to the engine until the source's
// events channel closes.
func (m *Monitor) dispatchLoop(source Source) {
	defer m.wg.Done()

	for ev := range source.Events() {
		if ev.Dir {
			continue
		}
		log.LogWithFields(log.F("file", ev.Path)).Info("New file detected")

		outcome := m.engine.Dispatch(ev.Path)

		m.mutex.Lock()
		m.lastActivity = ev.Time
		if outcome.Moved {
			m.moved++
		}
		cb := m.callback
		m.mutex.Unlock()

		if cb != nil {
			cb(outcome)
		}
	}
}

// Stop halts monitoring. It is synchronous: when it returns, the watch
// source has fully quiesced and no further dispatches will be started.
// An in-flight dispatch is allowed to complete. Stopping a stopped
// monitor is a no-op.
func (m *Monitor) Stop() {
	m.mutex.Lock()
	if !m.running {
		m.mutex.Unlock()
		return
	}
	m.running = false
	source := m.source
	m.mutex.Unlock()

	source.Stop()
	m.wg.Wait()

	log.Info("Monitoring stopped")
}

// SetCallback registers a function invoked with the outcome of every
// dispatched file.
func (m *Monitor) SetCallback(cb func(types.MoveOutcome)) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.callback = cb
}

// SetDryRun toggles dry-run mode on the underlying engine.
func (m *Monitor) SetDryRun(dryRun bool) {
	m.engine.SetDryRun(dryRun)
}

// Sweep dispatches files already present in the incoming directory.
func (m *Monitor) Sweep() ([]types.MoveOutcome, error) {
	m.mutex.RLock()
	baseDir := m.baseDir
	m.mutex.RUnlock()
	if baseDir == "" {
		return nil, fmt.Errorf("no base directory selected")
	}
	return m.engine.Sweep()
}

// Status returns the current status of the monitor.
func (m *Monitor) Status() Status {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return Status{
		Running:       m.running,
		BaseDirectory: m.baseDir,
		LastActivity:  m.lastActivity,
		FilesMoved:    m.moved,
	}
}
