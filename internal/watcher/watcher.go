// Package watcher delivers debounced, classified filesystem change events for
// the container runtime's data directory and the system resolver directory.
package watcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/container-kit/containerkit/internal/log"
)

// DefaultResolverDir is where macOS reads per-domain resolver files.
const DefaultResolverDir = "/etc/resolver"

// Callback receives classified events. A returned error (or a panic) is
// logged and does not end the subscription.
type Callback func(Event) error

// Unwatch stops a subscription and waits for its event loop to exit.
// Calling it more than once is a no-op. It must not be called from the
// subscription's own callback.
type Unwatch func() error

// Options tune a single subscription.
type Options struct {
	// Debounce is the coalescing window opened by the first event of a
	// burst. Zero delivers every event immediately.
	Debounce time.Duration
	// Recursive also watches subdirectories, including ones created later.
	Recursive bool
}

// Manager scopes watches to the runtime data root and the resolver directory.
type Manager struct {
	dataDir     string
	resolverDir string
}

// Option configures a Manager.
type Option func(*Manager)

// WithResolverDir overrides DefaultResolverDir.
func WithResolverDir(dir string) Option {
	return func(m *Manager) {
		if dir != "" {
			m.resolverDir = dir
		}
	}
}

// NewManager creates a Manager rooted at dataDir.
func NewManager(dataDir string, opts ...Option) *Manager {
	m := &Manager{dataDir: dataDir, resolverDir: DefaultResolverDir}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DataDir returns the data root.
func (m *Manager) DataDir() string { return m.dataDir }

// ResolverDir returns the resolver directory.
func (m *Manager) ResolverDir() string { return m.resolverDir }

// WatchDataDir watches rel, a file or directory below the data root.
func (m *Manager) WatchDataDir(rel string, cb Callback, opts Options) (Unwatch, error) {
	return m.Watch(filepath.Join(m.dataDir, rel), cb, opts)
}

// WatchResolverDir watches the resolver directory.
func (m *Manager) WatchResolverDir(cb Callback, opts Options) (Unwatch, error) {
	return m.Watch(m.resolverDir, cb, opts)
}

// Watch subscribes cb to changes of path. A file is watched through its
// parent directory so that editors replacing it atomically are still seen;
// such a replacement is delivered as a data modification of the file.
// Setup failures are logged and returned.
func (m *Manager) Watch(path string, cb Callback, opts Options) (Unwatch, error) {
	unwatch, err := start(path, cb, opts)
	if err != nil {
		log.ErrorErr(log.CatWatch, "failed to create watcher", err, "path", path)
		return nil, err
	}
	log.Debug(log.CatWatch, "watching", "path", path, "debounce", opts.Debounce, "recursive", opts.Recursive)
	return unwatch, nil
}

type subscription struct {
	fsw       *fsnotify.Watcher
	path      string
	fileName  string // set when watching a single file
	recursive bool
	debounce  time.Duration
	cb        Callback

	done   chan struct{}
	exited chan struct{}
}

func start(path string, cb Callback, opts Options) (Unwatch, error) {
	if cb == nil {
		return nil, errors.New("watch callback is nil")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	s := &subscription{
		fsw:       fsw,
		path:      path,
		recursive: opts.Recursive && info.IsDir(),
		debounce:  max(opts.Debounce, 0),
		cb:        cb,
		done:      make(chan struct{}),
		exited:    make(chan struct{}),
	}

	switch {
	case !info.IsDir():
		s.fileName = filepath.Base(path)
		err = fsw.Add(filepath.Dir(path))
	case s.recursive:
		err = s.addTree(path)
	default:
		err = fsw.Add(path)
	}
	if err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}

	go s.loop()

	var once sync.Once
	var closeErr error
	return func() error {
		once.Do(func() {
			close(s.done)
			closeErr = s.fsw.Close()
			<-s.exited
			log.Debug(log.CatWatch, "unwatched", "path", s.path)
		})
		return closeErr
	}, nil
}

// addTree adds root and every directory below it.
func (s *subscription) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return s.fsw.Add(p)
	})
}

// classify converts raw. For a single-file subscription, a create of the
// watched name means the file was replaced (write to a temp file, rename
// over the original) and is reported as a data modification.
func (s *subscription) classify(raw fsnotify.Event) Event {
	ev := FromFsnotify(raw)
	if s.fileName != "" && ev.Kind == KindCreate {
		ev.Kind, ev.Modify = KindModify, ModifyData
	}
	return ev
}

func (s *subscription) relevant(ev fsnotify.Event) bool {
	return s.fileName == "" || filepath.Base(ev.Name) == s.fileName
}

type eventKey struct {
	kind   Kind
	modify ModifyKind
	path   string
}

// loop owns the debounce window. The window is not extended by later events:
// it closes debounce after the first one and flushes everything collected.
func (s *subscription) loop() {
	defer close(s.exited)

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending []Event
		seen    = map[eventKey]bool{}
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case raw, ok := <-s.fsw.Events:
			if !ok {
				return
			}
			if !s.relevant(raw) {
				continue
			}
			if s.recursive && raw.Has(fsnotify.Create) {
				s.watchNewDir(raw.Name)
			}

			ev := s.classify(raw)
			if s.debounce == 0 {
				s.deliver(ev)
				continue
			}

			key := eventKey{kind: ev.Kind, modify: ev.Modify, path: raw.Name}
			if !seen[key] {
				seen[key] = true
				pending = append(pending, ev)
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
				timerC = timer.C
			}

		case <-timerC:
			batch := pending
			pending, seen = nil, map[eventKey]bool{}
			timer, timerC = nil, nil
			for _, ev := range batch {
				select {
				case <-s.done:
					return
				default:
				}
				s.deliver(ev)
			}

		case err, ok := <-s.fsw.Errors:
			if !ok {
				return
			}
			log.Warn(log.CatWatch, "watch error", "path", s.path, "error", err)

		case <-s.done:
			return
		}
	}
}

func (s *subscription) watchNewDir(p string) {
	info, err := os.Stat(p)
	if err != nil || !info.IsDir() {
		return
	}
	if err := s.addTree(p); err != nil {
		log.Warn(log.CatWatch, "failed to watch new directory", "path", p, "error", err)
	}
}

// deliver runs the callback, recovering errors and panics.
func (s *subscription) deliver(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(log.CatWatch, "watch callback panicked", "path", s.path, "event", ev.String(), "panic", r)
		}
	}()
	if err := s.cb(ev); err != nil {
		log.ErrorErr(log.CatWatch, "watch callback failed", err, "path", s.path, "event", ev.String())
	}
}
