package presets

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long the watcher gathers file events before reporting them.
// Editors often write a file in several steps.
const settle = 100 * time.Millisecond

type ChangeKind int

const (
	ChangeSpec ChangeKind = iota
	ChangeScript
)

func (k ChangeKind) String() string {
	if k == ChangeScript {
		return "script"
	}
	return "spec"
}

// Change is one preset file that was written, created or removed.
type Change struct {
	Path    string
	Kind    ChangeKind
	Removed bool
}

// Watcher reports preset file changes under a set of directories.
type Watcher struct {
	fs      *fsnotify.Watcher
	changes chan Change
	errs    chan error
	quit    chan struct{}
	exited  chan struct{}
	once    sync.Once
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fs:      fw,
		changes: make(chan Change, 16),
		errs:    make(chan error, 1),
		quit:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// WatchCatalog watches the catalog's directory and its scripts directory
// when one exists.
func WatchCatalog(c *Catalog) (*Watcher, error) {
	dirs := []string{c.Dir()}
	scripts := filepath.Join(c.Dir(), "scripts")
	if info, err := os.Stat(scripts); err == nil && info.IsDir() {
		dirs = append(dirs, scripts)
	}
	return NewWatcher(dirs...)
}

// Changes is closed after Close.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

func (w *Watcher) Errors() <-chan error {
	return w.errs
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.quit)
		err = w.fs.Close()
		<-w.exited
		close(w.changes)
		close(w.errs)
	})
	return err
}

func (w *Watcher) loop() {
	defer close(w.exited)

	pending := make(map[string]Change)
	var flush <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			c, ok := classify(ev)
			if !ok {
				continue
			}
			pending[c.Path] = c
			if flush == nil {
				flush = time.After(settle)
			}

		case <-flush:
			flush = nil
			if !w.report(pending) {
				return
			}
			pending = make(map[string]Change)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}

		case <-w.quit:
			return
		}
	}
}

// report sends pending changes in path order. It returns false once the
// watcher is closing.
func (w *Watcher) report(pending map[string]Change) bool {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		select {
		case w.changes <- pending[p]:
		case <-w.quit:
			return false
		}
	}
	return true
}

func classify(ev fsnotify.Event) (Change, bool) {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return Change{}, false
	}
	c := Change{Path: ev.Name, Removed: ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0}
	switch strings.ToLower(filepath.Ext(ev.Name)) {
	case ".yaml", ".yml":
		c.Kind = ChangeSpec
	case ".tengo":
		c.Kind = ChangeScript
	default:
		return Change{}, false
	}
	return c, true
}
