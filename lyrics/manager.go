package lyrics

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lrcshow-cli/lrcshow/log"
	"github.com/lrcshow-cli/lrcshow/lrc"
	"github.com/samber/mo"
)

const debounce = 100 * time.Millisecond

// Changed reports the lyrics of the watched path. Lyrics is None when there
// is no path, the file does not exist or it does not parse.
type Changed struct {
	Path   mo.Option[string]
	Lyrics mo.Option[*lrc.Lyrics]
}

// Manager loads the lyrics file at the requested path and reloads it whenever
// it is written, created, removed or renamed.
type Manager struct {
	watcher *fsnotify.Watcher
	events  chan Changed
	reloads chan struct{}
	closeCh chan struct{}
	once    sync.Once

	mu   sync.Mutex
	path mo.Option[string]
	dir  string
}

func NewManager() (*Manager, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Manager{
		watcher: watcher,
		events:  make(chan Changed, 64),
		reloads: make(chan struct{}, 1),
		closeCh: make(chan struct{}),
	}, nil
}

// Events returns the channel lyrics changes are delivered on.
// It is closed when Run returns.
func (m *Manager) Events() <-chan Changed {
	return m.events
}

// ChangePath moves the watch to path and schedules a reload.
// A directory that cannot be watched only costs reactivity to later edits.
func (m *Manager) ChangePath(path mo.Option[string]) {
	m.mu.Lock()

	dir := ""
	if p, ok := path.Get(); ok {
		p = filepath.Clean(p)
		path = mo.Some(p)
		dir = filepath.Dir(p)
	}

	if dir != m.dir {
		if m.dir != "" {
			if err := m.watcher.Remove(m.dir); err != nil {
				log.Debugf("lyrics: unwatch %s: %s", m.dir, err)
			}
		}

		m.dir = ""
		if dir != "" {
			if err := m.watcher.Add(dir); err != nil {
				log.Warnf("lyrics: watch %s: %s", dir, err)
			} else {
				m.dir = dir
			}
		}
	}

	m.path = path
	m.mu.Unlock()

	log.Infof("lyrics: path changed to %s", path.OrElse("<none>"))

	select {
	case m.reloads <- struct{}{}:
	default:
	}
}

func (m *Manager) currentPath() mo.Option[string] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.path
}

// Run delivers lyrics changes until ctx is done or the manager is closed.
func (m *Manager) Run(ctx context.Context) {
	defer close(m.events)

	// settle fires once no matching event arrived for the debounce period
	settle := time.NewTimer(debounce)
	settle.Stop()
	defer settle.Stop()

	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.closeCh:
			return
		case <-m.reloads:
			settle.Stop()
			pending = nil
			if !m.send(ctx, m.load()) {
				return
			}
		case <-pending:
			pending = nil
			if !m.send(ctx, m.load()) {
				return
			}
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if path, ok := m.currentPath().Get(); !ok || filepath.Clean(event.Name) != path {
				continue
			}

			log.Tracef("lyrics: %s", event)

			// editors write in bursts, reload once they are done
			settle.Reset(debounce)
			pending = settle.C
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("lyrics: watcher: %s", err)
		}
	}
}

func (m *Manager) send(ctx context.Context, changed Changed) bool {
	select {
	case m.events <- changed:
		return true
	case <-ctx.Done():
		return false
	case <-m.closeCh:
		return false
	}
}

func (m *Manager) load() Changed {
	path, ok := m.currentPath().Get()
	if !ok {
		return Changed{Path: mo.None[string](), Lyrics: mo.None[*lrc.Lyrics]()}
	}

	changed := Changed{Path: mo.Some(path), Lyrics: mo.None[*lrc.Lyrics]()}

	lyrics, err := lrc.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Debugf("lyrics: %s does not exist", path)
	case err != nil:
		log.Errorf("lyrics: %s", err)
	default:
		log.Infof("lyrics: loaded %s, %d lines", path, len(lyrics.Lines))
		changed.Lyrics = mo.Some(lyrics)
	}

	return changed
}

// Close stops watching. Run returns shortly after.
func (m *Manager) Close() error {
	var err error
	m.once.Do(func() {
		close(m.closeCh)
		err = m.watcher.Close()
	})
	return err
}
