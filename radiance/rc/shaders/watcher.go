package shaders

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gekko3d/gekko2d/radiance/rc/core"
)

// DefaultPollInterval matches the development watcher cadence.
const DefaultPollInterval = 50 * time.Millisecond

// Change is a shader file that was modified on disk.
type Change struct {
	Kind core.PassKind
	Code string
}

// Watcher polls the shader directory for modified files.
type Watcher struct {
	dir      string
	interval time.Duration
	now      func() time.Time

	lastPoll time.Time
	mtimes   map[core.PassKind]time.Time
}

// NewWatcher records the current modification times as the baseline so the
// first Poll only reports files edited afterwards.
func NewWatcher(dir string, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	w := &Watcher{
		dir:      dir,
		interval: interval,
		now:      time.Now,
		mtimes:   make(map[core.PassKind]time.Time),
	}
	for _, kind := range Kinds {
		if info, err := os.Stat(w.path(kind)); err == nil {
			w.mtimes[kind] = info.ModTime()
		}
	}
	return w
}

func (w *Watcher) Dir() string {
	return w.dir
}

func (w *Watcher) path(kind core.PassKind) string {
	return filepath.Join(w.dir, FileName(kind))
}

// Poll returns the shaders changed since the previous call. Calls made sooner
// than the poll interval return nothing.
func (w *Watcher) Poll() ([]Change, error) {
	now := w.now()
	if !w.lastPoll.IsZero() && now.Sub(w.lastPoll) < w.interval {
		return nil, nil
	}
	w.lastPoll = now

	var changes []Change
	for _, kind := range Kinds {
		info, err := os.Stat(w.path(kind))
		if err != nil {
			continue
		}
		if prev, ok := w.mtimes[kind]; ok && info.ModTime().Equal(prev) {
			continue
		}

		data, err := os.ReadFile(w.path(kind))
		if err != nil {
			return changes, fmt.Errorf("reload %s shader: %w", kind, err)
		}
		w.mtimes[kind] = info.ModTime()
		changes = append(changes, Change{Kind: kind, Code: string(data)})
	}
	return changes, nil
}
