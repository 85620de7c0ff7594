package watch

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultDebounce is used when no delay is configured
const DefaultDebounce = 200 * time.Millisecond

// Debouncer collects paths and fires once per quiet period
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	queued map[string]struct{}
	onFire func(paths []string)
}

// NewDebouncer returns a debouncer that waits delay after the last push
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{
		delay:  delay,
		queued: map[string]struct{}{},
	}
}

// OnFire sets the callback that receives the sorted, de-duplicated paths
func (d *Debouncer) OnFire(fn func(paths []string)) {
	d.mu.Lock()
	d.onFire = fn
	d.mu.Unlock()
}

// Push queues a path and restarts the quiet period
func (d *Debouncer) Push(path string) {
	path = strings.TrimSpace(path)
	if path == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.queued[path] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// Stop cancels a pending fire and drops queued paths
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.queued = map[string]struct{}{}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	queued := d.queued
	d.queued = map[string]struct{}{}
	fn := d.onFire
	d.mu.Unlock()

	if fn == nil || len(queued) == 0 {
		return
	}

	paths := make([]string, 0, len(queued))
	for p := range queued {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	fn(paths)
}
