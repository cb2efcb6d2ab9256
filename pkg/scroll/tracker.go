package scroll

import "sync"

// Measurer reports the current geometry of a tracked container.
// mounted is false once the container has been removed.
type Measurer interface {
	Measure() (g Geometry, mounted bool)
}

// MeasureFunc adapts a function to the Measurer interface
type MeasureFunc func() (Geometry, bool)

// Measure calls f
func (f MeasureFunc) Measure() (Geometry, bool) {
	return f()
}

// Tracker keeps the scroll progress of one container.
// Trackers share no state; many elements may subscribe to the same tracker.
type Tracker struct {
	mu       sync.Mutex
	window   Window
	measurer Measurer
	value    float64
	subs     map[int]func(float64)
	nextID   int
	detached bool
}

// NewTracker creates a tracker for the container measured by m
func NewTracker(m Measurer, w Window) *Tracker {
	return &Tracker{
		window:   w,
		measurer: m,
		subs:     make(map[int]func(float64)),
	}
}

// Progress returns the last computed progress
func (t *Tracker) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

// Tick re-measures the container and notifies subscribers.
// It returns false once the tracker is detached; a container that reports
// itself unmounted detaches the tracker and keeps the last value.
func (t *Tracker) Tick() bool {
	t.mu.Lock()
	if t.detached {
		t.mu.Unlock()
		return false
	}
	g, mounted := t.measurer.Measure()
	if !mounted {
		t.detachLocked()
		t.mu.Unlock()
		return false
	}
	t.value = t.window.Progress(g)
	value := t.value
	subs := make([]func(float64), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	for _, fn := range subs {
		fn(value)
	}
	return true
}

// Subscribe registers fn to receive every new progress value.
// The returned cancel func removes it; subscribing to a detached tracker is a no-op.
func (t *Tracker) Subscribe(fn func(float64)) (cancel func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.detached {
		return func() {}
	}
	id := t.nextID
	t.nextID++
	t.subs[id] = fn
	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

// Detach drops all subscribers and stops further updates
func (t *Tracker) Detach() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.detachLocked()
}

func (t *Tracker) detachLocked() {
	t.detached = true
	clear(t.subs)
}

// Detached reports whether the tracker has stopped updating
func (t *Tracker) Detached() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.detached
}

// Subscribers returns the number of registered subscribers
func (t *Tracker) Subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}
