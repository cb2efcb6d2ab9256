package scroll

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultFrameInterval is roughly one display frame at 60Hz
const DefaultFrameInterval = 16 * time.Millisecond

// Driver is the frame loop that ticks every attached tracker.
// It is an owned resource: Start begins ticking and Stop ends it and waits
// for the loop goroutine to exit.
type Driver struct {
	mu       sync.Mutex
	interval time.Duration
	trackers []*Tracker
	logger   *log.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewDriver creates a driver ticking at interval. A nil logger uses log.Default().
func NewDriver(interval time.Duration, logger *log.Logger) *Driver {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Driver{interval: interval, logger: logger}
}

// Attach adds t to the frame loop. The returned detach func removes it and
// drops its subscribers.
func (d *Driver) Attach(t *Tracker) (detach func()) {
	d.mu.Lock()
	d.trackers = append(d.trackers, t)
	d.mu.Unlock()

	return func() {
		d.remove(t)
		t.Detach()
	}
}

func (d *Driver) remove(t *Tracker) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.trackers = slices.DeleteFunc(d.trackers, func(x *Tracker) bool { return x == t })
}

// Len returns the number of attached trackers
func (d *Driver) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.trackers)
}

// Frame ticks every attached tracker once and removes detached ones
func (d *Driver) Frame() {
	d.mu.Lock()
	trackers := slices.Clone(d.trackers)
	d.mu.Unlock()

	var gone []*Tracker
	for _, t := range trackers {
		if !t.Tick() {
			gone = append(gone, t)
		}
	}
	for _, t := range gone {
		d.remove(t)
	}
	if len(gone) > 0 {
		d.logger.Debug("trackers detached", "count", len(gone))
	}
}

// Running reports whether the frame loop is ticking
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// Start runs the frame loop until ctx is cancelled or Stop is called.
// It is non-blocking; calling Start on a running driver does nothing.
// A driver whose context was cancelled can be started again.
func (d *Driver) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	stopCh, doneCh := d.stopCh, d.doneCh
	d.mu.Unlock()

	d.logger.Debug("frame driver started", "interval", d.interval)
	go d.run(ctx, stopCh, doneCh)
}

func (d *Driver) run(ctx context.Context, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.mu.Lock()
			if d.stopCh == stopCh {
				d.running = false
			}
			d.mu.Unlock()
			d.logger.Debug("frame driver cancelled", "err", ctx.Err())
			return
		case <-stopCh:
			return
		case <-ticker.C:
			d.Frame()
		}
	}
}

// Stop ends the frame loop and waits for it to exit.
// Attached trackers keep their last progress value.
func (d *Driver) Stop() {
	d.mu.Lock()
	if !d.running {
		doneCh := d.doneCh
		d.mu.Unlock()
		if doneCh != nil {
			<-doneCh
		}
		return
	}
	d.running = false
	stopCh, doneCh := d.stopCh, d.doneCh
	d.mu.Unlock()

	close(stopCh)
	<-doneCh
	d.logger.Debug("frame driver stopped")
}
