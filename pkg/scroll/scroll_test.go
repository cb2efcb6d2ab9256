package scroll

import (
	"context"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// page is a fake container that can be scrolled and unmounted
type page struct {
	mu      sync.Mutex
	g       Geometry
	mounted bool
}

func newPage(top, height float64) *page {
	return &page{
		g:       Geometry{ViewportHeight: 800, ContainerTop: top, ContainerHeight: height},
		mounted: true,
	}
}

func (p *page) Measure() (Geometry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.g, p.mounted
}

func (p *page) scrollTo(y float64) {
	p.mu.Lock()
	p.g.ScrollY = y
	p.mu.Unlock()
}

func (p *page) unmount() {
	p.mu.Lock()
	p.mounted = false
	p.mu.Unlock()
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestWindowProgress(t *testing.T) {
	w := DefaultWindow()
	g := Geometry{ViewportHeight: 800, ContainerTop: 1000, ContainerHeight: 500}

	tests := []struct {
		scrollY float64
		want    float64
	}{
		{200, 0},
		{850, 0.5},
		{1500, 1},
		{70, -0.1},
		{1630, 1.1},
	}
	for _, tt := range tests {
		g.ScrollY = tt.scrollY
		assert.InDelta(t, tt.want, w.Progress(g), 1e-9, "scrollY=%v", tt.scrollY)
	}

	w.Clamp = true
	g.ScrollY = 70
	assert.Equal(t, 0.0, w.Progress(g))
	g.ScrollY = 1630
	assert.Equal(t, 1.0, w.Progress(g))
}

func TestWindowDegenerateSpan(t *testing.T) {
	w := Window{Start: Edge{0, 0}, End: Edge{0, 0}}
	g := Geometry{ViewportHeight: 800, ContainerTop: 1000, ContainerHeight: 500}

	g.ScrollY = 999
	assert.Equal(t, 0.0, w.Progress(g))
	g.ScrollY = 1000
	assert.Equal(t, 1.0, w.Progress(g))
	assert.False(t, math.IsNaN(w.Progress(Geometry{})))
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("start end", "end start")
	require.NoError(t, err)
	assert.Equal(t, DefaultWindow(), w)

	w, err = ParseWindow("top 70%", "bottom top")
	require.NoError(t, err)
	assert.InDelta(t, 0.7, w.Start.Viewport, 1e-9)
	assert.Equal(t, 1.0, w.End.Element)

	e, err := ParseEdge("center 0.25")
	require.NoError(t, err)
	assert.Equal(t, Edge{Element: 0.5, Viewport: 0.25}, e)

	_, err = ParseEdge("top")
	assert.ErrorIs(t, err, ErrInvalidEdge)
	_, err = ParseEdge("top sideways")
	assert.ErrorIs(t, err, ErrInvalidEdge)
}

func TestTrackerTick(t *testing.T) {
	p := newPage(1000, 500)
	tr := NewTracker(p, DefaultWindow())

	var got []float64
	cancel := tr.Subscribe(func(v float64) { got = append(got, v) })

	p.scrollTo(850)
	require.True(t, tr.Tick())
	p.scrollTo(200)
	require.True(t, tr.Tick())
	p.scrollTo(1500)
	require.True(t, tr.Tick())

	assert.InDeltaSlice(t, []float64{0.5, 0, 1}, got, 1e-9)
	assert.InDelta(t, 1, tr.Progress(), 1e-9)

	cancel()
	assert.Equal(t, 0, tr.Subscribers())
	require.True(t, tr.Tick())
	assert.Len(t, got, 3)
}

func TestTrackerUnmountRetainsValue(t *testing.T) {
	p := newPage(1000, 500)
	tr := NewTracker(p, DefaultWindow())

	calls := 0
	tr.Subscribe(func(float64) { calls++ })

	p.scrollTo(850)
	require.True(t, tr.Tick())

	p.unmount()
	p.scrollTo(1500)
	assert.False(t, tr.Tick())
	assert.True(t, tr.Detached())
	assert.Equal(t, 0, tr.Subscribers())
	assert.InDelta(t, 0.5, tr.Progress(), 1e-9)
	assert.Equal(t, 1, calls)

	// A detached tracker never calls back again.
	tr.Subscribe(func(float64) { calls++ })
	assert.False(t, tr.Tick())
	assert.Equal(t, 1, calls)
}

func TestTrackersAreIndependent(t *testing.T) {
	a := newPage(1000, 500)
	b := newPage(3000, 500)
	ta := NewTracker(a, DefaultWindow())
	tb := NewTracker(b, DefaultWindow())

	a.scrollTo(850)
	b.scrollTo(850)
	ta.Tick()
	tb.Tick()

	assert.InDelta(t, 0.5, ta.Progress(), 1e-9)
	assert.Less(t, tb.Progress(), 0.0)

	ta.Detach()
	assert.False(t, tb.Detached())
}

func TestDriverFrameRemovesUnmounted(t *testing.T) {
	d := NewDriver(time.Millisecond, quietLogger())
	a := newPage(1000, 500)
	b := newPage(2000, 500)
	d.Attach(NewTracker(a, DefaultWindow()))
	d.Attach(NewTracker(b, DefaultWindow()))

	d.Frame()
	assert.Equal(t, 2, d.Len())

	b.unmount()
	d.Frame()
	assert.Equal(t, 1, d.Len())
}

func TestDriverDetach(t *testing.T) {
	d := NewDriver(time.Millisecond, quietLogger())
	tr := NewTracker(newPage(0, 100), DefaultWindow())
	tr.Subscribe(func(float64) {})

	detach := d.Attach(tr)
	detach()

	assert.Equal(t, 0, d.Len())
	assert.True(t, tr.Detached())
	assert.Equal(t, 0, tr.Subscribers())
}

func TestDriverStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDriver(time.Millisecond, quietLogger())
	p := newPage(1000, 500)
	p.scrollTo(850)
	tr := NewTracker(p, DefaultWindow())

	var ticks atomic.Int64
	tr.Subscribe(func(float64) { ticks.Add(1) })
	d.Attach(tr)

	d.Start(context.Background())
	d.Start(context.Background())
	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)
	d.Stop()
	d.Stop()

	after := ticks.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, after, ticks.Load(), "no callbacks after Stop")
	assert.InDelta(t, 0.5, tr.Progress(), 1e-9)
}

func TestDriverStopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	d := NewDriver(time.Millisecond, quietLogger())
	d.Start(ctx)
	cancel()
	d.Stop()
	assert.False(t, d.Running())
}

func TestDriverRestartsAfterContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDriver(time.Millisecond, quietLogger())
	tr := NewTracker(newPage(1000, 500), DefaultWindow())
	var ticks atomic.Int64
	tr.Subscribe(func(float64) { ticks.Add(1) })
	d.Attach(tr)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	require.True(t, d.Running())
	cancel()
	require.Eventually(t, func() bool { return !d.Running() }, time.Second, time.Millisecond)

	d.Start(context.Background())
	defer d.Stop()
	require.True(t, d.Running(), "a cancelled driver can be started again")

	before := ticks.Load()
	require.Eventually(t, func() bool { return ticks.Load() >= before+3 }, time.Second, time.Millisecond)
}

func TestSmoother(t *testing.T) {
	s := NewSmoother(0, 0)
	assert.Equal(t, DefaultLerp, s.Lerp)

	s.SetTarget(100)
	first := s.Step()
	assert.InDelta(t, 12, first, 1e-9)

	for i := 0; i < 200 && !s.Settled(); i++ {
		s.Step()
	}
	assert.True(t, s.Settled())
	assert.Equal(t, 100.0, s.Position())
}
