package scroll

import "math"

// DefaultLerp is the per-frame catch-up factor of smoothed scrolling
const DefaultLerp = 0.12

// Smoother eases a raw scroll position toward its target a fraction per frame
type Smoother struct {
	Lerp    float64
	current float64
	target  float64
}

// NewSmoother creates a smoother starting at position
func NewSmoother(lerp, position float64) *Smoother {
	if lerp <= 0 || lerp > 1 {
		lerp = DefaultLerp
	}
	return &Smoother{Lerp: lerp, current: position, target: position}
}

// SetTarget moves the position the smoother is heading to
func (s *Smoother) SetTarget(target float64) {
	s.target = target
}

// Target returns the position the smoother is heading to
func (s *Smoother) Target() float64 {
	return s.target
}

// Step advances one frame and returns the new position.
// The position snaps to the target once within half a pixel.
func (s *Smoother) Step() float64 {
	s.current += (s.target - s.current) * s.Lerp
	if math.Abs(s.target-s.current) < 0.5 {
		s.current = s.target
	}
	return s.current
}

// Position returns the current smoothed position
func (s *Smoother) Position() float64 {
	return s.current
}

// Settled reports whether the position has reached the target
func (s *Smoother) Settled() bool {
	return s.current == s.target
}
