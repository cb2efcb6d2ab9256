// Package transform maps scroll progress and a static layout descriptor to the
// live transform applied to one collage element.
//
// Map is a pure function: the per-element variation is drawn from a PCG
// generator seeded by (seed, index), so the same inputs always produce the
// same transform no matter how often or in which order elements are mapped.
package transform

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"art-showcase/pkg/models"
)

// Style limits: rotation stays within single-digit degrees and scale within
// low single-digit percent.
const (
	MaxRotationDelta = 10.0
	MaxScaleDelta    = 0.1
)

// Progress is extrapolated at most this far past either end of [0,1]
const (
	MinProgress = -1.0
	MaxProgress = 2.0
)

// ErrAmplitudeTooLarge is returned when an amplitude exceeds the style limits
var ErrAmplitudeTooLarge = errors.New("amplitude too large")

// Params holds the animation tuning shared by every element of a page
type Params struct {
	// TranslateY is the base vertical travel in px, applied as -amp..+amp.
	TranslateY float64 `json:"translateY" yaml:"translateY" toml:"translateY"`
	// Step adds Step*(index mod Cycle) px to the vertical travel.
	Step  float64 `json:"step" yaml:"step" toml:"step"`
	Cycle int     `json:"cycle" yaml:"cycle" toml:"cycle"`
	// TranslateX is the horizontal drift in px; its direction varies per element.
	TranslateX float64 `json:"translateX" yaml:"translateX" toml:"translateX"`
	// Jitter bounds the random extra travel added to each end of the vertical range.
	Jitter        float64 `json:"jitter" yaml:"jitter" toml:"jitter"`
	RotationDelta float64 `json:"rotationDelta" yaml:"rotationDelta" toml:"rotationDelta"`
	ScaleDelta    float64 `json:"scaleDelta" yaml:"scaleDelta" toml:"scaleDelta"`
	Ease          string  `json:"ease" yaml:"ease" toml:"ease"`
}

// DefaultParams returns the tuning of the parallax collage
func DefaultParams() Params {
	return Params{
		TranslateY:    40,
		Step:          4,
		Cycle:         5,
		TranslateX:    0,
		Jitter:        8,
		RotationDelta: 6,
		ScaleDelta:    0.04,
		Ease:          EaseNone,
	}
}

// Validate checks the parameters against the style limits
func (p Params) Validate() error {
	if math.Abs(p.RotationDelta) >= MaxRotationDelta {
		return fmt.Errorf("%w: rotation delta %g >= %g degrees", ErrAmplitudeTooLarge, p.RotationDelta, MaxRotationDelta)
	}
	if math.Abs(p.ScaleDelta) >= MaxScaleDelta {
		return fmt.Errorf("%w: scale delta %g >= %g", ErrAmplitudeTooLarge, p.ScaleDelta, MaxScaleDelta)
	}
	if p.Cycle < 0 {
		return fmt.Errorf("cycle must not be negative, got %d", p.Cycle)
	}
	if p.Jitter < 0 {
		return fmt.Errorf("jitter must not be negative, got %g", p.Jitter)
	}
	if _, err := LookupEase(p.Ease); err != nil {
		return err
	}
	return nil
}

// variation is the per-element randomness, fixed for a given (seed, index)
type variation struct {
	jitterFrom float64
	jitterTo   float64
	dirX       float64
	dirRot     float64
}

func newVariation(index int, seed uint64, jitter float64) variation {
	rng := rand.New(rand.NewPCG(seed, uint64(index)^0x9e3779b97f4a7c15))
	v := variation{
		jitterFrom: rng.Float64() * jitter,
		jitterTo:   rng.Float64() * jitter,
		dirX:       1,
		dirRot:     1,
	}
	if rng.IntN(2) == 1 {
		v.dirX = -1
	}
	if rng.IntN(2) == 1 {
		v.dirRot = -1
	}
	return v
}

// Map computes the transform of element index at the given progress.
// Translation is an offset from the descriptor's base position. Progress
// outside [0,1] is extrapolated up to [MinProgress, MaxProgress]; non-finite
// progress is read as 0.
func Map(progress float64, d models.LayoutDescriptor, index int, seed uint64, p Params) models.RenderTransform {
	if math.IsNaN(progress) || math.IsInf(progress, 0) {
		progress = 0
	}
	progress = min(max(progress, MinProgress), MaxProgress)
	ease, err := LookupEase(p.Ease)
	if err != nil {
		ease = linear
	}
	t := ease(progress)
	v := newVariation(index, seed, p.Jitter)

	amp := p.TranslateY
	if p.Cycle > 0 {
		amp += float64(absInt(index)%p.Cycle) * p.Step
	}

	return models.RenderTransform{
		TranslateX: lerp(-p.TranslateX, p.TranslateX, t) * v.dirX,
		TranslateY: lerp(-(amp + v.jitterFrom), amp+v.jitterTo, t),
		Rotation:   d.Rotation + lerp(-p.RotationDelta, p.RotationDelta, t)*v.dirRot,
		Scale:      d.BaseScale() * lerp(1-p.ScaleDelta, 1+p.ScaleDelta, t),
		ZIndex:     d.StackOrder,
	}
}

// Mapper binds a seed and parameters for mapping whole sections
type Mapper struct {
	Params Params
	Seed   uint64
}

// Section maps every descriptor of a section at the same progress
func (m Mapper) Section(progress float64, descriptors []models.LayoutDescriptor) []models.RenderTransform {
	out := make([]models.RenderTransform, len(descriptors))
	for i, d := range descriptors {
		out[i] = Map(progress, d, i, m.Seed, m.Params)
	}
	return out
}

// Frame is the set of transforms at one sampled progress value
type Frame struct {
	Progress   float64                  `json:"progress"`
	Transforms []models.RenderTransform `json:"transforms"`
}

// Frames samples the section at steps+1 evenly spaced progress values in [0,1]
func (m Mapper) Frames(descriptors []models.LayoutDescriptor, steps int) []Frame {
	if steps < 1 {
		steps = 1
	}
	frames := make([]Frame, steps+1)
	for i := range frames {
		progress := float64(i) / float64(steps)
		frames[i] = Frame{Progress: progress, Transforms: m.Section(progress, descriptors)}
	}
	return frames
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
