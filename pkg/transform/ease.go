package transform

import (
	"fmt"
	"math"
)

// Ease maps linear progress to eased progress
type Ease func(t float64) float64

// Easing names accepted in configuration
const (
	EaseNone       = "none"
	EasePower1Out  = "power1.out"
	EasePower2Out  = "power2.out"
	EaseInOutCubic = "inOutCubic"
)

var eases = map[string]Ease{
	EaseNone:       linear,
	"":             linear,
	EasePower1Out:  func(t float64) float64 { return 1 - (1-t)*(1-t) },
	EasePower2Out:  func(t float64) float64 { return 1 - (1-t)*(1-t)*(1-t) },
	EaseInOutCubic: easeInOutCubic,
}

// LookupEase returns the easing function registered under name
func LookupEase(name string) (Ease, error) {
	e, ok := eases[name]
	if !ok {
		return nil, fmt.Errorf("unknown ease %q", name)
	}
	return e, nil
}

func linear(t float64) float64 {
	return t
}

// easeInOutCubic applies smooth easing
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
