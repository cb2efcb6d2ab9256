// Package scroll computes how far a container has travelled through the
// viewport and keeps that progress current while the container is mounted.
//
// A Window names the two alignments that bound the traversal, using the same
// vocabulary as scroll-linked animation libraries: "start end" means the
// container's start meets the viewport's end (progress 0) and "end start"
// means the container's end meets the viewport's start (progress 1).
package scroll

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidEdge is returned when an edge description cannot be parsed
var ErrInvalidEdge = errors.New("invalid scroll edge")

// Edge aligns a point of the container with a point of the viewport.
// Both values are fractions of the respective height: 0 is the top, 1 the bottom.
type Edge struct {
	Element  float64 `json:"element" yaml:"element" toml:"element"`
	Viewport float64 `json:"viewport" yaml:"viewport" toml:"viewport"`
}

// Window is the traversal over which progress runs from 0 to 1
type Window struct {
	Start Edge `json:"start" yaml:"start" toml:"start"`
	End   Edge `json:"end" yaml:"end" toml:"end"`
	// Clamp limits progress to [0,1]; otherwise values pass through.
	Clamp bool `json:"clamp" yaml:"clamp" toml:"clamp"`
}

// DefaultWindow runs from the container entering at the bottom of the
// viewport to it leaving at the top
func DefaultWindow() Window {
	return Window{
		Start: Edge{Element: 0, Viewport: 1},
		End:   Edge{Element: 1, Viewport: 0},
	}
}

// Geometry is one measurement of a container relative to the page
type Geometry struct {
	ScrollY         float64
	ViewportHeight  float64
	ContainerTop    float64
	ContainerHeight float64
}

// scrollAt returns the scroll offset at which the edge alignment holds
func (e Edge) scrollAt(g Geometry) float64 {
	return g.ContainerTop + e.Element*g.ContainerHeight - e.Viewport*g.ViewportHeight
}

// Progress returns the normalized position of the container within the window
func (w Window) Progress(g Geometry) float64 {
	start := w.Start.scrollAt(g)
	end := w.End.scrollAt(g)

	var p float64
	if span := end - start; span == 0 {
		if g.ScrollY >= start {
			p = 1
		}
	} else {
		p = (g.ScrollY - start) / span
	}

	if w.Clamp {
		p = min(max(p, 0), 1)
	}
	return p
}

// ParseWindow parses a pair of edge descriptions such as "start end" and "end start"
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseEdge(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseEdge(end)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: s, End: e}, nil
}

// ParseEdge parses "<element> <viewport>", where each side is a keyword
// (start, top, center, end, bottom) or a percentage such as "70%"
func ParseEdge(s string) (Edge, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Edge{}, fmt.Errorf("%w: %q", ErrInvalidEdge, s)
	}
	element, err := parseOffset(fields[0])
	if err != nil {
		return Edge{}, fmt.Errorf("%w: %q: %v", ErrInvalidEdge, s, err)
	}
	viewport, err := parseOffset(fields[1])
	if err != nil {
		return Edge{}, fmt.Errorf("%w: %q: %v", ErrInvalidEdge, s, err)
	}
	return Edge{Element: element, Viewport: viewport}, nil
}

func parseOffset(s string) (float64, error) {
	switch s {
	case "start", "top":
		return 0, nil
	case "center":
		return 0.5, nil
	case "end", "bottom":
		return 1, nil
	}
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(pct, 64)
		if err != nil {
			return 0, err
		}
		return v / 100, nil
	}
	return strconv.ParseFloat(s, 64)
}
