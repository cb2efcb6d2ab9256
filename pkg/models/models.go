package models

import "fmt"

// ImageEntry represents one artwork reference from the manifest
type ImageEntry struct {
	Image string `json:"image"`
	Title string `json:"title,omitempty"`
}

// Alt returns the title, or a generic label for untitled work
func (e ImageEntry) Alt() string {
	if e.Title == "" {
		return "Artwork"
	}
	return e.Title
}

// LayoutDescriptor is the authored placement of one collage element
type LayoutDescriptor struct {
	Top        float64 `json:"top" yaml:"top" toml:"top"`
	Left       float64 `json:"left" yaml:"left" toml:"left"`
	Width      float64 `json:"width,omitempty" yaml:"width" toml:"width"`
	Height     float64 `json:"height,omitempty" yaml:"height" toml:"height"`
	Unit       string  `json:"unit,omitempty" yaml:"unit" toml:"unit"`
	Rotation   float64 `json:"rotation" yaml:"rotation" toml:"rotation"`
	Scale      float64 `json:"scale" yaml:"scale" toml:"scale"`
	StackOrder int     `json:"stackOrder" yaml:"stackOrder" toml:"stackOrder"`
	Radius     float64 `json:"radius,omitempty" yaml:"radius" toml:"radius"`
}

// BaseScale returns the nominal scale, reading an unset scale as 1.0
func (d LayoutDescriptor) BaseScale() float64 {
	if d.Scale == 0 {
		return 1
	}
	return d.Scale
}

// PositionStyle renders the static placement as inline CSS
func (d LayoutDescriptor) PositionStyle() string {
	unit := d.Unit
	if unit == "" {
		unit = "px"
	}
	style := fmt.Sprintf("top: %g%s; left: %g%s; z-index: %d;", d.Top, unit, d.Left, unit, d.StackOrder)
	if d.Width > 0 {
		style += fmt.Sprintf(" width: %g%s;", d.Width, unit)
	}
	if d.Height > 0 {
		style += fmt.Sprintf(" height: %g%s;", d.Height, unit)
	}
	if d.Radius > 0 {
		style += fmt.Sprintf(" border-radius: %gpx;", d.Radius)
	}
	return style
}

// RenderTransform is the live transform of one element for the current frame
type RenderTransform struct {
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
	Rotation   float64 `json:"rotation"`
	Scale      float64 `json:"scale"`
	ZIndex     int     `json:"zIndex"`
}

// CSS renders the transform as a CSS transform value
func (t RenderTransform) CSS() string {
	return fmt.Sprintf("translate(%.2fpx, %.2fpx) rotate(%.2fdeg) scale(%.4f)", t.TranslateX, t.TranslateY, t.Rotation, t.Scale)
}

// Card is one image placed in a section
type Card struct {
	Index     int              `json:"index"`
	Entry     ImageEntry       `json:"entry"`
	Layout    LayoutDescriptor `json:"layout"`
	Transform RenderTransform  `json:"transform"`
}

// Section represents a group of cards rendered together
type Section struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Seed  uint64 `json:"seed"`
	Cards []Card `json:"cards"`
}

// NavLink is one header navigation entry
type NavLink struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Page represents the showcase page data
type Page struct {
	Title    string
	Tagline  string
	Welcome  string
	Nav      []NavLink
	Sections []Section
	Feature  string
	About    string
	Contact  string
}
