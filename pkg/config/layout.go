package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"art-showcase/pkg/layout"
	"art-showcase/pkg/models"
	"art-showcase/pkg/scroll"
	"art-showcase/pkg/transform"
)

// Section kinds
const (
	KindCollage  = "collage"
	KindParallax = "parallax"
	KindGrid     = "grid"
)

// ErrUnsupportedLayoutFormat is returned for layout files that are neither YAML nor TOML
var ErrUnsupportedLayoutFormat = errors.New("layout file must be .yaml, .yml or .toml")

// Site holds the static text of the page
type Site struct {
	Title   string           `yaml:"title" toml:"title"`
	Tagline string           `yaml:"tagline" toml:"tagline"`
	Welcome string           `yaml:"welcome" toml:"welcome"`
	Nav     []models.NavLink `yaml:"nav" toml:"nav"`
	About   string           `yaml:"about" toml:"about"`
	Contact string           `yaml:"contact" toml:"contact"`
	// Feature lists manifest indexes tried in order for the feature image.
	Feature []int `yaml:"feature" toml:"feature"`
}

// SectionPlan takes a window of the manifest and partitions it into sections
type SectionPlan struct {
	Name     string          `yaml:"name" toml:"name"`
	Kind     string          `yaml:"kind" toml:"kind"`
	From     int             `yaml:"from" toml:"from"`
	To       int             `yaml:"to" toml:"to"`
	Strategy layout.Strategy `yaml:"strategy" toml:"strategy"`
}

// WindowSpec names the scroll window edges, e.g. "start end" to "end start"
type WindowSpec struct {
	Start string `yaml:"start" toml:"start"`
	End   string `yaml:"end" toml:"end"`
	Clamp bool   `yaml:"clamp" toml:"clamp"`
}

// Layout is the presentation tuning of the page
type Layout struct {
	Site     Site                      `yaml:"site" toml:"site"`
	Sections []SectionPlan             `yaml:"sections" toml:"sections"`
	Collage  []models.LayoutDescriptor `yaml:"collage" toml:"collage"`
	Motion   transform.Params          `yaml:"motion" toml:"motion"`
	Window   WindowSpec                `yaml:"window" toml:"window"`
	Seed     uint64                    `yaml:"seed" toml:"seed"`
	FPS      int                       `yaml:"fps" toml:"fps"`
	Smooth   float64                   `yaml:"smooth" toml:"smooth"`
}

// DefaultLayout reproduces the original showcase: a four-card collage, the
// first 27 images in parallax groups of 9 and two grids of 36.
func DefaultLayout() Layout {
	return Layout{
		Site: Site{
			Title:   "HENENI",
			Tagline: "Unique Visual Experiences for Curious People",
			Welcome: "Welcome to my website! Do stick around. Scrolling is encouraged here, it makes things happen.",
			Nav: []models.NavLink{
				{Label: "ABOUT", Href: "#about"},
				{Label: "WORK", Href: "#work"},
				{Label: "CONTACT", Href: "#contact"},
			},
			About:   "Heneni is a studio for unique visual experiences. We design from instinct and arrange for delight, inviting the viewer to participate through motion and playful discovery.",
			Contact: "mark@heneniart.com",
			Feature: []int{3, 8, 0},
		},
		Sections: []SectionPlan{
			{Name: "stack", Kind: KindCollage, From: 0, To: 4, Strategy: layout.Strategy{Kind: layout.KindContiguous, Sizes: []int{4}}},
			{Name: "parallax", Kind: KindParallax, From: 0, To: 27, Strategy: layout.Strategy{Kind: layout.KindChunk, ChunkSize: 9, Limit: 45}},
			{Name: "grid", Kind: KindGrid, From: 27, To: 99, Strategy: layout.Strategy{Kind: layout.KindContiguous, Sizes: []int{36, 36}}},
		},
		Collage: []models.LayoutDescriptor{
			{Top: 0, Left: 28, Width: 28, Height: 28, Unit: "vw", Rotation: 0, Scale: 1, StackOrder: 2, Radius: 24},
			{Top: 3, Left: 64, Width: 20, Height: 20, Unit: "vw", Rotation: 0, Scale: 1, StackOrder: 3, Radius: 20},
			{Top: 34, Left: 43, Width: 34, Height: 20, Unit: "vw", Rotation: 0, Scale: 1, StackOrder: 4, Radius: 22},
			{Top: 38, Left: 66, Width: 24, Height: 24, Unit: "vw", Rotation: 16, Scale: 1, StackOrder: 5, Radius: 26},
		},
		Motion: transform.DefaultParams(),
		Window: WindowSpec{Start: "start end", End: "end start"},
		Seed:   1,
		FPS:    60,
		Smooth: scroll.DefaultLerp,
	}
}

// LoadLayout reads a layout file, YAML or TOML by extension, over the defaults
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}

	l := DefaultLayout()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &l)
	case ".toml":
		_, err = toml.Decode(string(data), &l)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLayoutFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse layout %s: %w", path, err)
	}
	return &l, nil
}

// Validate checks section strategies, motion amplitudes and the scroll window
func (l Layout) Validate() error {
	for _, s := range l.Sections {
		switch s.Kind {
		case KindCollage, KindParallax, KindGrid:
		default:
			return fmt.Errorf("section %q: unknown kind %q", s.Name, s.Kind)
		}
		if s.To < s.From {
			return fmt.Errorf("section %q: range %d..%d is reversed", s.Name, s.From, s.To)
		}
		if err := s.Strategy.Validate(); err != nil {
			return fmt.Errorf("section %q: %w", s.Name, err)
		}
	}
	if err := l.Motion.Validate(); err != nil {
		return fmt.Errorf("motion: %w", err)
	}
	if _, err := l.ScrollWindow(); err != nil {
		return fmt.Errorf("window: %w", err)
	}
	if l.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", l.FPS)
	}
	return nil
}

// ScrollWindow parses the configured window
func (l Layout) ScrollWindow() (scroll.Window, error) {
	w, err := scroll.ParseWindow(l.Window.Start, l.Window.End)
	if err != nil {
		return scroll.Window{}, err
	}
	w.Clamp = l.Window.Clamp
	return w, nil
}

// FrameInterval is the driver tick derived from FPS
func (l Layout) FrameInterval() time.Duration {
	if l.FPS <= 0 {
		return scroll.DefaultFrameInterval
	}
	return time.Second / time.Duration(l.FPS)
}
