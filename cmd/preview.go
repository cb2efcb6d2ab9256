package cmd

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"art-showcase/pkg/config"
	"art-showcase/pkg/models"
	"art-showcase/pkg/scroll"
	"art-showcase/pkg/services"
	"art-showcase/pkg/transform"
)

// Virtual page metrics the preview scrolls through, in pixels
const (
	previewViewport = 800.0
	previewSection  = 1200.0
	previewStep     = 120.0
	previewCards    = 4
)

// newPreviewCmd creates a new command for previewing the scroll motion in the terminal
func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Preview the scroll motion",
		Long: `Scroll through a simulated page in the terminal and watch the transforms of every
animated section change. Use ↑/↓ or j/k to scroll, pgup/pgdown for larger steps and q to quit.`,
		Run: func(cmd *cobra.Command, args []string) {
			svc := loadService(cmd)
			logger := loggerFromContext(cmd.Context())

			m, err := newPreviewModel(svc, logger)
			if err != nil {
				logger.Fatal("building preview", "err", err)
			}
			defer m.close()

			if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
				logger.Fatal("preview", "err", err)
			}
		},
	}
}

type frameMsg time.Time

// previewSectionState is one animated section placed on the virtual page
type previewSectionState struct {
	section     models.Section
	descriptors []models.LayoutDescriptor
	top         float64
	progress    float64
	tracker     *scroll.Tracker
}

// previewModel is the bubbletea model of the preview. Trackers are ticked
// synchronously from Update so no state is shared with other goroutines.
type previewModel struct {
	layout   config.Layout
	interval time.Duration
	smoother *scroll.Smoother
	driver   *scroll.Driver
	sections []*previewSectionState
	detach   []func()
	height   float64
}

func newPreviewModel(svc *services.Service, logger *log.Logger) (*previewModel, error) {
	l := svc.Layout()
	window, err := l.ScrollWindow()
	if err != nil {
		return nil, err
	}
	sections, err := svc.Sections(0)
	if err != nil {
		return nil, err
	}

	m := &previewModel{
		layout:   l,
		interval: l.FrameInterval(),
		smoother: scroll.NewSmoother(l.Smooth, 0),
		driver:   scroll.NewDriver(l.FrameInterval(), logger),
	}

	top := previewViewport
	for _, sec := range sections {
		if sec.Kind == config.KindGrid {
			continue
		}
		state := &previewSectionState{section: sec, top: top}
		for _, c := range sec.Cards {
			state.descriptors = append(state.descriptors, c.Layout)
		}
		state.tracker = scroll.NewTracker(m.measure(state), window)
		state.tracker.Subscribe(func(p float64) {
			state.progress = p
		})
		m.detach = append(m.detach, m.driver.Attach(state.tracker))
		m.sections = append(m.sections, state)
		top += previewSection
	}
	m.height = top + previewViewport
	logger.Debug("preview ready", "sections", len(m.sections), "height", m.height)

	m.driver.Frame()
	return m, nil
}

func (m *previewModel) measure(s *previewSectionState) scroll.Measurer {
	return scroll.MeasureFunc(func() (scroll.Geometry, bool) {
		return scroll.Geometry{
			ScrollY:         m.smoother.Position(),
			ViewportHeight:  previewViewport,
			ContainerTop:    s.top,
			ContainerHeight: previewSection,
		}, true
	})
}

func (m *previewModel) close() {
	for _, detach := range m.detach {
		detach()
	}
}

func (m *previewModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m *previewModel) scrollBy(delta float64) {
	target := m.smoother.Target() + delta
	maxScroll := m.height - previewViewport
	target = min(max(target, 0), maxScroll)
	m.smoother.SetTarget(target)
}

func (m *previewModel) Init() tea.Cmd {
	return m.tick()
}

func (m *previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.scrollBy(-previewStep)
		case "down", "j":
			m.scrollBy(previewStep)
		case "pgup":
			m.scrollBy(-previewViewport)
		case "pgdown", " ":
			m.scrollBy(previewViewport)
		case "home", "g":
			m.scrollBy(-m.height)
		case "end", "G":
			m.scrollBy(m.height)
		}
	case frameMsg:
		m.smoother.Step()
		m.driver.Frame()
		return m, m.tick()
	}
	return m, nil
}

func (m *previewModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render(m.layout.Site.Title + " preview"))
	b.WriteString("\n")
	b.WriteString(styleDim.Render("↑/↓ scroll  pgup/pgdown page  q quit"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("scroll %6.0f / %.0f  target %6.0f\n\n",
		m.smoother.Position(), m.height-previewViewport, m.smoother.Target()))

	t := newTable("Section", "Progress", "", "Card transforms")
	for _, s := range m.sections {
		mapper := transform.Mapper{Params: m.layout.Motion, Seed: s.section.Seed}
		transforms := mapper.Section(s.progress, s.descriptors)
		var cards []string
		for i, tr := range transforms {
			if i == previewCards {
				cards = append(cards, fmt.Sprintf("… %d more", len(transforms)-previewCards))
				break
			}
			cards = append(cards, fmt.Sprintf("y%+6.1f r%+5.1f s%.3f", tr.TranslateY, tr.Rotation, tr.Scale))
		}
		t.Row(s.section.Name, fmt.Sprintf("%.3f", s.progress), progressBar(s.progress, 20), strings.Join(cards, "\n"))
	}
	b.WriteString(t.Render())
	return b.String()
}

func progressBar(p float64, width int) string {
	filled := int(p*float64(width) + 0.5)
	filled = min(max(filled, 0), width)
	return lipgloss.NewStyle().Foreground(colorGreen).Render(strings.Repeat("█", filled)) +
		styleDim.Render(strings.Repeat("░", width-filled))
}
