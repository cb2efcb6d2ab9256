package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/eknkc/pug"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"art-showcase/pkg/models"
	"art-showcase/pkg/scroll"
	"art-showcase/pkg/services"
)

// DefaultFrameSteps is the resolution of the frame table served to the page
const DefaultFrameSteps = 20

// Handlers serves the showcase page and its data
type Handlers struct {
	svc       *services.Service
	logger    *log.Logger
	viewsDir  string
	publicDir string
}

// New creates handlers rendering templates from viewsDir and static files from publicDir
func New(svc *services.Service, logger *log.Logger, viewsDir, publicDir string) *Handlers {
	if logger == nil {
		logger = log.Default()
	}
	return &Handlers{svc: svc, logger: logger, viewsDir: viewsDir, publicDir: publicDir}
}

// Router returns the routes of the site. The maintenance routes are mounted
// under adminPrefix when it is not empty.
func (h *Handlers) Router(adminPrefix string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", h.PageHandler)
	r.Get("/art_manifest.json", h.ManifestHandler)
	r.Route("/api", func(r chi.Router) {
		r.Get("/sections", h.SectionsHandler)
		r.Get("/transforms", h.TransformsHandler)
		r.Get("/frames", h.FramesHandler)
	})
	r.Handle("/public/*", http.StripPrefix("/public/", http.FileServer(http.Dir(h.publicDir))))
	if adminPrefix != "" {
		r.Mount(adminPrefix, h.AdminRouter())
	}
	return r
}

type cardView struct {
	Index     int
	Image     string
	Alt       string
	Style     template.CSS
	Transform template.CSS
}

type sectionView struct {
	Name  string
	Kind  string
	Cards []cardView
}

type pageView struct {
	Title       string
	Tagline     string
	Welcome     string
	Nav         []models.NavLink
	Sections    []sectionView
	Feature     string
	About       string
	Contact     string
	ContactHref string
	FramesURL   string
	Scroll      scrollView
}

// scrollView is the scroll window and smoothing handed to the browser
type scrollView struct {
	StartElement  string
	StartViewport string
	EndElement    string
	EndViewport   string
	Clamp         string
	Smooth        string
}

func newScrollView(w scroll.Window, smooth float64) scrollView {
	if smooth <= 0 || smooth > 1 {
		smooth = scroll.DefaultLerp
	}
	return scrollView{
		StartElement:  formatFloat(w.Start.Element),
		StartViewport: formatFloat(w.Start.Viewport),
		EndElement:    formatFloat(w.End.Element),
		EndViewport:   formatFloat(w.End.Viewport),
		Clamp:         strconv.FormatBool(w.Clamp),
		Smooth:        formatFloat(smooth),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func newPageView(p models.Page) pageView {
	v := pageView{
		Title:       p.Title,
		Tagline:     p.Tagline,
		Welcome:     p.Welcome,
		Nav:         p.Nav,
		Feature:     p.Feature,
		About:       p.About,
		Contact:     p.Contact,
		ContactHref: "mailto:" + p.Contact,
		FramesURL:   "/api/frames?steps=" + strconv.Itoa(DefaultFrameSteps),
	}
	for _, s := range p.Sections {
		sv := sectionView{Name: s.Name, Kind: s.Kind}
		for _, c := range s.Cards {
			sv.Cards = append(sv.Cards, cardView{
				Index: c.Index,
				Image: c.Entry.Image,
				Alt:   c.Entry.Alt(),
				// Both values are built from numbers only.
				Style:     template.CSS(c.Layout.PositionStyle() + " transform: " + c.Transform.CSS() + ";"),
				Transform: template.CSS(c.Transform.CSS()),
			})
		}
		v.Sections = append(v.Sections, sv)
	}
	return v
}

// PageHandler renders the showcase page with whatever images are available
func (h *Handlers) PageHandler(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("generating page")

	page, err := h.svc.Page()
	if err != nil {
		h.fail(w, "page", err)
		return
	}

	l := h.svc.Layout()
	window, err := l.ScrollWindow()
	if err != nil {
		h.fail(w, "scroll window", err)
		return
	}

	tmpl, err := pug.CompileFile(filepath.Join(h.viewsDir, "index.pug"), pug.Options{})
	if err != nil {
		h.fail(w, "template", err)
		return
	}

	view := newPageView(page)
	view.Scroll = newScrollView(window, l.Smooth)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, view); err != nil {
		h.logger.Error("template execution", "err", err)
	}
}

// ManifestHandler serves the current image sequence
func (h *Handlers) ManifestHandler(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, h.svc.Images())
}

// SectionsHandler serves the partitioned sections at ?progress= (default 0)
func (h *Handlers) SectionsHandler(w http.ResponseWriter, r *http.Request) {
	progress, err := floatParam(r, "progress", 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sections, err := h.svc.Sections(progress)
	if err != nil {
		h.fail(w, "sections", err)
		return
	}
	h.writeJSON(w, sections)
}

type sectionTransforms struct {
	Name       string                   `json:"name"`
	Transforms []models.RenderTransform `json:"transforms"`
}

// TransformsHandler serves per-card transforms at ?progress=, optionally with ?seed=
func (h *Handlers) TransformsHandler(w http.ResponseWriter, r *http.Request) {
	progress, err := floatParam(r, "progress", 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	l := h.svc.Layout()
	if raw := r.URL.Query().Get("seed"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid seed", http.StatusBadRequest)
			return
		}
		l.Seed = seed
	}

	sections, err := services.BuildSections(h.svc.Images(), l, progress)
	if err != nil {
		h.fail(w, "transforms", err)
		return
	}

	out := make([]sectionTransforms, len(sections))
	for i, s := range sections {
		out[i] = sectionTransforms{Name: s.Name, Transforms: make([]models.RenderTransform, len(s.Cards))}
		for j, c := range s.Cards {
			out[i].Transforms[j] = c.Transform
		}
	}
	h.writeJSON(w, out)
}

// FramesHandler serves the sampled transform table at ?steps= resolution
func (h *Handlers) FramesHandler(w http.ResponseWriter, r *http.Request) {
	steps := DefaultFrameSteps
	if raw := r.URL.Query().Get("steps"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			http.Error(w, "steps must be between 1 and 1000", http.StatusBadRequest)
			return
		}
		steps = n
	}
	frames, err := h.svc.Frames(steps)
	if err != nil {
		h.fail(w, "frames", err)
		return
	}
	h.writeJSON(w, frames)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.fail(w, "json", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		h.logger.Debug("write response", "err", err)
	}
}

func (h *Handlers) fail(w http.ResponseWriter, what string, err error) {
	h.logger.Error("request failed", "stage", what, "err", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func floatParam(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &paramError{name: name, raw: raw}
	}
	return v, nil
}

type paramError struct {
	name, raw string
}

func (e *paramError) Error() string {
	return "invalid " + e.name + ": " + strconv.Quote(e.raw)
}
