package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/patrickmn/go-cache"

	"art-showcase/pkg/config"
	"art-showcase/pkg/layout"
	"art-showcase/pkg/manifest"
	"art-showcase/pkg/models"
	"art-showcase/pkg/transform"
)

const manifestKey = "manifest"

// Service assembles the showcase page from the manifest and the layout
type Service struct {
	config     *config.Config
	store      *manifest.Store
	cache      *cache.Cache
	logger     *log.Logger
	loadOpts   []manifest.Option
	refreshing atomic.Bool
	wg         sync.WaitGroup
}

var (
	// defaultService is the singleton instance of Service
	defaultService *Service
	once           sync.Once
)

// InitService initializes the singleton service with the given configuration
func InitService(cfg *config.Config, logger *log.Logger) *Service {
	once.Do(func() {
		defaultService = NewService(cfg, logger)
	})
	return defaultService
}

// Default returns the singleton service
func Default() *Service {
	return defaultService
}

// NewService creates a service with an empty image store.
// Nothing is fetched until Refresh or the first call to Images.
func NewService(cfg *config.Config, logger *log.Logger, opts ...manifest.Option) *Service {
	if logger == nil {
		logger = log.Default()
	}
	ttl := cfg.ManifestTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		config:   cfg,
		store:    manifest.NewStore(nil),
		cache:    cache.New(ttl, 2*ttl),
		logger:   logger,
		loadOpts: append([]manifest.Option{manifest.WithLogger(logger)}, opts...),
	}
}

// Store returns the working image store
func (s *Service) Store() *manifest.Store {
	return s.store
}

// Layout returns the configured layout
func (s *Service) Layout() config.Layout {
	return s.config.Layout
}

// Refresh loads the manifest once and replaces the working sequence.
// On failure the current images are kept.
func (s *Service) Refresh(ctx context.Context) int {
	opts := append([]manifest.Option{manifest.WithFallback(s.store.Images())}, s.loadOpts...)
	images := manifest.Load(ctx, s.config.ManifestURL, opts...)
	s.store.Replace(images)
	s.MarkFresh()
	s.logger.Info("images ready", "count", len(images), "version", s.store.Version())
	return len(images)
}

// Preload is Refresh for the initial load. It holds the same guard as the
// background refresh, so requests served meanwhile do not start a second
// fetch. When a background refresh is already running it waits for that one.
func (s *Service) Preload(ctx context.Context) int {
	if !s.refreshing.CompareAndSwap(false, true) {
		s.Wait()
		return len(s.store.Images())
	}
	defer s.refreshing.Store(false)
	return s.Refresh(ctx)
}

// MarkFresh records that the store was just loaded, postponing the next refresh by the TTL
func (s *Service) MarkFresh() {
	s.cache.Set(manifestKey, s.store.Version(), cache.DefaultExpiration)
}

// Images returns the current sequence without blocking.
// When the cached manifest has expired a single background refresh is started;
// callers see the previous sequence until it completes.
func (s *Service) Images() []models.ImageEntry {
	if _, found := s.cache.Get(manifestKey); !found {
		s.refreshAsync()
	}
	return s.store.Images()
}

func (s *Service) refreshAsync() {
	if !s.refreshing.CompareAndSwap(false, true) {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.refreshing.Store(false)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.Refresh(ctx)
	}()
}

// Wait blocks until any background refresh has finished
func (s *Service) Wait() {
	s.wg.Wait()
}

// Sections returns the page sections with transforms at the given progress
func (s *Service) Sections(progress float64) ([]models.Section, error) {
	return BuildSections(s.Images(), s.config.Layout, progress)
}

// Page returns the full page model with transforms at progress 0
func (s *Service) Page() (models.Page, error) {
	images := s.Images()
	sections, err := BuildSections(images, s.config.Layout, 0)
	if err != nil {
		return models.Page{}, err
	}
	site := s.config.Layout.Site
	return models.Page{
		Title:    site.Title,
		Tagline:  site.Tagline,
		Welcome:  site.Welcome,
		Nav:      site.Nav,
		Sections: sections,
		Feature:  FeatureImage(images, site.Feature),
		About:    site.About,
		Contact:  site.Contact,
	}, nil
}

// SectionFrames is the sampled transform table of one animated section
type SectionFrames struct {
	Name   string            `json:"name"`
	Frames []transform.Frame `json:"frames"`
}

// Frames samples every animated section at steps+1 progress values
func (s *Service) Frames(steps int) ([]SectionFrames, error) {
	sections, err := s.Sections(0)
	if err != nil {
		return nil, err
	}
	motion := s.config.Layout.Motion
	out := make([]SectionFrames, 0, len(sections))
	for _, sec := range sections {
		if sec.Kind == config.KindGrid {
			continue
		}
		descriptors := make([]models.LayoutDescriptor, len(sec.Cards))
		for i, c := range sec.Cards {
			descriptors[i] = c.Layout
		}
		m := transform.Mapper{Params: motion, Seed: sec.Seed}
		out = append(out, SectionFrames{Name: sec.Name, Frames: m.Frames(descriptors, steps)})
	}
	return out, nil
}

// BuildSections applies the section plans to images. Every partition group
// becomes one section with its own variation seed.
func BuildSections(images []models.ImageEntry, l config.Layout, progress float64) ([]models.Section, error) {
	var sections []models.Section
	for _, plan := range l.Sections {
		groups, err := layout.Partition(layout.Window(images, plan.From, plan.To), plan.Strategy)
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", plan.Name, err)
		}
		for gi, group := range groups {
			name := plan.Name
			if len(groups) > 1 {
				name = fmt.Sprintf("%s-%d", plan.Name, gi+1)
			}
			sec := models.Section{
				Name: name,
				Kind: plan.Kind,
				Seed: l.Seed + uint64(len(sections)),
			}
			mapper := transform.Mapper{Params: l.Motion, Seed: sec.Seed}
			for i, entry := range group {
				desc, ok := descriptorFor(plan.Kind, l.Collage, i)
				if !ok {
					break
				}
				card := models.Card{Index: i, Entry: entry, Layout: desc}
				if plan.Kind == config.KindGrid {
					card.Transform = models.RenderTransform{Scale: desc.BaseScale(), ZIndex: desc.StackOrder}
				} else {
					card.Transform = transform.Map(progress, desc, i, mapper.Seed, mapper.Params)
				}
				sec.Cards = append(sec.Cards, card)
			}
			sections = append(sections, sec)
		}
	}
	return sections, nil
}

// descriptorFor returns the layout of card i. Collage sections only have as
// many cards as authored descriptors.
func descriptorFor(kind string, collage []models.LayoutDescriptor, i int) (models.LayoutDescriptor, bool) {
	if kind == config.KindCollage {
		if i >= len(collage) {
			return models.LayoutDescriptor{}, false
		}
		return collage[i], true
	}
	return models.LayoutDescriptor{Scale: 1}, true
}

// FeatureImage returns the image at the first candidate index that exists
func FeatureImage(images []models.ImageEntry, candidates []int) string {
	for _, i := range candidates {
		if i >= 0 && i < len(images) {
			return images[i].Image
		}
	}
	return ""
}
