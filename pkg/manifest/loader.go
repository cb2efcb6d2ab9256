// Package manifest loads the JSON list of artwork the showcase is built from.
//
// Load never fails: network, storage and parse errors are logged and the
// caller's fallback (or an empty sequence) is returned instead, so the page
// always renders. Fetch is the error-returning primitive underneath it.
package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/charmbracelet/log"

	"art-showcase/pkg/models"
)

// ErrUnsupportedScheme is returned for manifest URLs with an unknown scheme
var ErrUnsupportedScheme = errors.New("unsupported manifest scheme")

// ErrBadStatus is returned when an HTTP manifest request does not answer 200
var ErrBadStatus = errors.New("unexpected manifest status")

type options struct {
	fallback []models.ImageEntry
	client   *http.Client
	logger   *log.Logger
}

// Option configures Load and Fetch
type Option func(*options)

// WithFallback sets the sequence returned when loading fails
func WithFallback(seq []models.ImageEntry) Option {
	return func(o *options) { o.fallback = seq }
}

// WithHTTPClient sets the client used for http(s) manifests
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithLogger sets the logger failures are reported to
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) *options {
	o := &options{client: http.DefaultClient, logger: log.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Load fetches the manifest at url, degrading to the fallback on any failure
func Load(ctx context.Context, url string, opts ...Option) []models.ImageEntry {
	o := newOptions(opts)
	entries, err := fetch(ctx, url, o)
	if err != nil {
		o.logger.Warn("manifest unavailable, using fallback", "url", url, "fallback", len(o.fallback), "err", err)
		return Clean(o.fallback)
	}
	o.logger.Debug("manifest loaded", "url", url, "images", len(entries))
	return entries
}

// Fetch retrieves and parses the manifest at url.
// Supported locations are http(s) URLs, gs://bucket/object and local paths.
func Fetch(ctx context.Context, url string, opts ...Option) ([]models.ImageEntry, error) {
	return fetch(ctx, url, newOptions(opts))
}

func fetch(ctx context.Context, url string, o *options) ([]models.ImageEntry, error) {
	r, err := open(ctx, url, o)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Parse(r)
}

func open(ctx context.Context, url string, o *options) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return openHTTP(ctx, url, o.client)
	case strings.HasPrefix(url, "gs://"):
		return openObject(ctx, url)
	case strings.Contains(url, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, url)
	default:
		f, err := os.Open(url)
		if err != nil {
			return nil, fmt.Errorf("open manifest: %w", err)
		}
		return f, nil
	}
}

func openHTTP(ctx context.Context, url string, client *http.Client) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build manifest request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}
	return resp.Body, nil
}

// objectReader closes the storage client along with the object reader
type objectReader struct {
	*storage.Reader
	client *storage.Client
}

func (r objectReader) Close() error {
	err := r.Reader.Close()
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	return err
}

func openObject(ctx context.Context, url string) (io.ReadCloser, error) {
	bucket, object, ok := strings.Cut(strings.TrimPrefix(url, "gs://"), "/")
	if !ok || bucket == "" || object == "" {
		return nil, fmt.Errorf("%w: malformed object url %s", ErrUnsupportedScheme, url)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	reader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("Object(%q).NewReader: %w", object, err)
	}
	return objectReader{Reader: reader, client: client}, nil
}

// rawEntry is a manifest element before validation. The title is kept raw so
// a malformed title does not cost the entry its image.
type rawEntry struct {
	Image string          `json:"image"`
	Title json.RawMessage `json:"title"`
}

// Parse decodes a manifest document. Elements that are not objects with a
// string image field are skipped, a title that is not a string is ignored and
// the result is deduplicated.
func Parse(r io.Reader) ([]models.ImageEntry, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	entries := make([]models.ImageEntry, 0, len(raw))
	for _, item := range raw {
		var re rawEntry
		if err := json.Unmarshal(item, &re); err != nil {
			continue
		}
		e := models.ImageEntry{Image: re.Image}
		if len(re.Title) > 0 {
			var title string
			if json.Unmarshal(re.Title, &title) == nil {
				e.Title = title
			}
		}
		entries = append(entries, e)
	}
	return Clean(entries), nil
}

// Clean drops entries without an image and keeps the first occurrence of each image
func Clean(entries []models.ImageEntry) []models.ImageEntry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]models.ImageEntry, 0, len(entries))
	for _, e := range entries {
		if e.Image == "" {
			continue
		}
		if _, dup := seen[e.Image]; dup {
			continue
		}
		seen[e.Image] = struct{}{}
		out = append(out, e)
	}
	return out
}
