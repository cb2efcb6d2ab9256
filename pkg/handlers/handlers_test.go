package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"art-showcase/pkg/config"
	"art-showcase/pkg/models"
	"art-showcase/pkg/services"
)

const adminPrefix = "/s3cret/admin"

// newTestServer serves n images (plus a duplicate) from a fake manifest host
// and returns the showcase router in front of a loaded service.
func newTestServer(t *testing.T, n int) http.Handler {
	t.Helper()
	return newTestServerWithLayout(t, n, config.DefaultLayout())
}

func newTestServerWithLayout(t *testing.T, n int, layout config.Layout) http.Handler {
	t.Helper()

	var host *httptest.Server
	host = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/art_manifest.json" {
			http.NotFound(w, r)
			return
		}
		images := make([]models.ImageEntry, 0, n+1)
		for i := 0; i < n; i++ {
			images = append(images, models.ImageEntry{Image: fmt.Sprintf("%s/art/%d.jpg", host.URL, i)})
		}
		if n > 0 {
			images = append(images, images[0])
		}
		json.NewEncoder(w).Encode(images)
	}))
	t.Cleanup(host.Close)

	cfg := &config.Config{
		ManifestURL: host.URL + "/art_manifest.json",
		Port:        "8080",
		ManifestTTL: time.Minute,
		Layout:      layout,
	}
	logger := log.New(io.Discard)
	svc := services.NewService(cfg, logger)
	svc.Refresh(context.Background())
	t.Cleanup(svc.Wait)

	return New(svc, logger, "../../views", "../../public").Router(adminPrefix)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestManifestHandler(t *testing.T) {
	h := newTestServer(t, 6)

	rec := get(t, h, "/art_manifest.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var images []models.ImageEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &images))
	assert.Len(t, images, 6, "duplicates are removed")
}

func TestSectionsHandler(t *testing.T) {
	h := newTestServer(t, 30)

	rec := get(t, h, "/api/sections?progress=0.5")
	require.Equal(t, http.StatusOK, rec.Code)

	var sections []models.Section
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sections))
	require.NotEmpty(t, sections)
	assert.Equal(t, "stack", sections[0].Name)
	assert.Len(t, sections[0].Cards, 4)

	rec = get(t, h, "/api/sections?progress=half")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid progress")
}

func TestTransformsHandler(t *testing.T) {
	h := newTestServer(t, 12)

	decode := func(target string) []sectionTransforms {
		rec := get(t, h, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		var out []sectionTransforms
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return out
	}

	a := decode("/api/transforms?progress=0.3&seed=7")
	b := decode("/api/transforms?progress=0.3&seed=7")
	c := decode("/api/transforms?progress=0.3&seed=8")
	assert.Equal(t, a, b, "same inputs give the same transforms")
	assert.NotEqual(t, a, c, "the seed changes the per-card variation")

	require.NotEmpty(t, a)
	assert.Len(t, a[0].Transforms, 4)

	rec := get(t, h, "/api/transforms?seed=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHugeProgressStaysFinite(t *testing.T) {
	h := newTestServer(t, 12)

	for _, target := range []string{
		"/api/sections?progress=1e307",
		"/api/sections?progress=-1e307",
		"/api/transforms?progress=1e307",
		"/api/transforms?progress=-1e307&seed=3",
	} {
		rec := get(t, h, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.True(t, json.Valid(rec.Body.Bytes()), target)
	}

	var sections []models.Section
	require.NoError(t, json.Unmarshal(get(t, h, "/api/sections?progress=1e307").Body.Bytes(), &sections))
	require.NotEmpty(t, sections)
	assert.NotEmpty(t, sections[0].Cards)
}

func TestFramesHandler(t *testing.T) {
	h := newTestServer(t, 20)

	rec := get(t, h, "/api/frames?steps=5")
	require.Equal(t, http.StatusOK, rec.Code)
	var frames []services.SectionFrames
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &frames))
	require.NotEmpty(t, frames)
	for _, f := range frames {
		assert.Len(t, f.Frames, 6, f.Name)
		assert.Equal(t, 0.0, f.Frames[0].Progress)
		assert.Equal(t, 1.0, f.Frames[5].Progress)
	}

	rec = get(t, h, "/api/frames")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &frames))
	assert.Len(t, frames[0].Frames, DefaultFrameSteps+1)

	for _, bad := range []string{"0", "1001", "many"} {
		rec = get(t, h, "/api/frames?steps="+bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestPageHandler(t *testing.T) {
	h := newTestServer(t, 10)

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "HENENI")
	assert.Contains(t, body, "/art/3.jpg", "feature image")
	assert.Contains(t, body, `data-section="stack"`)
	assert.Contains(t, body, "mailto:mark@heneniart.com")
	assert.Contains(t, body, "/api/frames?steps=20")
}

func TestPageHandlerScrollSettings(t *testing.T) {
	rec := get(t, newTestServer(t, 4), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, attr := range []string{
		`data-start-element="0"`,
		`data-start-viewport="1"`,
		`data-end-element="1"`,
		`data-end-viewport="0"`,
		`data-clamp="false"`,
		`data-smooth="0.12"`,
	} {
		assert.Contains(t, body, attr)
	}

	layout := config.DefaultLayout()
	layout.Window = config.WindowSpec{Start: "top top", End: "bottom top", Clamp: true}
	layout.Smooth = 0.3
	rec = get(t, newTestServerWithLayout(t, 4, layout), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	for _, attr := range []string{
		`data-start-element="0"`,
		`data-start-viewport="0"`,
		`data-end-element="1"`,
		`data-end-viewport="0"`,
		`data-clamp="true"`,
		`data-smooth="0.3"`,
	} {
		assert.Contains(t, body, attr)
	}
}

func TestPageHandlerWithoutImages(t *testing.T) {
	h := newTestServer(t, 0)

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "HENENI")
	assert.NotContains(t, rec.Body.String(), "<figure")
}

func TestPublicFiles(t *testing.T) {
	h := newTestServer(t, 1)

	rec := get(t, h, "/public/showcase.js")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "requestAnimationFrame")

	rec = get(t, h, "/public/missing.js")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	h := newTestServer(t, 3)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, adminPrefix+"/reload", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var reload struct {
		Images  int    `json:"images"`
		Version uint64 `json:"version"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reload))
	assert.Equal(t, 3, reload.Images)
	assert.Equal(t, uint64(2), reload.Version)

	rec = httptest.NewRecorder()
	body := strings.NewReader(`{"concurrency": 2, "onlyFailed": true}`)
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, adminPrefix+"/check", body))
	require.Equal(t, http.StatusOK, rec.Code)
	var check struct {
		Checked int                    `json:"checked"`
		Failed  int                    `json:"failed"`
		Results []services.CheckResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &check))
	assert.Equal(t, 3, check.Checked)
	assert.Equal(t, 3, check.Failed, "the fake host has no images")
	assert.Len(t, check.Results, 3)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, adminPrefix+"/check", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/reload", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
