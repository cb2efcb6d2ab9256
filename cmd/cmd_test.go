package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"art-showcase/pkg/config"
	"art-showcase/pkg/models"
	"art-showcase/pkg/scroll"
	"art-showcase/pkg/services"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			assert.Equal(t, tt.wantLog, buf.Len() > 0)
		})
	}
}

func TestLoggerFromContext(t *testing.T) {
	assert.Same(t, log.Default(), loggerFromContext(context.Background()))

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	assert.Same(t, custom, loggerFromContext(ctx))
}

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "convert", "list-images", "show-sections", "export", "preview", "check"} {
		assert.Contains(t, names, want)
	}
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	for _, k := range []string{"MANIFEST_URL", "PORT", "BUCKET_NAME", "LAYOUT_FILE", "MANIFEST_TTL", "ADMIN_KEY"} {
		t.Setenv(k, "")
	}
	t.Setenv("PORT", "9000")

	portNumber, adminKey = "9191", "key"
	t.Cleanup(func() { portNumber, adminKey = "", "" })

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9191", cfg.Port)
	assert.Equal(t, "/key/admin", cfg.AdminPrefix())
	assert.Equal(t, config.DefaultManifestURL, cfg.ManifestURL)
}

func TestIsRemote(t *testing.T) {
	assert.True(t, isRemote("https://cdn.example.com/art_manifest.json"))
	assert.True(t, isRemote("gs://heneni/art_manifest.json"))
	assert.False(t, isRemote("./public/art_manifest.json"))
}

func TestConvertRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "artwork.csv")
	out := filepath.Join(dir, "art_manifest.json")
	csv := "url\nhttps://cdn.example.com/a.jpg\n\n  https://cdn.example.com/b.jpg  \nnotes\n"
	require.NoError(t, os.WriteFile(in, []byte(csv), 0644))

	entries, err := convertFile(in)
	require.NoError(t, err)
	require.NoError(t, writeManifest(out, entries))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var got []map[string]string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, []map[string]string{
		{"image": "https://cdn.example.com/a.jpg", "title": ""},
		{"image": "https://cdn.example.com/b.jpg", "title": ""},
	}, got)

	_, err = convertFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestPrintCheckResults(t *testing.T) {
	results := []services.CheckResult{
		{Image: "a.png", Status: services.StatusOK, Width: 10, Height: 10, Format: "png"},
		{Image: "b.png", Status: services.StatusUnreachable, Error: "404 Not Found"},
	}
	assert.Equal(t, 1, printCheckResults(results, true))
	assert.Equal(t, 1, printCheckResults(results, false))
}

func previewService(t *testing.T, n int) *services.Service {
	t.Helper()
	images := make([]models.ImageEntry, n)
	for i := range images {
		images[i] = models.ImageEntry{Image: fmt.Sprintf("https://cdn.example.com/art/%d.jpg", i)}
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(images)
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		ManifestURL: srv.URL,
		Port:        "8080",
		ManifestTTL: time.Minute,
		Layout:      config.DefaultLayout(),
	}
	svc := services.NewService(cfg, log.New(io.Discard))
	svc.Refresh(context.Background())
	return svc
}

func TestPreviewModelScroll(t *testing.T) {
	svc := previewService(t, 40)
	m, err := newPreviewModel(svc, log.New(io.Discard))
	require.NoError(t, err)

	require.Len(t, m.sections, 4, "grid sections are not previewed")
	assert.Equal(t, 4, m.driver.Len())
	assert.Zero(t, m.sections[0].progress)
	for _, s := range m.sections[1:] {
		assert.Negative(t, s.progress, "sections below the viewport have not entered the window")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2*previewStep, m.smoother.Target())

	for i := 0; i < 500 && !m.smoother.Settled(); i++ {
		m.Update(frameMsg(time.Now()))
	}
	require.True(t, m.smoother.Settled())

	first := m.sections[0]
	want := scroll.DefaultWindow().Progress(scroll.Geometry{
		ScrollY:         2 * previewStep,
		ViewportHeight:  previewViewport,
		ContainerTop:    first.top,
		ContainerHeight: previewSection,
	})
	assert.InDelta(t, want, first.progress, 1e-9)
	assert.Greater(t, first.progress, m.sections[1].progress)
	assert.Contains(t, m.View(), first.section.Name)

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Zero(t, m.smoother.Target(), "scrolling stops at the top")

	m.close()
	assert.Zero(t, m.driver.Len())
	assert.True(t, first.tracker.Detached())
}
