package manifest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"art-showcase/pkg/models"
)

// Convert reads newline-delimited URLs and returns them as untitled entries.
// Lines are trimmed and only those starting with an http or https scheme are kept.
func Convert(r io.Reader) ([]models.ImageEntry, error) {
	entries := []models.ImageEntry{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "http://") && !strings.HasPrefix(line, "https://") {
			continue
		}
		entries = append(entries, models.ImageEntry{Image: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url list: %w", err)
	}
	return entries, nil
}

// manifestRecord always writes the title field, unlike ImageEntry
type manifestRecord struct {
	Image string `json:"image"`
	Title string `json:"title"`
}

// Write encodes entries as an indented manifest document
func Write(w io.Writer, entries []models.ImageEntry) error {
	records := make([]manifestRecord, len(entries))
	for i, e := range entries {
		records[i] = manifestRecord{Image: e.Image, Title: e.Title}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return nil
}
