package services

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"art-showcase/pkg/models"
)

const (
	// colorDifferenceThreshold defines the minimum difference between color components
	// to consider two pixels as different colors (accounts for compression artifacts)
	colorDifferenceThreshold = 256

	// solidColorRatio is the share of sampled pixels that must differ from the
	// first one for an image not to count as a solid block
	solidColorRatio = 0.01
)

// Check statuses
const (
	StatusOK          = "ok"
	StatusUnreachable = "unreachable"
	StatusUndecodable = "undecodable"
	StatusSolid       = "solid"
)

// CheckResult is the outcome of checking one manifest image
type CheckResult struct {
	Image  string `json:"image"`
	Status string `json:"status"`
	Format string `json:"format,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Error  string `json:"error,omitempty"`
}

// CheckImages downloads and decodes every entry with at most concurrency
// requests in flight. Results keep the manifest order.
func CheckImages(ctx context.Context, client *http.Client, entries []models.ImageEntry, concurrency int) []CheckResult {
	if client == nil {
		client = http.DefaultClient
	}
	if concurrency <= 0 {
		concurrency = 4
	}

	results := make([]CheckResult, len(entries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, e := range entries {
		g.Go(func() error {
			results[i] = checkImage(ctx, client, e.Image)
			return nil
		})
	}
	g.Wait()
	return results
}

func checkImage(ctx context.Context, client *http.Client, url string) CheckResult {
	res := CheckResult{Image: url}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		res.Status, res.Error = StatusUnreachable, err.Error()
		return res
	}
	resp, err := client.Do(req)
	if err != nil {
		res.Status, res.Error = StatusUnreachable, err.Error()
		return res
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		res.Status, res.Error = StatusUnreachable, fmt.Sprintf("bad status code: %d", resp.StatusCode)
		return res
	}

	img, format, err := image.Decode(resp.Body)
	if err != nil {
		res.Status, res.Error = StatusUndecodable, err.Error()
		return res
	}

	bounds := img.Bounds()
	res.Format, res.Width, res.Height = format, bounds.Dx(), bounds.Dy()

	if differing, total := sampleDifference(img); total > 0 && float64(differing)/float64(total) < solidColorRatio {
		res.Status = StatusSolid
		res.Error = fmt.Sprintf("image appears to be a solid color (only %d/%d sampled pixels differ)", differing, total)
		return res
	}

	res.Status = StatusOK
	return res
}

// sampleDifference samples a 10x10 grid and counts pixels that differ from the top-left one
func sampleDifference(img image.Image) (differing, total int) {
	bounds := img.Bounds()
	stepX := max(bounds.Dx()/10, 1)
	stepY := max(bounds.Dy()/10, 1)

	r1, g1, b1, a1 := img.At(bounds.Min.X, bounds.Min.Y).RGBA()
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			total++
			r2, g2, b2, a2 := img.At(x, y).RGBA()
			if differs(r1, r2) || differs(g1, g2) || differs(b1, b2) || differs(a1, a2) {
				differing++
			}
		}
	}
	return differing, total
}

func differs(a, b uint32) bool {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return d > colorDifferenceThreshold
}
