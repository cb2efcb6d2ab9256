package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"art-showcase/pkg/services"
)

// newCheckCmd creates a new command for validating the manifest images
func newCheckCmd() *cobra.Command {
	var (
		concurrency int
		onlyFailed  bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that every image can be displayed",
		Long: `Download every manifest image, decode it and report images that are unreachable,
cannot be decoded or are a single solid colour. Exits with status 1 when any image fails.`,
		Run: func(cmd *cobra.Command, args []string) {
			svc := loadService(cmd)
			logger := loggerFromContext(cmd.Context())

			images := svc.Store().Images()
			logger.Info("checking images", "count", len(images), "concurrency", concurrency)
			results := services.CheckImages(cmd.Context(), nil, images, concurrency)

			if failed := printCheckResults(results, onlyFailed); failed > 0 {
				os.Exit(1)
			}
		},
	}
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "Number of images downloaded at once")
	cmd.Flags().BoolVar(&onlyFailed, "only-failed", false, "Only list images that failed")
	return cmd
}

// printCheckResults renders the results and returns the number of failures
func printCheckResults(results []services.CheckResult, onlyFailed bool) int {
	t := newTable("Status", "Image", "Size", "Detail")
	failed := 0
	for _, r := range results {
		ok := r.Status == services.StatusOK
		if !ok {
			failed++
		}
		if onlyFailed && ok {
			continue
		}

		status := styleOK.Render(r.Status)
		if !ok {
			status = styleFailed.Render(r.Status)
		}
		size := ""
		if r.Width > 0 {
			size = fmt.Sprintf("%dx%d %s", r.Width, r.Height, r.Format)
		}
		t.Row(status, r.Image, size, r.Error)
	}

	fmt.Println(styleTitle.Render("Image Check"))
	fmt.Println(t.Render())
	fmt.Println(styleDim.Render(fmt.Sprintf("Checked %d images, %d failed", len(results), failed)))
	return failed
}
