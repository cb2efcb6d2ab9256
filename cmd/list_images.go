package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"art-showcase/pkg/services"
)

// newListImagesCmd creates a new command for listing the manifest images
func newListImagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-images",
		Short: "List all images",
		Long:  `List the images of the manifest after empty and duplicate entries were removed.`,
		Run: func(cmd *cobra.Command, args []string) {
			svc := loadService(cmd)
			listImages(svc)
		},
	}
}

// loadService starts the singleton service and waits for the manifest
func loadService(cmd *cobra.Command) *services.Service {
	cfg, logger := mustLoad(cmd)
	svc := services.InitService(cfg, logger)

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	svc.Preload(ctx)
	return svc
}

// listImages displays every image with its alt text
func listImages(svc *services.Service) {
	images := svc.Store().Images()

	fmt.Println(styleTitle.Render("Artwork Images"))

	t := newTable("#", "Alt", "Image")
	for i, img := range images {
		t.Row(strconv.Itoa(i+1), img.Alt(), img.Image)
	}
	fmt.Println(t.Render())

	fmt.Println(styleDim.Render(fmt.Sprintf("Total: %d images", len(images))))
}
