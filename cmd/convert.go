package cmd

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"art-showcase/pkg/manifest"
	"art-showcase/pkg/models"
)

// newConvertCmd creates a new command for building a manifest from an artwork list or a bucket
func newConvertCmd() *cobra.Command {
	var (
		input      string
		output     string
		prefix     string
		fromBucket bool
	)
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Build the art manifest",
		Long: `Build the art manifest JSON from a list of image URLs, one per line.
Lines that do not start with http:// or https:// are skipped.
With --from-bucket the images in BUCKET_NAME (optionally under --prefix) are listed instead.`,
		Run: func(cmd *cobra.Command, args []string) {
			logger := loggerFromContext(cmd.Context())

			var (
				entries []models.ImageEntry
				err     error
			)
			if fromBucket || bucketName != "" {
				entries, err = convertBucket(cmd.Context(), prefix, logger)
			} else {
				entries, err = convertFile(input)
			}
			if err != nil {
				logger.Fatal("conversion failed", "err", err)
			}

			if err := writeManifest(output, entries); err != nil {
				logger.Fatal("writing manifest", "err", err)
			}
			logger.Info("converted", "images", len(entries), "output", output)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "./public/artwork.csv", "Artwork list to convert, - for stdin")
	cmd.Flags().StringVarP(&output, "output", "o", "./public/art_manifest.json", "Manifest file to write, - for stdout")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Only list bucket objects under this prefix")
	cmd.Flags().BoolVar(&fromBucket, "from-bucket", false, "List images from BUCKET_NAME instead of reading a file")
	return cmd
}

func convertFile(path string) ([]models.ImageEntry, error) {
	if path == "-" {
		return manifest.Convert(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return manifest.Convert(f)
}

func convertBucket(ctx context.Context, prefix string, logger *log.Logger) ([]models.ImageEntry, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.BucketName == "" {
		return nil, errors.New("BUCKET_NAME is required to convert from a bucket")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	logger.Info("listing bucket", "bucket", cfg.BucketName, "prefix", prefix)
	return manifest.FromBucket(ctx, cfg.BucketName, prefix)
}

func writeManifest(path string, entries []models.ImageEntry) error {
	if path == "-" {
		return manifest.Write(os.Stdout, entries)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := manifest.Write(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
