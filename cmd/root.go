package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"art-showcase/pkg/config"
)

// Configuration flags
var (
	manifestURL string
	layoutFile  string
	adminKey    string
	bucketName  string
	portNumber  string
	verbose     bool
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "art-showcase",
		Short: "Art Showcase serves a scroll-driven portfolio of artwork images",
		Long: `Art Showcase is a command line application that loads an artwork manifest,
partitions it into page sections and serves them as a scroll-animated showcase.
It can also convert artwork lists into manifests and preview the motion in a terminal.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	// Define persistent flags that will be available for all commands
	rootCmd.PersistentFlags().StringVarP(&manifestURL, "manifest", "m", "", "Set the MANIFEST_URL (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&layoutFile, "layout", "l", "", "Set the LAYOUT_FILE (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&adminKey, "admin-key", "s", "", "Set the ADMIN_KEY (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&bucketName, "bucket", "b", "", "Set the BUCKET_NAME (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&portNumber, "port", "p", "", "Set the PORT (overrides environment variable)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Add commands to root
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newListImagesCmd())
	rootCmd.AddCommand(newShowSectionsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newCheckCmd())

	return rootCmd
}

// LoadConfig loads configuration with respect to command line flags
func LoadConfig() (*config.Config, error) {
	// Set environment variables from flags if provided
	overrides := map[string]string{
		"MANIFEST_URL": manifestURL,
		"LAYOUT_FILE":  layoutFile,
		"ADMIN_KEY":    adminKey,
		"BUCKET_NAME":  bucketName,
		"PORT":         portNumber,
	}
	for key, value := range overrides {
		if value != "" {
			os.Setenv(key, value)
		}
	}

	// Load configuration from environment variables (potentially set above)
	return config.Load()
}

// mustLoad loads the configuration, exiting on invalid configuration
func mustLoad(cmd *cobra.Command) (*config.Config, *log.Logger) {
	logger := loggerFromContext(cmd.Context())
	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal("failed to load configuration", "err", err)
	}
	return cfg, logger
}
