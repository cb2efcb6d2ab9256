package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"art-showcase/pkg/services"
)

// newExportCmd creates a new command for exporting the sampled transform table
func newExportCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "export [format]",
		Short: "Export the transform table",
		Long: `Export the transforms of every animated section sampled at --steps+1 scroll
positions in the specified format. Currently supported formats: json.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			format := "json"
			if len(args) > 0 {
				format = args[0]
			}
			if format != "json" {
				fmt.Printf("Unsupported export format: %s\n", format)
				fmt.Println("Supported formats: json")
				os.Exit(1)
			}

			svc := loadService(cmd)
			exportFrames(svc, steps)
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 20, "Number of intervals the scroll range is sampled at")
	return cmd
}

// exportFrames prints the frame table as indented JSON
func exportFrames(svc *services.Service, steps int) {
	frames, err := svc.Frames(steps)
	if err != nil {
		fmt.Printf("Error building frames: %v\n", err)
		os.Exit(1)
	}

	data, err := json.MarshalIndent(frames, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(data))
}
