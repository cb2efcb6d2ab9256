package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"art-showcase/pkg/services"
)

// newShowSectionsCmd creates a new command for showing how the images are partitioned
func newShowSectionsCmd() *cobra.Command {
	var (
		progress float64
		detail   string
	)
	cmd := &cobra.Command{
		Use:   "show-sections [name]",
		Short: "Show the page sections",
		Long: `Show how the manifest images are partitioned into page sections.
With a section name the cards of that section are listed with their transforms at --progress.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			svc := loadService(cmd)
			if len(args) > 0 {
				detail = args[0]
			}
			showSections(svc, detail, progress)
		},
	}
	cmd.Flags().Float64Var(&progress, "progress", 0, "Scroll progress the transforms are computed at")
	return cmd
}

// showSections displays the section summary, or the cards of one section
func showSections(svc *services.Service, name string, progress float64) {
	sections, err := svc.Sections(progress)
	if err != nil {
		fmt.Println(styleFailed.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}

	if name == "" {
		fmt.Println(styleTitle.Render("Sections"))
		t := newTable("Name", "Kind", "Cards", "Seed", "First image")
		for _, s := range sections {
			first := "-"
			if len(s.Cards) > 0 {
				first = s.Cards[0].Entry.Image
			}
			t.Row(s.Name, s.Kind, strconv.Itoa(len(s.Cards)), strconv.FormatUint(s.Seed, 10), first)
		}
		fmt.Println(t.Render())
		fmt.Println(styleDim.Render(fmt.Sprintf("Total: %d sections from %d images", len(sections), len(svc.Store().Images()))))
		return
	}

	for _, s := range sections {
		if s.Name != name {
			continue
		}
		fmt.Println(styleTitle.Render(fmt.Sprintf("Section: %s (%s)", s.Name, s.Kind)))
		t := newTable("#", "Image", "Position", "Transform")
		for _, c := range s.Cards {
			t.Row(strconv.Itoa(c.Index+1), c.Entry.Image, c.Layout.PositionStyle(), c.Transform.CSS())
		}
		fmt.Println(t.Render())
		fmt.Println(styleDim.Render(fmt.Sprintf("Progress: %.2f", progress)))
		return
	}

	fmt.Println(styleFailed.Render(fmt.Sprintf("Error: section %q not found", name)))
	os.Exit(1)
}
