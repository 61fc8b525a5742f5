package cli

import (
	"encoding/json"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	apperrors "github.com/anime-shed/localens-go/internal/errors"
	"github.com/anime-shed/localens-go/internal/overlay"
	"github.com/anime-shed/localens-go/pkg/geometry"
)

func newOverlayCmd() *cobra.Command {
	var (
		container, media geometry.Size
		active           string
		asJSON           bool
	)
	cmd := &cobra.Command{
		Use:   "overlay <result.json>",
		Short: "Map issue boxes onto a display area",
		Long: `Fit the media into a container of the given size, letterboxed, and print
the pixel rectangle and colors of every issue box.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, issues, err := loadIssues(args[0])
			if err != nil {
				return err
			}
			g, ok := geometry.ContainFit(container, media)
			if !ok {
				return apperrors.NewValidationError("Container and media sizes must be positive.", nil)
			}
			shapes := overlay.Render(g, issues, active)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(shapes)
			}

			d := g.Displayed()
			fmt.Fprintf(out, "media %.0fx%.0f at (%.1f, %.1f), %d of %d issue(s) drawn\n",
				d.Width, d.Height, d.X, d.Y, len(shapes), len(issues))
			table := tablewriter.NewWriter(out)
			table.Header("ID", "Label", "X", "Y", "Width", "Height", "Stroke", "Active")
			for _, s := range shapes {
				activeMark := ""
				if s.Active {
					activeMark = "*"
				}
				if err := table.Append([]string{
					s.IssueID,
					s.Label,
					fmt.Sprintf("%.1f", s.Rect.X),
					fmt.Sprintf("%.1f", s.Rect.Y),
					fmt.Sprintf("%.1f", s.Rect.Width),
					fmt.Sprintf("%.1f", s.Rect.Height),
					s.Colors.Stroke,
					activeMark,
				}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
	f := cmd.Flags()
	f.Float64Var(&container.Width, "width", 1280, "container width in pixels")
	f.Float64Var(&container.Height, "height", 720, "container height in pixels")
	f.Float64Var(&media.Width, "media-width", 1920, "natural media width")
	f.Float64Var(&media.Height, "media-height", 1080, "natural media height")
	f.StringVar(&active, "active", "", "issue id to draw as selected")
	f.BoolVar(&asJSON, "json", false, "print the shapes as JSON")
	return cmd
}
