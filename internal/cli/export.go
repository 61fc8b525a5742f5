package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anime-shed/localens-go/internal/config"
	"github.com/anime-shed/localens-go/pkg/export"
	"github.com/anime-shed/localens-go/pkg/issueindex"
	"github.com/anime-shed/localens-go/pkg/models"
)

func newExportCmd() *cobra.Command {
	var (
		report   reportOptions
		useSink  bool
		severity string
	)
	cmd := &cobra.Command{
		Use:   "export <result.json>",
		Short: "Convert a saved result to JSON, CSV or Markdown",
		Long: `Convert a saved result (from "analyze --save") or a JSON issue array.
The report goes to stdout unless --out or --sink is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, issues, err := loadIssues(args[0])
			if err != nil {
				return err
			}
			issues = issueindex.FilterBy(issues, issueindex.Filter{Severity: models.Severity(severity)})

			if report.outDir == "" && !useSink {
				format, err := export.ParseFormat(report.format)
				if err != nil {
					return err
				}
				data, err := export.Render(issues, format)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			loc, err := storeReport(commandContext(cmd), cfg, report, issues)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), loc)
			return nil
		},
	}
	addReportFlags(cmd, &report, string(export.FormatJSON))
	cmd.Flags().BoolVar(&useSink, "sink", false, "store the report in REPORT_SINK")
	cmd.Flags().StringVar(&severity, "severity", "", "only export issues of this severity")
	return cmd
}
