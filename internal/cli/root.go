// Package cli implements the localens command line: analyze media through the
// API or the mock backend, then inspect, map and export the issues offline.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	apperrors "github.com/anime-shed/localens-go/internal/errors"
	"github.com/anime-shed/localens-go/internal/logger"
)

// Version is set at build time
var Version = "dev"

type globalFlags struct {
	verbose bool
	noColor bool
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:                   "localens [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "LocaLens finds and reviews localization issues in game media.",
		Long: `LocaLens sends screenshots or a gameplay video to the analysis API and
lists the localization issues it finds. Saved results can be mapped onto a
display size, laid out on a timeline or exported as JSON, CSV or Markdown.`,
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := logrus.WarnLevel
			if g.verbose {
				level = logrus.DebugLevel
			}
			logger.UseText(cmd.ErrOrStderr(), level)
			if g.noColor {
				color.NoColor = true
			}
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log requests and retries")
	root.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newAnalyzeCmd(),
		newExportCmd(),
		newOverlayCmd(),
		newTimelineCmd(),
		newAlternativesCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		logger.WithError(err).Debug("Command failed")
		fmt.Fprintf(os.Stderr, "Error: %s\n", apperrors.UserMessage(err))
		os.Exit(1)
	}
}
