package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anime-shed/localens-go/internal/service"
)

func newAlternativesCmd() *cobra.Command {
	var (
		api      string
		language string
		rank     bool
	)
	cmd := &cobra.Command{
		Use:   "alternatives <text>",
		Short: "Suggest shorter replacements for a localized string",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, backend, err := loadBackend(api)
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")

			ctx, cancel := context.WithTimeout(commandContext(cmd), cfg.RequestTimeout)
			defer cancel()
			svc := service.NewAlternativesService(backend, nil, 1)
			alts, err := svc.Generate(ctx, text, language)
			if err != nil {
				return err
			}
			if rank {
				alts = service.RankAlternatives(text, alts)
			}
			for _, a := range alts {
				fmt.Fprintln(cmd.OutOrStdout(), a)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&api, "api", "", "analysis API base URL; the mock backend is used when empty and USE_MOCK is set")
	cmd.Flags().StringVarP(&language, "lang", "l", "ko-KR", "language code of the text")
	cmd.Flags().BoolVar(&rank, "rank", false, "order shortest first, then closest to the original")
	return cmd
}
