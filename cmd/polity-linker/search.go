package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katakuxiko/polity-linker/internal/model"
	"github.com/katakuxiko/polity-linker/internal/service"
)

var searchCmd = &cobra.Command{
	Use:   "search <concept>",
	Short: "List every passage that mentions a concept",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		concept := strings.Join(args, " ")
		matches, err := findMatches(cmd.Context(), concept)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(matches) == 0 {
			fmt.Fprintf(out, "No mentions found for '%s' in the current material.\n", concept)
			return nil
		}
		fmt.Fprintf(out, "Found '%s' in %d contexts (%d mentions)\n", concept, len(service.GroupByChapter(matches)), len(matches))
		fmt.Fprintln(out, renderMatches(matches))
		return nil
	},
}

func findMatches(ctx context.Context, concept string) ([]model.Match, error) {
	c, err := loadCorpus(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return service.NewRetriever(cfg.ContextWindow).Find(c, concept)
}
