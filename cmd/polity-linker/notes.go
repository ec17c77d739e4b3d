package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var notesCmd = &cobra.Command{
	Use:   "notes <concept>",
	Short: "Synthesize study notes for a concept",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		concept := strings.Join(args, " ")
		matches, err := findMatches(ctx, concept)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(matches) == 0 {
			fmt.Fprintf(out, "No mentions found for '%s' in the current material.\n", concept)
			return nil
		}

		key, _ := cmd.Flags().GetString("api-key")
		if key == "" {
			key = cfg.APIKey
		}
		res, err := newNotesService(cfg, logger).Synthesize(ctx, concept, matches, key)
		if err != nil {
			return err
		}

		raw, _ := cmd.Flags().GetBool("raw")
		if raw {
			fmt.Fprintln(out, res.Notes)
			return nil
		}
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
		if err != nil {
			return err
		}
		rendered, err := r.Render(res.Notes)
		if err != nil {
			fmt.Fprintln(os.Stderr, "warning: markdown render failed:", err)
			rendered = res.Notes
		}
		fmt.Fprint(out, rendered)
		return nil
	},
}

func init() {
	notesCmd.Flags().String("api-key", "", "provider API key (default: $AI_API_KEY)")
	notesCmd.Flags().Bool("raw", false, "print markdown without terminal styling")
}
