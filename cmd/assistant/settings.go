package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"note-assistant/internal/settings"
	"note-assistant/internal/wiring"
)

func settingsCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and migrate settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, opts, func(ctx context.Context, c *wiring.Container) error {
				current, err := c.Settings.Current(ctx)
				if err != nil {
					return err
				}
				printSettings(cmd, current)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate <legacy.json>",
		Short: "Import settings written by an older multi-provider version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			legacy, err := settings.LoadLegacyFile(args[0])
			if err != nil {
				return err
			}
			return withContainer(cmd, opts, func(ctx context.Context, c *wiring.Container) error {
				migrated, err := c.Settings.ImportLegacy(ctx, legacy)
				if err != nil {
					return err
				}
				printSettings(cmd, migrated)
				return nil
			})
		},
	})

	return cmd
}

func printSettings(cmd *cobra.Command, s settings.Settings) {
	out := cmd.OutOrStdout()
	apiKey := "(not set)"
	if s.APIKey != "" {
		apiKey = "(set)"
	}
	fmt.Fprintf(out, "provider:       %s\n", s.Provider)
	fmt.Fprintf(out, "api key:        %s\n", apiKey)
	fmt.Fprintf(out, "model:          %s\n", s.EffectiveModel())
	fmt.Fprintf(out, "assistant name: %s\n", s.AssistantName)
	fmt.Fprintf(out, "language:       %s\n", s.Language)
	fmt.Fprintf(out, "custom prompts: %d\n", len(s.CustomPrompts))
}
