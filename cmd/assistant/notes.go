package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"note-assistant/internal/service"
	"note-assistant/internal/wiring"
)

func chatCmd(opts *cliOptions) *cobra.Command {
	var instruction string

	cmd := &cobra.Command{
		Use:   "chat <note>",
		Short: "Continue the conversation in a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return respond(cmd, opts, service.RespondRequest{
				NotePath:    args[0],
				Mode:        service.ModeChat,
				Instruction: instruction,
			})
		},
	}
	cmd.Flags().StringVarP(&instruction, "instruction", "i", "", "ad-hoc prompt sent after the note")
	return cmd
}

func summarizeCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <note>",
		Short: "Append a summary of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return respond(cmd, opts, service.RespondRequest{
				NotePath: args[0],
				Mode:     service.ModeSummary,
			})
		},
	}
}

func promptCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt <id> <note>",
		Short: "Continue a note with a saved custom prompt",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return respond(cmd, opts, service.RespondRequest{
				NotePath: args[1],
				Mode:     service.ModeChat,
				PromptID: args[0],
			})
		},
	}
}

func respond(cmd *cobra.Command, opts *cliOptions, req service.RespondRequest) error {
	return withContainer(cmd, opts, func(ctx context.Context, c *wiring.Container) error {
		current, err := c.Settings.Current(ctx)
		if err != nil {
			return err
		}
		req.Settings = current

		resp, err := c.Assistant.Respond(ctx, req)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), resp.Reply)
		return nil
	})
}
