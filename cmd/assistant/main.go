package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"note-assistant/internal/config"
	"note-assistant/internal/llm"
	"note-assistant/internal/service"
	"note-assistant/internal/wiring"
)

var version = "0.1.0"

// cliOptions are the persistent flags shared by every command.
type cliOptions struct {
	vaultPath string
	verbose   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, userMessage(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "assistant",
		Short:         "Chat with your notes through OpenRouter",
		Long:          "assistant sends a markdown note to an OpenRouter model as a conversation and appends the reply to the note.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&opts.vaultPath, "vault", "", "vault directory (overrides VAULT_PATH)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(chatCmd(opts))
	root.AddCommand(summarizeCmd(opts))
	root.AddCommand(promptCmd(opts))
	root.AddCommand(promptsCmd(opts))
	root.AddCommand(settingsCmd(opts))

	return root
}

// withContainer loads configuration, builds the services and runs fn.
func withContainer(cmd *cobra.Command, opts *cliOptions, fn func(ctx context.Context, c *wiring.Container) error) error {
	if opts.vaultPath != "" {
		if err := os.Setenv("VAULT_PATH", opts.vaultPath); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.verbose {
		cfg.LogLevel = slog.LevelDebug
	}
	// stdout carries only command output.
	slog.SetDefault(cfg.NewLogger(cmd.ErrOrStderr()))

	container, err := wiring.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = container.Close()
	}()

	return fn(cmd.Context(), container)
}

// userMessage renders an error the way it is shown to the user.
func userMessage(err error) string {
	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		return llmErr.Message
	}
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	return "Error: " + err.Error()
}
