package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edgard/lingobot/internal/config"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and print a redacted summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "configuration is invalid: %v\n", err)
				return err
			}
			return writeSummary(cmd.OutOrStdout(), cfg)
		},
	}
}

// writeSummary prints the effective configuration with secrets redacted.
func writeSummary(w io.Writer, cfg *config.Config) error {
	codes := make([]string, 0, len(cfg.Language.Available))
	for _, l := range cfg.Language.Available {
		codes = append(codes, l.Code)
	}

	storage := "memory"
	if cfg.Database.Path != "" {
		storage = "sqlite " + cfg.Database.Path
	}

	gate := "disabled"
	if cfg.Gate.Enabled {
		gate = "enabled " + cfg.Gate.Channel + " (" + cfg.Gate.JoinLink() + ")"
	}

	lines := [][2]string{
		{"telegram token", config.Redact(cfg.Telegram.Token)},
		{"provider", cfg.Completion.Provider},
		{"model", cfg.Completion.Model},
		{"base url", cfg.Completion.BaseURL},
		{"api key", config.Redact(cfg.Completion.APIKey())},
		{"languages", strings.Join(codes, ", ") + " (default " + cfg.Language.Default + ")"},
		{"subscription gate", gate},
		{"sessions", storage},
		{"creator", cfg.Bot.CreatorName + " @" + cfg.Bot.CreatorUsername},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%-18s %s\n", l[0]+":", l[1]); err != nil {
			return err
		}
	}
	return nil
}
