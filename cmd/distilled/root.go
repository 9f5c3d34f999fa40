package main

import (
	"encoding/json"
	"fmt"
	"os"

	"distilled/internal/app"
	"distilled/internal/config"
	"distilled/internal/logger"

	"github.com/spf13/cobra"
)

var (
	output   string = "text" // "text" or "json"
	logLevel string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "distilled",
	Short: "Distilled - daily tech digest over WhatsApp",
	Long: `Distilled fetches posts from Product Hunt, GitHub, Hacker News and Reddit,
sends them to opted-in users over WhatsApp and learns from their 👍/👎 replies.

Every job the scheduler triggers over HTTP can also be run from here.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if output != "text" && output != "json" {
			return fmt.Errorf("unknown output format %q", output)
		}
		return logger.Initialize(cfg.LogLevel, cfg.LogFile)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&output, "output", output, "Output format: text or json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(pollMessagesCmd)
	rootCmd.AddCommand(pollInteractionsCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(sendTestCmd)
}

func newApp() (*app.App, error) {
	return app.New(cfg)
}

// printResult prints v as indented JSON or through the text formatter
func printResult(v any, text func()) error {
	if output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text()
	return nil
}
