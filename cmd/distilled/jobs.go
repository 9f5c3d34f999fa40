package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"distilled/internal/services"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server with the cron trigger endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return a.Serve(ctx)
	},
}

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Fetch today's posts and send them to every opted-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Digest.Run(context.WithoutCancel(cmd.Context()))
		if err != nil {
			return err
		}
		return printResult(result, func() {
			fmt.Println(result.Message)
			for _, s := range result.Sources {
				status := "ok"
				if s.Err != nil {
					status = s.Err.Error()
				}
				fmt.Printf("  %-13s %2d posts  %s\n", s.Source, s.Count, status)
			}
			fmt.Printf("Users: %d  Sent: %d  Failed: %d\n", result.Users, result.Sent, result.Failed)
			for _, e := range result.Errors {
				fmt.Printf("  user %s: %s\n", e.UserID, e.Error)
			}
		})
	},
}

var pollMessagesCmd = &cobra.Command{
	Use:   "poll-messages",
	Short: "Sync delivery status of sent messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Poller.PollMessageStatus(cmd.Context())
		if err != nil {
			return err
		}
		return printResult(result, func() {
			fmt.Printf("Pending: %d  Matched: %d  Updated: %d\n", result.Pending, result.Matched, result.Updated)
		})
	},
}

var pollInteractionsCmd = &cobra.Command{
	Use:   "poll-interactions",
	Short: "Record 👍/👎 button replies",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Poller.PollInteractions(cmd.Context())
		if err != nil {
			return err
		}
		return printResult(result, func() {
			fmt.Printf("Processed %d button replies from %d messages\n", result.Processed, result.Total)
			for outcome, n := range result.Outcomes {
				fmt.Printf("  %-13s %d\n", outcome, n)
			}
		})
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch posts from every source without storing or sending them",
	RunE: func(cmd *cobra.Command, args []string) error {
		fetcher := services.NewDefaultPostFetcher(cfg.Sources, cfg.Digest)
		posts, reports := fetcher.FetchAll(cmd.Context())

		return printResult(posts, func() {
			for _, r := range reports {
				if r.Err != nil {
					fmt.Printf("%s: %v\n", r.Source, r.Err)
				}
			}
			for _, p := range posts {
				fmt.Printf("[%s] %s (%d)\n    %s\n", p.ID, p.Title, p.VoteCount(), p.URL)
			}
		})
	},
}
