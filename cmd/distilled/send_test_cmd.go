package main

import (
	"fmt"

	"distilled/internal/models"
	"distilled/internal/services"

	"github.com/spf13/cobra"
)

var useTemplate bool

// samplePost is what send-test delivers when no source is reachable
var samplePost = models.Post{
	ID:      "ph_374983",
	Source:  models.SourceProductHunt,
	Title:   "Better Auth",
	Content: "Better Auth is an open-source, self-hosted user authentication and management solution that simplifies adding secure auth to any application.",
	URL:     "https://www.producthunt.com/posts/better-auth",
	Votes:   func() *int { v := 420; return &v }(),
}

var sendTestCmd = &cobra.Command{
	Use:   "send-test <phone>",
	Short: "Send a sample digest message to verify the WhatsApp integration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		phone := args[0]
		if useTemplate {
			// 已注册用户同时写投递记录
			if userID, err := a.Users.FindUserIDByPhone(cmd.Context(), phone); err == nil {
				if err := a.Delivery.SendDigestTemplate(cmd.Context(), userID, phone, samplePost); err != nil {
					return err
				}
				fmt.Printf("Template sent to user %s\n", userID)
				return nil
			}

			resp, err := a.WhatsApp.SendTemplate(cmd.Context(), phone, services.DigestTemplateName, services.DigestTemplateLanguage,
				services.DigestTemplateComponents(samplePost, cfg.Digest.MaxContentLength))
			if err != nil {
				return err
			}
			fmt.Printf("Template sent, message id %s\n", resp.MessageID())
			return nil
		}

		resp, err := a.WhatsApp.SendText(cmd.Context(), phone, services.FormatDigestMessage(samplePost))
		if err != nil {
			return err
		}
		fmt.Printf("Message sent, message id %s\n", resp.MessageID())
		return nil
	},
}

func init() {
	sendTestCmd.Flags().BoolVar(&useTemplate, "template", false, "Send the daily_tech_digest template instead of plain text")
}
