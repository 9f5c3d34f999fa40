package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"distilled/internal/logger"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client 消息服务商的最小接口
type Client interface {
	SendText(ctx context.Context, phone, body string) (*SendResponse, error)
	SendInteractiveButtons(ctx context.Context, phone, body string, buttons []Button, header, footer string) (*SendResponse, error)
	SendTemplate(ctx context.Context, phone, templateName, languageCode string, components []TemplateComponent) (*SendResponse, error)
	QueryMessages(ctx context.Context, q MessageQuery) (*MessagesPage, error)
}

// KapsoClient 通过 Kapso 代理调用 WhatsApp Cloud API
type KapsoClient struct {
	http          *resty.Client
	phoneNumberID string
	apiVersion    string
}

var _ Client = (*KapsoClient)(nil)

type Options struct {
	BaseURL       string
	APIKey        string
	PhoneNumberID string
	APIVersion    string
	Timeout       time.Duration
}

func NewKapsoClient(opts Options) *KapsoClient {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.APIVersion == "" {
		opts.APIVersion = "v24.0"
	}

	httpClient := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("X-API-Key", opts.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "Distilled-App/1.0")

	httpClient.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logger.Log.Debug("WhatsApp request", zap.String("method", req.Method), zap.String("url", req.URL))
		return nil
	})
	httpClient.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Log.Debug("WhatsApp response", zap.Int("status", resp.StatusCode()))
		return nil
	})

	return &KapsoClient{
		http:          httpClient,
		phoneNumberID: opts.PhoneNumberID,
		apiVersion:    opts.APIVersion,
	}
}

func (c *KapsoClient) messagesPath() string {
	return fmt.Sprintf("/%s/%s/messages", c.apiVersion, c.phoneNumberID)
}

func (c *KapsoClient) send(ctx context.Context, payload map[string]any) (*SendResponse, error) {
	if c.phoneNumberID == "" {
		return nil, errors.New("whatsapp phone number id not configured")
	}
	payload["messaging_product"] = "whatsapp"
	payload["recipient_type"] = "individual"

	var out SendResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&out).
		Post(c.messagesPath())
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return &out, nil
}

func (c *KapsoClient) SendText(ctx context.Context, phone, body string) (*SendResponse, error) {
	return c.send(ctx, map[string]any{
		"to":   phone,
		"type": "text",
		"text": map[string]any{"body": body, "preview_url": true},
	})
}

func (c *KapsoClient) SendInteractiveButtons(ctx context.Context, phone, body string, buttons []Button, header, footer string) (*SendResponse, error) {
	if len(buttons) == 0 || len(buttons) > 3 {
		return nil, fmt.Errorf("interactive message needs 1-3 buttons, got %d", len(buttons))
	}

	replies := make([]map[string]any, 0, len(buttons))
	for _, b := range buttons {
		replies = append(replies, map[string]any{
			"type":  "reply",
			"reply": map[string]string{"id": b.ID, "title": b.Title},
		})
	}

	interactive := map[string]any{
		"type":   "button",
		"body":   map[string]string{"text": body},
		"action": map[string]any{"buttons": replies},
	}
	if header != "" {
		interactive["header"] = map[string]string{"type": "text", "text": header}
	}
	if footer != "" {
		interactive["footer"] = map[string]string{"text": footer}
	}

	return c.send(ctx, map[string]any{
		"to":          phone,
		"type":        "interactive",
		"interactive": interactive,
	})
}

func (c *KapsoClient) SendTemplate(ctx context.Context, phone, templateName, languageCode string, components []TemplateComponent) (*SendResponse, error) {
	return c.send(ctx, map[string]any{
		"to":   phone,
		"type": "template",
		"template": map[string]any{
			"name":       templateName,
			"language":   map[string]string{"code": languageCode},
			"components": components,
		},
	})
}

// QueryMessages 查询 since 之后的消息记录
func (c *KapsoClient) QueryMessages(ctx context.Context, q MessageQuery) (*MessagesPage, error) {
	params := map[string]string{
		"since": q.Since.UTC().Format(time.RFC3339),
	}
	if q.Limit > 0 {
		params["limit"] = strconv.Itoa(q.Limit)
	}
	if q.Direction != "" {
		params["direction"] = q.Direction
	}

	var page MessagesPage
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&page).
		Get(c.messagesPath())
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return &page, nil
}
