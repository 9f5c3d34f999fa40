package whatsapp

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"distilled/internal/logger"

	"go.uber.org/zap"
)

// Button 交互消息的回复按钮，WhatsApp 最多允许 3 个
type Button struct {
	ID    string
	Title string
}

// SendResponse Cloud API 发送接口的返回
type SendResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// MessageID 返回服务商消息 ID，没有时为空字符串
func (r *SendResponse) MessageID() string {
	if r == nil || len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].ID
}

type TemplateParameter struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type TemplateComponent struct {
	Type       string              `json:"type"`
	Parameters []TemplateParameter `json:"parameters"`
}

// TextParams 生成 body 组件，按顺序填充 {{1}}..{{n}}
func TextParams(values ...string) TemplateComponent {
	params := make([]TemplateParameter, 0, len(values))
	for _, v := range values {
		params = append(params, TemplateParameter{Type: "text", Text: v})
	}
	return TemplateComponent{Type: "body", Parameters: params}
}

type ButtonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Interactive struct {
	Type        string       `json:"type"`
	ButtonReply *ButtonReply `json:"button_reply,omitempty"`
}

// Message 服务商消息记录（入站或出站），原始 JSON 保留在 Raw
type Message struct {
	ID          string       `json:"id"`
	From        string       `json:"from"`
	To          string       `json:"to,omitempty"`
	Type        string       `json:"type"`
	Direction   string       `json:"direction,omitempty"`
	Interactive *Interactive `json:"interactive,omitempty"`
	Status      string       `json:"status,omitempty"`
	Timestamp   Timestamp    `json:"timestamp"`

	Raw json.RawMessage `json:"-"`
}

func (m *Message) UnmarshalJSON(data []byte) error {
	type alias Message
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*m = Message(a)
	m.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// ButtonReplyID 若消息是按钮回复则返回按钮 ID
func (m *Message) ButtonReplyID() (string, bool) {
	if m.Type != "interactive" || m.Interactive == nil || m.Interactive.ButtonReply == nil {
		return "", false
	}
	if m.Interactive.ButtonReply.ID == "" {
		return "", false
	}
	return m.Interactive.ButtonReply.ID, true
}

// Payload 原始 JSON，用于状态日志
func (m *Message) Payload() string {
	if len(m.Raw) > 0 {
		return string(m.Raw)
	}
	b, _ := json.Marshal(m)
	return string(b)
}

// MessagesPage 消息查询结果
type MessagesPage struct {
	Data []Message `json:"data"`
}

// Timestamp 兼容 Unix 秒（数字或字符串）、RFC3339 和 "2006-01-02 15:04:05" (UTC)
// 无法识别的格式记为零值，不影响同一页其他消息的解析
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{time.RFC3339Nano, time.DateTime}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	t.Time = time.Time{}
	if s == "" || s == "null" {
		return nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Time = time.Unix(secs, 0).UTC()
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	logger.Log.Warn("无法解析消息时间戳", zap.String("timestamp", s))
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(strconv.Quote(strconv.FormatInt(t.Unix(), 10))), nil
}

// MessageQuery 查询参数
type MessageQuery struct {
	Since     time.Time
	Limit     int
	Direction string // "inbound" / "outbound"，为空时不过滤
}

// APIError 服务商返回非 2xx
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api error: status %d: %s", e.StatusCode, e.Body)
}
