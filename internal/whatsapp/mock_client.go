package whatsapp

import (
	"context"
	"fmt"
	"sync"
)

// MockCall records a method call for assertion
type MockCall struct {
	Method  string
	Phone   string
	Body    string
	Buttons []Button
	Header  string
	Footer  string
}

// MockClient is an in-memory Client for tests. Set the *Func fields to override
// behaviour; by default sends succeed with sequential message ids.
type MockClient struct {
	mu    sync.Mutex
	Calls []MockCall
	seq   int

	SendInteractiveButtonsFunc func(phone, body string, buttons []Button, header, footer string) (*SendResponse, error)
	SendTextFunc               func(phone, body string) (*SendResponse, error)
	SendTemplateFunc           func(phone, templateName, languageCode string, components []TemplateComponent) (*SendResponse, error)
	QueryMessagesFunc          func(q MessageQuery) (*MessagesPage, error)
}

var _ Client = (*MockClient)(nil)

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) record(call MockCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

func (m *MockClient) nextResponse() *SendResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	resp := &SendResponse{MessagingProduct: "whatsapp"}
	resp.Messages = append(resp.Messages, struct {
		ID string `json:"id"`
	}{ID: fmt.Sprintf("wamid.mock.%d", m.seq)})
	return resp
}

// CallCount returns how many times method was called
func (m *MockClient) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (m *MockClient) SendText(ctx context.Context, phone, body string) (*SendResponse, error) {
	m.record(MockCall{Method: "SendText", Phone: phone, Body: body})
	if m.SendTextFunc != nil {
		return m.SendTextFunc(phone, body)
	}
	return m.nextResponse(), nil
}

func (m *MockClient) SendInteractiveButtons(ctx context.Context, phone, body string, buttons []Button, header, footer string) (*SendResponse, error) {
	m.record(MockCall{Method: "SendInteractiveButtons", Phone: phone, Body: body, Buttons: buttons, Header: header, Footer: footer})
	if m.SendInteractiveButtonsFunc != nil {
		return m.SendInteractiveButtonsFunc(phone, body, buttons, header, footer)
	}
	return m.nextResponse(), nil
}

func (m *MockClient) SendTemplate(ctx context.Context, phone, templateName, languageCode string, components []TemplateComponent) (*SendResponse, error) {
	m.record(MockCall{Method: "SendTemplate", Phone: phone, Body: templateName})
	if m.SendTemplateFunc != nil {
		return m.SendTemplateFunc(phone, templateName, languageCode, components)
	}
	return m.nextResponse(), nil
}

func (m *MockClient) QueryMessages(ctx context.Context, q MessageQuery) (*MessagesPage, error) {
	m.record(MockCall{Method: "QueryMessages"})
	if m.QueryMessagesFunc != nil {
		return m.QueryMessagesFunc(q)
	}
	return &MessagesPage{}, nil
}
