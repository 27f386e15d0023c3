package llm

import (
	"context"
	"sync"
	"time"
)

// MockProvider implements Provider for testing without real API calls.
// Responses are scripted: each call pops the next entry from the queue;
// when the queue is exhausted the last entry repeats.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     [][]ChatMessage
	callCount int
}

// MockResponse is one scripted reply.
type MockResponse struct {
	Content string
	Err     error
}

// NewMockProvider creates a MockProvider with the given scripted replies.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

func (m *MockProvider) Name() string  { return "mock" }
func (m *MockProvider) Model() string { return "mock-model" }

func (m *MockProvider) CostPer1KInputTokens() float64  { return 0.001 }
func (m *MockProvider) CostPer1KOutputTokens() float64 { return 0.002 }

func (m *MockProvider) GenerateCompletion(ctx context.Context, messages []ChatMessage, opts CompletionOptions) (*Completion, error) {
	return m.next(ctx, messages)
}

func (m *MockProvider) GenerateStructuredOutput(ctx context.Context, messages []ChatMessage, schema string, opts CompletionOptions) (*Completion, error) {
	return m.next(ctx, messages)
}

func (m *MockProvider) TestConnection(ctx context.Context) error {
	_, err := m.next(ctx, nil)
	return err
}

func (m *MockProvider) next(ctx context.Context, messages []ChatMessage) (*Completion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.callCount
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	m.callCount++
	m.calls = append(m.calls, messages)

	if idx < 0 {
		return &Completion{Provider: "mock", Model: "mock-model", Timestamp: time.Now().UTC()}, nil
	}

	r := m.responses[idx]
	if r.Err != nil {
		return nil, r.Err
	}
	return &Completion{
		Content:   r.Content,
		Usage:     usageFor(modelPrice{0.001, 0.002}, 100, 200),
		Provider:  "mock",
		Model:     "mock-model",
		Timestamp: time.Now().UTC(),
	}, nil
}

// CallCount returns how many calls the mock has served.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Call returns the messages passed to the i-th call.
func (m *MockProvider) Call(i int) []ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.calls) {
		return nil
	}
	return m.calls[i]
}
