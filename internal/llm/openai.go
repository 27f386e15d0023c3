package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider against any OpenAI-compatible chat
// completion endpoint. It also backs the "gemini" and "local" vendors,
// which differ only in base URL and price table.
type OpenAIProvider struct {
	client *openai.Client
	name   string
	model  string
	price  modelPrice
}

// pingMaxTokens keeps TestConnection as cheap as the API allows.
const pingMaxTokens = 1

// openaiPingModel is the cheapest OpenAI model, used for connectivity
// tests only.
const openaiPingModel = "gpt-4o-mini"

// NewOpenAIProvider creates an adapter for the OpenAI API.
// If baseURL is empty the library default (https://api.openai.com/v1) is used.
func NewOpenAIProvider(apiKey, model, baseURL string) *OpenAIProvider {
	return newOpenAICompatProvider("openai", apiKey, model, baseURL)
}

func newOpenAICompatProvider(name, apiKey, model, baseURL string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		name:   name,
		model:  model,
		price:  priceForVendor(name, model),
	}
}

func (p *OpenAIProvider) Name() string  { return p.name }
func (p *OpenAIProvider) Model() string { return p.model }

func (p *OpenAIProvider) CostPer1KInputTokens() float64  { return p.price.inputPer1K }
func (p *OpenAIProvider) CostPer1KOutputTokens() float64 { return p.price.outputPer1K }

// GenerateCompletion sends a free-text chat completion request.
func (p *OpenAIProvider) GenerateCompletion(ctx context.Context, messages []ChatMessage, opts CompletionOptions) (*Completion, error) {
	req := p.baseRequest(messages, opts)
	return p.complete(ctx, req)
}

// GenerateStructuredOutput requests JSON output. OpenAI-compatible
// endpoints have native JSON mode, so the response_format flag is set and
// the schema is stated once in the system prompt — no duplicated
// "JSON only" instruction that could conflict with the flag.
func (p *OpenAIProvider) GenerateStructuredOutput(ctx context.Context, messages []ChatMessage, schema string, opts CompletionOptions) (*Completion, error) {
	augmented := appendToSystem(messages, schema)
	req := p.baseRequest(augmented, opts)
	req.ResponseFormat = &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}
	return p.complete(ctx, req)
}

// TestConnection issues a minimal one-token call to confirm the credential
// is valid.
func (p *OpenAIProvider) TestConnection(ctx context.Context) error {
	req := openai.ChatCompletionRequest{
		Model: p.pingModel(),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "ping"},
		},
		MaxTokens: pingMaxTokens,
	}
	_, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return wrapVendorError(p.name, err)
	}
	return nil
}

// pingModel picks the model for connectivity tests. The OpenAI vendor
// always has the cheap model available; gemini and local endpoints only
// serve the configured model.
func (p *OpenAIProvider) pingModel() string {
	if p.name == "openai" {
		return openaiPingModel
	}
	return p.model
}

func (p *OpenAIProvider) baseRequest(messages []ChatMessage, opts CompletionOptions) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: convertMessages(messages),
	}
	if opts.Temperature > 0 {
		req.Temperature = float32(opts.Temperature)
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}
	return req
}

func (p *OpenAIProvider) complete(ctx context.Context, req openai.ChatCompletionRequest) (*Completion, error) {
	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, wrapVendorError(p.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Provider: p.name, Err: fmt.Errorf("no choices returned")}
	}

	return &Completion{
		Content:   resp.Choices[0].Message.Content,
		Usage:     usageFor(p.price, resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
		Provider:  p.name,
		Model:     p.model,
		Timestamp: time.Now().UTC(),
	}, nil
}

// convertMessages maps our message format onto the OpenAI wire format.
// OpenAI accepts the system prompt as an ordinary message-array entry.
func convertMessages(messages []ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case RoleSystem:
			role = openai.ChatMessageRoleSystem
		case RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	return out
}

// appendToSystem returns a copy of messages with extra appended to the
// first system message, or prepended as a new system message when none
// exists. The input slice is never mutated.
func appendToSystem(messages []ChatMessage, extra string) []ChatMessage {
	out := make([]ChatMessage, len(messages))
	copy(out, messages)

	for i := range out {
		if out[i].Role == RoleSystem {
			out[i].Content = out[i].Content + "\n\n" + extra
			return out
		}
	}
	return append([]ChatMessage{{Role: RoleSystem, Content: extra}}, out...)
}
