package llm

// AnthropicProvider implements Provider for Anthropic Claude models.
//
// Anthropic's Messages API differs from the OpenAI shape in two ways that
// matter here:
//   - The system prompt is a top-level field, not a message role.
//   - There is no native JSON mode, so structured calls embed the schema
//     as text with an explicit JSON-only instruction.
//
// Both quirks are normalized inside this adapter; callers see the same
// contract as every other vendor.

import (
	"context"
	"fmt"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

// defaultMaxTokens is sent when the caller does not set a limit; Anthropic
// requires the field.
const defaultMaxTokens int64 = 4096

// pingModel is the cheapest model used for connectivity tests only.
const anthropicPingModel = "claude-3-5-haiku-latest"

// jsonOnlyInstruction is appended to the system prompt on structured calls.
const jsonOnlyInstruction = "Respond with a single valid JSON object only. No prose, no markdown fences, no explanations before or after the JSON."

// AnthropicProvider implements Provider using the official Anthropic SDK.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
	price  modelPrice
}

// NewAnthropicProvider creates an Anthropic adapter.
// baseURL overrides the default https://api.anthropic.com endpoint; leave
// empty to use the default.
func NewAnthropicProvider(apiKey, model, baseURL string) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	c := anthropic.NewClient(opts...)
	return &AnthropicProvider{
		client: &c,
		model:  model,
		price:  priceForVendor("anthropic", model),
	}
}

func (p *AnthropicProvider) Name() string  { return "anthropic" }
func (p *AnthropicProvider) Model() string { return p.model }

func (p *AnthropicProvider) CostPer1KInputTokens() float64  { return p.price.inputPer1K }
func (p *AnthropicProvider) CostPer1KOutputTokens() float64 { return p.price.outputPer1K }

// GenerateCompletion sends a free-text request to the Messages API.
func (p *AnthropicProvider) GenerateCompletion(ctx context.Context, messages []ChatMessage, opts CompletionOptions) (*Completion, error) {
	return p.complete(ctx, messages, opts)
}

// GenerateStructuredOutput embeds the schema description and a JSON-only
// instruction in the system prompt, since Anthropic has no request flag
// for schema-guided decoding.
func (p *AnthropicProvider) GenerateStructuredOutput(ctx context.Context, messages []ChatMessage, schema string, opts CompletionOptions) (*Completion, error) {
	augmented := appendToSystem(messages, schema+"\n"+jsonOnlyInstruction)
	return p.complete(ctx, augmented, opts)
}

// TestConnection issues a one-token call on the cheapest model.
func (p *AnthropicProvider) TestConnection(ctx context.Context) error {
	_, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(anthropicPingModel),
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return wrapVendorError("anthropic", err)
	}
	return nil
}

func (p *AnthropicProvider) complete(ctx context.Context, messages []ChatMessage, opts CompletionOptions) (*Completion, error) {
	systemBlocks, chatMessages := splitSystemMessages(messages)

	maxTokens := defaultMaxTokens
	if opts.MaxTokens > 0 {
		maxTokens = int64(opts.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxTokens,
		Messages:  chatMessages,
		System:    systemBlocks,
	}
	if opts.Temperature > 0 {
		params.Temperature = param.NewOpt(opts.Temperature)
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, wrapVendorError("anthropic", err)
	}

	content := collectText(resp)
	if content == "" {
		return nil, &Error{Provider: "anthropic", Err: fmt.Errorf("response contained no text blocks")}
	}

	return &Completion{
		Content:   content,
		Usage:     usageFor(p.price, int(resp.Usage.InputTokens), int(resp.Usage.OutputTokens)),
		Provider:  "anthropic",
		Model:     p.model,
		Timestamp: time.Now().UTC(),
	}, nil
}

// splitSystemMessages separates system messages into Anthropic's top-level
// system field and converts the rest into MessageParams.
func splitSystemMessages(messages []ChatMessage) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var systemBlocks []anthropic.TextBlockParam
	var chatMessages []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: msg.Content})
		case RoleAssistant:
			chatMessages = append(chatMessages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		default:
			chatMessages = append(chatMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}
	return systemBlocks, chatMessages
}

// collectText concatenates the text blocks of a response. Other block
// types (thinking etc.) are ignored.
func collectText(resp *anthropic.Message) string {
	content := ""
	for _, block := range resp.Content {
		if block.Type == "text" {
			if content != "" {
				content += "\n"
			}
			content += block.Text
		}
	}
	return content
}
