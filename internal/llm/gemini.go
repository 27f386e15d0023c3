package llm

// Google Gemini exposes an OpenAI-compatible API at a well-known URL, so
// the message formatting and error mapping from OpenAIProvider are reused
// without modification. Only the base URL and price table differ.
//
// Reference: https://ai.google.dev/gemini-api/docs/openai
const geminiCompatBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// NewGeminiProvider creates a Gemini adapter.
//
// apiKey is a Google AI Studio key; model is a Gemini model name
// (e.g. "gemini-2.0-flash"). baseURL overrides the default compat
// endpoint; leave empty to use the default.
func NewGeminiProvider(apiKey, model, baseURL string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = geminiCompatBaseURL
	}
	return newOpenAICompatProvider("gemini", apiKey, model, baseURL)
}
