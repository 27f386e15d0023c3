package llm

// NewLocalProvider creates an adapter for a self-hosted OpenAI-compatible
// endpoint (Ollama, llama.cpp server, vLLM, ...). The endpoint URL is
// mandatory — there is no sensible default for "local" — and the factory
// rejects configurations without one before this constructor runs.
//
// Local endpoints still report flagship pricing for unrecognized models;
// the estimate is an upper bound, never a silent zero.
func NewLocalProvider(apiKey, model, endpointURL string) *OpenAIProvider {
	return newOpenAICompatProvider("local", apiKey, model, endpointURL)
}
