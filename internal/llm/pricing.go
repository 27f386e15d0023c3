package llm

import "strings"

// Static per-model price tables, USD per 1K tokens. Loaded once at process
// start (package init) and read-only thereafter. Keys match by substring
// against the configured model name; the longest (most specific) matching
// key wins. Unrecognized models fall back to the vendor's flagship price
// so cost is never silently reported as zero.

type modelPrice struct {
	inputPer1K  float64
	outputPer1K float64
}

var openaiPrices = map[string]modelPrice{
	"gpt-4o-mini":   {0.00015, 0.0006},
	"gpt-4o":        {0.0025, 0.01},
	"gpt-4.1-mini":  {0.0004, 0.0016},
	"gpt-4.1-nano":  {0.0001, 0.0004},
	"gpt-4.1":       {0.002, 0.008},
	"gpt-3.5-turbo": {0.0005, 0.0015},
	"o3-mini":       {0.0011, 0.0044},
}

// openaiFlagship is the conservative fallback for unknown OpenAI models.
var openaiFlagship = modelPrice{0.0025, 0.01}

var anthropicPrices = map[string]modelPrice{
	"claude-3-5-haiku":  {0.0008, 0.004},
	"claude-3-5-sonnet": {0.003, 0.015},
	"claude-sonnet-4":   {0.003, 0.015},
	"claude-opus-4":     {0.015, 0.075},
}

var anthropicFlagship = modelPrice{0.003, 0.015}

var geminiPrices = map[string]modelPrice{
	"gemini-2.0-flash-lite": {0.000075, 0.0003},
	"gemini-2.0-flash":      {0.0001, 0.0004},
	"gemini-1.5-flash":      {0.000075, 0.0003},
	"gemini-1.5-pro":        {0.00125, 0.005},
}

var geminiFlagship = modelPrice{0.00125, 0.005}

// lookupPrice resolves the price entry for model in the given table,
// preferring the longest matching key.
func lookupPrice(table map[string]modelPrice, fallback modelPrice, model string) modelPrice {
	best := ""
	for key := range table {
		if strings.Contains(model, key) && len(key) > len(best) {
			best = key
		}
	}
	if best == "" {
		return fallback
	}
	return table[best]
}

// priceForVendor selects the right table for a vendor name. Local/custom
// endpoints report flagship OpenAI pricing rather than zero — better to
// overestimate than to pretend inference is free.
func priceForVendor(vendor, model string) modelPrice {
	switch vendor {
	case "anthropic":
		return lookupPrice(anthropicPrices, anthropicFlagship, model)
	case "gemini":
		return lookupPrice(geminiPrices, geminiFlagship, model)
	default:
		return lookupPrice(openaiPrices, openaiFlagship, model)
	}
}

// usageFor computes a Usage record from vendor-reported token counts.
func usageFor(price modelPrice, promptTokens, completionTokens int) Usage {
	cost := float64(promptTokens)/1000*price.inputPer1K +
		float64(completionTokens)/1000*price.outputPer1K
	return Usage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		EstimatedCostUSD: cost,
	}
}
