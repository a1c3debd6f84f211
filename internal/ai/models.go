package ai

import (
	"encoding/json"
	"os"
	"sort"
)

// ModelInfo carries metadata and illustrative pricing for cost hints.
type ModelInfo struct {
	Name          string
	Provider      string
	ContextTokens int     // approximate context window
	InputPerK     float64 // USD per 1K input tokens
	OutputPerK    float64 // USD per 1K output tokens
}

var models = map[string]ModelInfo{
	"deepseek-chat": {
		Name:          "deepseek-chat",
		Provider:      ProviderDeepSeek,
		ContextTokens: 64000,
		InputPerK:     0.00027,
		OutputPerK:    0.0011,
	},
	"deepseek-reasoner": {
		Name:          "deepseek-reasoner",
		Provider:      ProviderDeepSeek,
		ContextTokens: 64000,
		InputPerK:     0.00055,
		OutputPerK:    0.00219,
	},
	"deepseek/deepseek-chat": {
		Name:          "deepseek/deepseek-chat",
		Provider:      ProviderOpenRouter,
		ContextTokens: 64000,
		InputPerK:     0.0003,
		OutputPerK:    0.0012,
	},
	"openai/gpt-4o-mini": {
		Name:          "openai/gpt-4o-mini",
		Provider:      ProviderOpenRouter,
		ContextTokens: 128000,
		InputPerK:     0.0006,
		OutputPerK:    0.0024,
	},
	"gpt-4o-mini": {
		Name:          "gpt-4o-mini",
		Provider:      ProviderOpenAI,
		ContextTokens: 128000,
		InputPerK:     0.00015,
		OutputPerK:    0.0006,
	},
	"gpt-4o": {
		Name:          "gpt-4o",
		Provider:      ProviderOpenAI,
		ContextTokens: 128000,
		InputPerK:     0.0025,
		OutputPerK:    0.01,
	},
	"gemini-1.5-flash": {
		Name:          "gemini-1.5-flash",
		Provider:      ProviderGemini,
		ContextTokens: 1000000,
		InputPerK:     0.0002,
		OutputPerK:    0.0008,
	},
	"gemini-1.5-pro": {
		Name:          "gemini-1.5-pro",
		Provider:      ProviderGemini,
		ContextTokens: 1000000,
		InputPerK:     0.00125,
		OutputPerK:    0.005,
	},
	"llama3.1:8b-instruct": {
		Name:          "llama3.1:8b-instruct",
		Provider:      ProviderOllama,
		ContextTokens: 8192,
	},
	"qwen2.5:7b-instruct": {
		Name:          "qwen2.5:7b-instruct",
		Provider:      ProviderOllama,
		ContextTokens: 32768,
	},
}

// LookupModel returns ModelInfo and ok flag.
func LookupModel(name string) (ModelInfo, bool) {
	mi, ok := models[name]
	return mi, ok
}

// EstimateCostUSD estimates total cost in USD for given tokens using model pricing.
// If the model is unknown, returns 0 and ok=false.
func EstimateCostUSD(model string, promptTokens, completionTokens int) (float64, bool) {
	mi, ok := LookupModel(model)
	if !ok {
		return 0, false
	}
	inCost := (float64(promptTokens) / 1000.0) * mi.InputPerK
	outCost := (float64(completionTokens) / 1000.0) * mi.OutputPerK
	return inCost + outCost, true
}

// LoadCatalogFromJSON loads a JSON object map[string]ModelInfo from a file path.
// Example entry:
// { "deepseek-chat": {"Name":"deepseek-chat","Provider":"deepseek","ContextTokens":64000,"InputPerK":0.00027,"OutputPerK":0.0011} }
func LoadCatalogFromJSON(path string) (map[string]ModelInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var m map[string]ModelInfo
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// MergeCatalog merges/overrides entries in the in-memory catalog.
func MergeCatalog(m map[string]ModelInfo) {
	for k, v := range m {
		models[k] = v
	}
}

// CatalogFor lists catalog entries, optionally restricted to one provider,
// sorted by name.
func CatalogFor(provider string) []ModelInfo {
	out := make([]ModelInfo, 0, len(models))
	for _, mi := range models {
		if provider == "" || mi.Provider == provider {
			out = append(out, mi)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
