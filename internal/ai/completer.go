package ai

import (
	"fmt"
	"net/http"

	"github.com/amishk599/uxradar/internal/model"
)

// Provider names accepted in config.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// NewCompleter returns the text service for the named provider.
func NewCompleter(provider, baseURL, apiKey, modelName string, httpClient *http.Client) (model.TextCompleter, error) {
	switch provider {
	case ProviderOpenAI, "":
		return NewOpenAIProvider(baseURL, apiKey, modelName, httpClient), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(baseURL, apiKey, modelName, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", provider)
	}
}
