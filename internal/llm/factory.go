package llm

import (
	"fmt"
	"strings"
	"sync"

	"ai-memories/internal/config"
)

const (
	ProviderOpenAI = "openai"
	ProviderYandex = "yandex"
)

// Factory creates LLM clients for an explicit credential. The credential a
// request carries wins over the configured default.
type Factory struct {
	Provider           string
	OpenaiAPIKey       string
	OpenaiBaseURL      string
	ChatModel          string
	ExtractionModel    string
	OpenRouterReferrer string
	OpenRouterTitle    string
	YandexOAuthToken   string
	YandexFolderID     string

	mu     sync.Mutex
	yandex map[string]*YandexClient
}

func NewFactory(cfg *config.Config) *Factory {
	extraction := cfg.ExtractionModel
	if extraction == "" {
		extraction = cfg.OpenAIModel
	}
	return &Factory{
		Provider:           string(cfg.LLMProvider),
		OpenaiAPIKey:       cfg.OpenAIAPIKey,
		OpenaiBaseURL:      cfg.OpenAIBaseURL,
		ChatModel:          cfg.OpenAIModel,
		ExtractionModel:    extraction,
		OpenRouterReferrer: cfg.OpenRouterReferrer,
		OpenRouterTitle:    cfg.OpenRouterTitle,
		YandexOAuthToken:   cfg.YandexOAuthToken,
		YandexFolderID:     cfg.YandexFolderID,
	}
}

// ChatClient returns the client used for conversational replies.
func (f *Factory) ChatClient(apiKey string) (Client, error) {
	return f.create(apiKey, f.ChatModel)
}

// ExtractionClient returns the client used for tag extraction.
func (f *Factory) ExtractionClient(apiKey string) (Client, error) {
	return f.create(apiKey, f.ExtractionModel)
}

func (f *Factory) create(apiKey, model string) (Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	switch strings.ToLower(f.Provider) {
	case ProviderOpenAI, "":
		if apiKey == "" {
			apiKey = f.OpenaiAPIKey
		}
		if apiKey == "" {
			return nil, ErrMissingCredential
		}
		return NewOpenAI(apiKey, f.OpenaiBaseURL, model, f.OpenRouterReferrer, f.OpenRouterTitle), nil
	case ProviderYandex:
		if apiKey == "" {
			apiKey = f.YandexOAuthToken
		}
		if apiKey == "" {
			return nil, ErrMissingCredential
		}
		return f.yandexFor(apiKey)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", f.Provider)
	}
}

// yandexFor caches clients per token since creating one exchanges the
// OAuth token for an IAM token over the network.
func (f *Factory) yandexFor(token string) (*YandexClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.yandex[token]; ok {
		return c, nil
	}
	c, err := NewYandex(token, f.YandexFolderID)
	if err != nil {
		return nil, err
	}
	if f.yandex == nil {
		f.yandex = make(map[string]*YandexClient)
	}
	f.yandex[token] = c
	return c, nil
}
