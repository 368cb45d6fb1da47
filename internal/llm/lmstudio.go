package llm

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"projektchat/internal/config"
	"projektchat/internal/domain"
)

// LMStudio talks to a local LM Studio server, which exposes the
// OpenAI-compatible API under /v1. An API key is optional for local servers.
type LMStudio struct {
	client chatClient
}

func NewLMStudio(settings config.ProviderSettings, logger *zap.Logger) *LMStudio {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := strings.TrimRight(settings.BaseURL, "/")
	if base == "" {
		base = "http://localhost:1234"
	}

	headers := map[string]string{}
	if settings.APIKey != "" {
		headers["Authorization"] = "Bearer " + settings.APIKey
	}

	return &LMStudio{client: chatClient{
		name:        ProviderLMStudio,
		displayName: "LM Studio",
		chatURL:     base + "/v1/chat/completions",
		modelsURL:   base + "/v1/models",
		headers:     headers,
		model:       settings.ModelName,
		settings:    settings,
		httpClient:  &http.Client{Timeout: settings.RequestTimeout()},
		logger:      logger,
	}}
}

func (p *LMStudio) Name() string { return p.client.Name() }

func (p *LMStudio) Generate(ctx context.Context, messages []Message, params *domain.Parameters, stream bool) <-chan Fragment {
	return p.client.Generate(ctx, messages, params, stream)
}

func (p *LMStudio) ListModels(ctx context.Context) ModelList {
	return p.client.listModels(ctx)
}
