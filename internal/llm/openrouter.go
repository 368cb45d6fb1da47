package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"projektchat/internal/config"
	"projektchat/internal/domain"
)

// OpenRouter talks to the OpenRouter cloud gateway. An API key is mandatory;
// configured extra headers (attribution headers like HTTP-Referer and
// X-Title) are sent on every request.
type OpenRouter struct {
	client chatClient
}

func NewOpenRouter(settings config.ProviderSettings, logger *zap.Logger) *OpenRouter {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := strings.TrimRight(settings.BaseURL, "/")
	if base == "" {
		base = "https://openrouter.ai/api/v1"
	}

	headers := map[string]string{}
	for k, v := range settings.Headers {
		headers[k] = v
	}
	if settings.APIKey != "" {
		headers["Authorization"] = "Bearer " + settings.APIKey
	}

	return &OpenRouter{client: chatClient{
		name:        ProviderOpenRouter,
		displayName: "OpenRouter",
		chatURL:     base + "/chat/completions",
		modelsURL:   base + "/models",
		headers:     headers,
		model:       settings.ModelName,
		settings:    settings,
		httpClient:  &http.Client{Timeout: settings.RequestTimeout()},
		logger:      logger,
		preflight: func() error {
			if settings.APIKey == "" {
				return errors.New("Error: OpenRouter API key not set. Please configure it in settings.")
			}
			return nil
		},
	}}
}

func (p *OpenRouter) Name() string { return p.client.Name() }

func (p *OpenRouter) Generate(ctx context.Context, messages []Message, params *domain.Parameters, stream bool) <-chan Fragment {
	return p.client.Generate(ctx, messages, params, stream)
}

func (p *OpenRouter) ListModels(ctx context.Context) ModelList {
	return p.client.listModels(ctx)
}
