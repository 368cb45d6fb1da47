package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"projektchat/internal/config"
	"projektchat/internal/domain"
)

// AzureOpenAI talks to an Azure OpenAI resource. Azure addresses models by
// deployment name in the URL path rather than a model field in the body,
// requires an api-version query parameter and authenticates with an api-key
// header instead of a bearer token.
type AzureOpenAI struct {
	client chatClient
}

func NewAzureOpenAI(settings config.ProviderSettings, logger *zap.Logger) *AzureOpenAI {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := strings.TrimRight(settings.BaseURL, "/")
	apiVersion := settings.APIVersion
	if apiVersion == "" {
		apiVersion = "2024-02-01"
	}
	versionQuery := "api-version=" + url.QueryEscape(apiVersion)

	headers := map[string]string{}
	if settings.APIKey != "" {
		headers["api-key"] = settings.APIKey
	}

	return &AzureOpenAI{client: chatClient{
		name:        ProviderAzureOpenAI,
		displayName: "Azure OpenAI",
		chatURL: fmt.Sprintf("%s/openai/deployments/%s/chat/completions?%s",
			base, url.PathEscape(settings.DeploymentName), versionQuery),
		modelsURL:  fmt.Sprintf("%s/openai/deployments?%s", base, versionQuery),
		settings:   settings,
		headers:    headers,
		httpClient: &http.Client{Timeout: settings.RequestTimeout()},
		logger:     logger,
		preflight: func() error {
			if settings.APIKey == "" {
				return errors.New("Error: Azure OpenAI API key not set. Please configure it in settings.")
			}
			if settings.DeploymentName == "" {
				return errors.New("Error: Azure deployment name not set. Please configure it in settings.")
			}
			return nil
		},
	}}
}

func (p *AzureOpenAI) Name() string { return p.client.Name() }

func (p *AzureOpenAI) Generate(ctx context.Context, messages []Message, params *domain.Parameters, stream bool) <-chan Fragment {
	return p.client.Generate(ctx, messages, params, stream)
}

func (p *AzureOpenAI) ListModels(ctx context.Context) ModelList {
	return p.client.listModels(ctx)
}
