package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"projektchat/internal/config"
	"projektchat/internal/domain"
)

// Registered provider names.
const (
	ProviderLMStudio    = "lm_studio"
	ProviderOpenRouter  = "openrouter"
	ProviderAzureOpenAI = "azure_openai"
)

// Provider produces chat completions. Generate returns a channel that
// delivers the response lazily; with stream=false the channel carries the
// complete text as a single fragment. The channel is always closed, also on
// failure, and a failure surfaces as exactly one trailing error fragment.
type Provider interface {
	Name() string
	Generate(ctx context.Context, messages []Message, params *domain.Parameters, stream bool) <-chan Fragment
	ListModels(ctx context.Context) ModelList
}

// ModelInfo describes one model offered by a provider.
type ModelInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// ModelList is the uniform model-listing result. Failures never surface as
// errors; they set Success=false with a description and an empty Models slice.
type ModelList struct {
	Success bool        `json:"success"`
	Models  []ModelInfo `json:"models"`
	Count   int         `json:"count"`
	Error   string      `json:"error,omitempty"`
}

func modelListError(err error) ModelList {
	return ModelList{Success: false, Models: []ModelInfo{}, Error: err.Error()}
}

// Factory instantiates providers out of the configured registry.
type Factory struct {
	cfg    config.LLMConfig
	logger *zap.Logger
}

func NewFactory(cfg config.LLMConfig, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{cfg: cfg, logger: logger}
}

// Provider returns the named provider. An empty name selects the configured
// default. Unknown and disabled providers are rejected before any network I/O.
func (f *Factory) Provider(name string) (Provider, error) {
	if name == "" {
		name = f.cfg.DefaultProvider
	}
	pc, ok := f.cfg.Providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderNotFound, name)
	}
	if !pc.Enabled {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderDisabled, name)
	}

	switch name {
	case ProviderLMStudio:
		return NewLMStudio(pc.Settings, f.logger), nil
	case ProviderOpenRouter:
		return NewOpenRouter(pc.Settings, f.logger), nil
	case ProviderAzureOpenAI:
		return NewAzureOpenAI(pc.Settings, f.logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderNotFound, name)
	}
}

// Names lists the configured provider names with their enabled state.
func (f *Factory) Names() map[string]bool {
	out := make(map[string]bool, len(f.cfg.Providers))
	for name, pc := range f.cfg.Providers {
		out[name] = pc.Enabled
	}
	return out
}

// DefaultProvider returns the configured default provider name.
func (f *Factory) DefaultProvider() string {
	return f.cfg.DefaultProvider
}
