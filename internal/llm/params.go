package llm

import "projektchat/internal/domain"

// Generation parameter defaults, applied when neither the request nor the
// provider settings specify a value.
const (
	DefaultTemperature      = 0.7
	DefaultMaxTokens        = 2000
	DefaultTopP             = 0.9
	DefaultFrequencyPenalty = 0.0
	DefaultPresencePenalty  = 0.0
)

// Params are fully resolved generation parameters as sent on the wire.
type Params struct {
	Temperature      float64  `json:"temperature"`
	MaxTokens        int      `json:"max_tokens"`
	TopP             float64  `json:"top_p"`
	FrequencyPenalty float64  `json:"frequency_penalty"`
	PresencePenalty  float64  `json:"presence_penalty"`
	Stop             []string `json:"stop,omitempty"`
}

// ResolveParams merges the per-request parameter block over the provider
// settings over the defaults. Request and settings use pointer fields, so an
// explicit zero wins over the default while an absent value falls through.
func ResolveParams(request *domain.Parameters, settings domain.Parameters) Params {
	var req domain.Parameters
	if request != nil {
		req = *request
	}
	p := Params{
		Temperature:      resolveFloat(req.Temperature, settings.Temperature, DefaultTemperature),
		MaxTokens:        resolveInt(req.MaxTokens, settings.MaxTokens, DefaultMaxTokens),
		TopP:             resolveFloat(req.TopP, settings.TopP, DefaultTopP),
		FrequencyPenalty: resolveFloat(req.FrequencyPenalty, settings.FrequencyPenalty, DefaultFrequencyPenalty),
		PresencePenalty:  resolveFloat(req.PresencePenalty, settings.PresencePenalty, DefaultPresencePenalty),
		Stop:             req.Stop,
	}
	if p.Stop == nil {
		p.Stop = settings.Stop
	}
	return p
}

func resolveFloat(request, settings *float64, fallback float64) float64 {
	if request != nil {
		return *request
	}
	if settings != nil {
		return *settings
	}
	return fallback
}

func resolveInt(request, settings *int, fallback int) int {
	if request != nil {
		return *request
	}
	if settings != nil {
		return *settings
	}
	return fallback
}
