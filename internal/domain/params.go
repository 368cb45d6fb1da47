package domain

// Parameters is a generation parameter block, attachable to a chat request
// and to a provider's settings. Pointer fields distinguish "not set" from an
// explicit zero so per-request values can fall through to settings and
// defaults.
type Parameters struct {
	Temperature      *float64 `json:"temperature,omitempty" mapstructure:"temperature"`
	MaxTokens        *int     `json:"max_tokens,omitempty" mapstructure:"max_tokens"`
	TopP             *float64 `json:"top_p,omitempty" mapstructure:"top_p"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty" mapstructure:"frequency_penalty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty" mapstructure:"presence_penalty"`
	Stop             []string `json:"stop,omitempty" mapstructure:"stop"`
}
