// Package llm dispatches chat completions to configured model backends.
// All backends speak an OpenAI-compatible chat completion dialect; they
// differ in endpoint layout, authentication and required headers.
package llm

// Message is one chat turn sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Fragment is one piece of a provider response. The concatenated Content of
// all fragments on a channel is the full response text. A fragment with a
// non-nil Err is always the last one delivered; its Content carries a
// human-readable description of the failure, so consumers that only render
// text still surface the problem.
type Fragment struct {
	Content string
	Err     error
}
