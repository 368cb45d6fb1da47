package domain

import "time"

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultSessionName is given to the session created automatically for a
// project that has none yet.
const DefaultSessionName = "Haupt-Chat"

// ChatSession is a named conversation thread within a project
type ChatSession struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	Name         string    `json:"name"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Message represents a chat message. Messages are append-only; they are
// never mutated after creation.
type Message struct {
	ID        int64          `json:"id"`
	ProjectID string         `json:"project_id"`
	SessionID string         `json:"session_id,omitempty"`
	Role      string         `json:"role"` // system, user, assistant
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"` // e.g. avatar reference
	CreatedAt time.Time      `json:"created_at"`
}

// ChatRequest is the request to send a chat message
type ChatRequest struct {
	SessionID  string      `json:"session_id,omitempty"`
	Message    string      `json:"message" binding:"required"`
	Provider   string      `json:"provider,omitempty"` // empty = configured default
	Parameters *Parameters `json:"parameters,omitempty"`
}

// ChatResponse is the response from a non-streaming chat message
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
	Provider  string `json:"provider"`
}

// CreateSessionRequest is the request to create a chat session
type CreateSessionRequest struct {
	Name string `json:"name" binding:"required"`
}

// RenameSessionRequest is the request to rename a chat session
type RenameSessionRequest struct {
	Name string `json:"name" binding:"required"`
}
