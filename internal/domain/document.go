package domain

import "time"

// Document metadata keys
const (
	MetadataKeyCharCount = "char_count"
	MetadataKeyWordCount = "word_count"
	MetadataKeyProcessed = "processed"
)

// Document is an uploaded file after normalization. Content is always plain
// Markdown text, never raw binary; inputs that cannot be decoded are stored
// as a descriptive placeholder. Documents are immutable once created.
type Document struct {
	ID        string         `json:"id"`
	ProjectID string         `json:"project_id"`
	Filename  string         `json:"filename"`
	Content   string         `json:"content,omitempty"`
	FileType  string         `json:"file_type"`
	FileSize  int64          `json:"file_size"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// DocumentContext is the per-document slice of text handed to the LLM layer
// when assembling conversation context.
type DocumentContext struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
	FileType string `json:"file_type"`
}

// EstimateTokens gives a rough token estimate for a text (words × 1.3).
// The result is an approximation, not an exact count.
func EstimateTokens(text string) int {
	words := 0
	inWord := false
	for _, r := range text {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			inWord = false
		} else if !inWord {
			inWord = true
			words++
		}
	}
	return int(float64(words) * 1.3)
}
