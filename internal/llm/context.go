package llm

import (
	"fmt"
	"strings"

	"projektchat/internal/domain"
)

// maxContextCharsPerDoc caps how much of each document is injected into the
// conversation context.
const maxContextCharsPerDoc = 2000

// WithDocumentContext prepends exactly one synthesized system message that
// carries the project's document contents. With no documents the messages are
// returned unchanged; the caller's message order is always preserved.
func WithDocumentContext(messages []Message, docs []domain.DocumentContext) []Message {
	if len(docs) == 0 {
		return messages
	}

	var sb strings.Builder
	sb.WriteString("Du hast Zugriff auf folgende Projektdokumente. Nutze sie, um die Fragen des Nutzers zu beantworten, und nenne das Dokument, auf das du dich beziehst.\n")
	for _, doc := range docs {
		content := doc.Content
		if runes := []rune(content); len(runes) > maxContextCharsPerDoc {
			content = string(runes[:maxContextCharsPerDoc]) + "…"
		}
		fmt.Fprintf(&sb, "\n--- Dokument: %s ---\n%s\n", doc.Filename, content)
	}

	out := make([]Message, 0, len(messages)+1)
	out = append(out, Message{Role: RoleSystem, Content: sb.String()})
	out = append(out, messages...)
	return out
}
