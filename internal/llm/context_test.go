package llm

import (
	"strings"
	"testing"

	"projektchat/internal/domain"
)

func TestWithDocumentContextNoDocs(t *testing.T) {
	messages := []Message{{Role: RoleUser, Content: "Hallo"}}
	got := WithDocumentContext(messages, nil)

	if len(got) != 1 || got[0] != messages[0] {
		t.Errorf("messages should pass through unchanged, got %+v", got)
	}
}

func TestWithDocumentContextPrependsOneSystemMessage(t *testing.T) {
	messages := []Message{
		{Role: RoleUser, Content: "erste Frage"},
		{Role: RoleAssistant, Content: "erste Antwort"},
		{Role: RoleUser, Content: "zweite Frage"},
	}
	docs := []domain.DocumentContext{
		{Filename: "bericht.pdf", Content: "Umsatz 2025 gestiegen"},
		{Filename: "notizen.md", Content: "Interne Notizen"},
	}

	got := WithDocumentContext(messages, docs)

	if len(got) != len(messages)+1 {
		t.Fatalf("len = %d, want %d", len(got), len(messages)+1)
	}
	if got[0].Role != RoleSystem {
		t.Errorf("first role = %q, want system", got[0].Role)
	}
	for _, want := range []string{"bericht.pdf", "Umsatz 2025 gestiegen", "notizen.md"} {
		if !strings.Contains(got[0].Content, want) {
			t.Errorf("context missing %q", want)
		}
	}
	// Only one system message, original order untouched.
	for i, msg := range messages {
		if got[i+1] != msg {
			t.Errorf("message %d changed: %+v", i, got[i+1])
		}
	}
}

func TestWithDocumentContextTruncatesLongDocuments(t *testing.T) {
	long := strings.Repeat("ä", 5000)
	got := WithDocumentContext([]Message{{Role: RoleUser, Content: "?"}},
		[]domain.DocumentContext{{Filename: "lang.txt", Content: long}})

	runs := strings.Count(got[0].Content, "ä")
	if runs != maxContextCharsPerDoc {
		t.Errorf("injected %d chars, want %d", runs, maxContextCharsPerDoc)
	}
	if !strings.Contains(got[0].Content, "…") {
		t.Error("truncation marker missing")
	}
}
