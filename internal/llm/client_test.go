package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"projektchat/internal/config"
	"projektchat/internal/domain"
)

func collect(t *testing.T, ch <-chan Fragment) (string, []Fragment) {
	t.Helper()
	var sb strings.Builder
	var fragments []Fragment
	for fragment := range ch {
		fragments = append(fragments, fragment)
		sb.WriteString(fragment.Content)
	}
	return sb.String(), fragments
}

func lmStudioFor(url string) *LMStudio {
	return NewLMStudio(config.ProviderSettings{BaseURL: url, ModelName: "test-model"}, nil)
}

func TestGenerateStreaming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req["stream"] != true {
			t.Error("stream flag not set")
		}
		if req["model"] != "test-model" {
			t.Errorf("model = %v", req["model"])
		}

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\" du\"}}]}\n\n")
		fmt.Fprint(w, "data: kein json\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"nie\"}}]}\n\n")
	}))
	defer srv.Close()

	provider := lmStudioFor(srv.URL)
	text, fragments := collect(t, provider.Generate(context.Background(),
		[]Message{{Role: RoleUser, Content: "Hallo"}}, nil, true))

	if text != "Hi du" {
		t.Errorf("streamed text = %q, want %q", text, "Hi du")
	}
	for _, fragment := range fragments {
		if fragment.Err != nil {
			t.Errorf("unexpected error fragment: %v", fragment.Err)
		}
	}
}

func TestGenerateNonStreaming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Hi du"}},
			},
		})
	}))
	defer srv.Close()

	provider := lmStudioFor(srv.URL)
	text, fragments := collect(t, provider.Generate(context.Background(),
		[]Message{{Role: RoleUser, Content: "Hallo"}}, nil, false))

	if text != "Hi du" {
		t.Errorf("text = %q", text)
	}
	if len(fragments) != 1 {
		t.Errorf("non-streaming should yield one fragment, got %d", len(fragments))
	}
}

// Streaming and non-streaming must agree on the full text for the same
// deterministic backend response.
func TestStreamingMatchesNonStreaming(t *testing.T) {
	const answer = "Vier Worte sind genug"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Stream bool `json:"stream"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		if !req.Stream {
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{{"message": map[string]any{"content": answer}}},
			})
			return
		}
		for _, word := range strings.SplitAfter(answer, " ") {
			payload, _ := json.Marshal(map[string]any{
				"choices": []map[string]any{{"delta": map[string]any{"content": word}}},
			})
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	provider := lmStudioFor(srv.URL)
	messages := []Message{{Role: RoleUser, Content: "?"}}

	streamed, _ := collect(t, provider.Generate(context.Background(), messages, nil, true))
	complete, _ := collect(t, provider.Generate(context.Background(), messages, nil, false))

	if streamed != complete {
		t.Errorf("streamed %q != non-streamed %q", streamed, complete)
	}
	if streamed != answer {
		t.Errorf("text = %q, want %q", streamed, answer)
	}
}

func TestGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"kaputt"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	provider := lmStudioFor(srv.URL)
	_, fragments := collect(t, provider.Generate(context.Background(),
		[]Message{{Role: RoleUser, Content: "Hallo"}}, nil, true))

	if len(fragments) != 1 {
		t.Fatalf("want exactly one error fragment, got %d", len(fragments))
	}
	if fragments[0].Err == nil {
		t.Fatal("fragment should carry an error")
	}
	if !strings.Contains(fragments[0].Content, "LM Studio") ||
		!strings.Contains(fragments[0].Content, "500") {
		t.Errorf("error fragment content = %q", fragments[0].Content)
	}
}

func TestGenerateConnectionRefused(t *testing.T) {
	// Reserve a port and close it again so nothing listens there.
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	provider := lmStudioFor(url)
	_, fragments := collect(t, provider.Generate(context.Background(),
		[]Message{{Role: RoleUser, Content: "Hallo"}}, nil, true))

	if len(fragments) != 1 || fragments[0].Err == nil {
		t.Fatalf("want single error fragment, got %+v", fragments)
	}
	if !strings.Contains(fragments[0].Content, "Error connecting to LM Studio") {
		t.Errorf("content = %q", fragments[0].Content)
	}
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": "ok"}}},
		})
	}))
	defer srv.Close()

	provider := NewLMStudio(config.ProviderSettings{
		BaseURL: srv.URL, ModelName: "m", MaxRetries: 3,
	}, nil)

	text, fragments := collect(t, provider.Generate(context.Background(),
		[]Message{{Role: RoleUser, Content: "Hallo"}}, nil, false))

	if text != "ok" {
		t.Errorf("text = %q, fragments %+v", text, fragments)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestOpenRouterRequiresAPIKey(t *testing.T) {
	provider := NewOpenRouter(config.ProviderSettings{BaseURL: "http://unused"}, nil)
	_, fragments := collect(t, provider.Generate(context.Background(),
		[]Message{{Role: RoleUser, Content: "Hallo"}}, nil, true))

	if len(fragments) != 1 || fragments[0].Err == nil {
		t.Fatalf("want single error fragment, got %+v", fragments)
	}
	if !strings.Contains(fragments[0].Content, "OpenRouter API key not set") {
		t.Errorf("content = %q", fragments[0].Content)
	}
}

func TestOpenRouterSendsConfiguredHeaders(t *testing.T) {
	var gotAuth, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": "ok"}}},
		})
	}))
	defer srv.Close()

	provider := NewOpenRouter(config.ProviderSettings{
		BaseURL: srv.URL,
		APIKey:  "geheim",
		Headers: map[string]string{"HTTP-Referer": "https://example.org"},
	}, nil)

	collect(t, provider.Generate(context.Background(),
		[]Message{{Role: RoleUser, Content: "Hallo"}}, nil, false))

	if gotAuth != "Bearer geheim" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReferer != "https://example.org" {
		t.Errorf("HTTP-Referer = %q", gotReferer)
	}
}

func TestAzureURLAndHeaders(t *testing.T) {
	var gotPath, gotVersion, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotVersion = r.URL.Query().Get("api-version")
		gotKey = r.Header.Get("api-key")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": "ok"}}},
		})
	}))
	defer srv.Close()

	provider := NewAzureOpenAI(config.ProviderSettings{
		BaseURL:        srv.URL,
		APIKey:         "geheim",
		DeploymentName: "gpt-4o",
		APIVersion:     "2024-02-01",
	}, nil)

	text, _ := collect(t, provider.Generate(context.Background(),
		[]Message{{Role: RoleUser, Content: "Hallo"}}, nil, false))

	if text != "ok" {
		t.Errorf("text = %q", text)
	}
	if gotPath != "/openai/deployments/gpt-4o/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotVersion != "2024-02-01" {
		t.Errorf("api-version = %q", gotVersion)
	}
	if gotKey != "geheim" {
		t.Errorf("api-key = %q", gotKey)
	}
}

func TestAzureRequiresDeployment(t *testing.T) {
	provider := NewAzureOpenAI(config.ProviderSettings{BaseURL: "http://unused", APIKey: "k"}, nil)
	_, fragments := collect(t, provider.Generate(context.Background(),
		[]Message{{Role: RoleUser, Content: "Hallo"}}, nil, true))

	if len(fragments) != 1 || !strings.Contains(fragments[0].Content, "Azure deployment name not set") {
		t.Errorf("fragments = %+v", fragments)
	}
}

func TestFactoryRefusesUnknownAndDisabled(t *testing.T) {
	factory := NewFactory(config.LLMConfig{
		DefaultProvider: ProviderLMStudio,
		Providers: map[string]config.ProviderConfig{
			ProviderLMStudio:   {Enabled: true},
			ProviderOpenRouter: {Enabled: false},
		},
	}, nil)

	if _, err := factory.Provider("gibtsnicht"); !errors.Is(err, domain.ErrProviderNotFound) {
		t.Errorf("unknown provider: err = %v", err)
	}
	if _, err := factory.Provider(ProviderOpenRouter); !errors.Is(err, domain.ErrProviderDisabled) {
		t.Errorf("disabled provider: err = %v", err)
	}
	if _, err := factory.Provider(""); err != nil {
		t.Errorf("default provider should resolve: %v", err)
	}
	provider, err := factory.Provider(ProviderLMStudio)
	if err != nil {
		t.Fatalf("enabled provider: %v", err)
	}
	if provider.Name() != ProviderLMStudio {
		t.Errorf("name = %q", provider.Name())
	}
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": "llama-3.1-8b", "owned_by": "meta"},
				{"id": "qwen2.5-7b"},
			},
		})
	}))
	defer srv.Close()

	list := lmStudioFor(srv.URL).ListModels(context.Background())
	if !list.Success || list.Count != 2 {
		t.Fatalf("list = %+v", list)
	}
	if list.Models[0].ID != "llama-3.1-8b" || list.Models[0].OwnedBy != "meta" {
		t.Errorf("first model = %+v", list.Models[0])
	}
}

func TestListModelsFailureDegrades(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	list := lmStudioFor(url).ListModels(context.Background())
	if list.Success {
		t.Error("success should be false")
	}
	if list.Error == "" {
		t.Error("error description missing")
	}
	if list.Models == nil || len(list.Models) != 0 {
		t.Errorf("models should be empty slice, got %v", list.Models)
	}
}
