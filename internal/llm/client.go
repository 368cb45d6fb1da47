package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"projektchat/internal/config"
	"projektchat/internal/domain"
)

// chatClient carries the transport logic shared by all OpenAI-compatible
// backends. Providers configure URLs, headers and preflight checks.
type chatClient struct {
	name        string
	displayName string
	chatURL     string
	modelsURL   string
	headers     map[string]string
	model       string
	settings    config.ProviderSettings
	httpClient  *http.Client
	logger      *zap.Logger

	// preflight validates configuration before any request; a non-nil
	// result becomes the single error fragment of the whole generation.
	preflight func() error
}

type wireRequest struct {
	Model    string    `json:"model,omitempty"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Params
}

type wireDelta struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

type wireCompletion struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *chatClient) Name() string { return c.name }

// Generate runs one chat completion. The returned channel delivers content
// fragments lazily and is closed when the response ends; transport failures
// become a single trailing error fragment with readable Content.
func (c *chatClient) Generate(ctx context.Context, messages []Message, params *domain.Parameters, stream bool) <-chan Fragment {
	ch := make(chan Fragment, 16)

	go func() {
		defer close(ch)

		if c.preflight != nil {
			if err := c.preflight(); err != nil {
				c.emitError(ctx, ch, err.Error(), err)
				return
			}
		}

		body, err := json.Marshal(wireRequest{
			Model:    c.model,
			Messages: messages,
			Stream:   stream,
			Params:   ResolveParams(params, c.settings.Parameters),
		})
		if err != nil {
			c.emitError(ctx, ch, fmt.Sprintf("Error connecting to %s: %v", c.displayName, err), err)
			return
		}

		resp, err := c.requestWithRetry(ctx, body)
		if err != nil {
			c.emitError(ctx, ch, fmt.Sprintf("Error connecting to %s: %v", c.displayName, err), err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			msg := readAPIError(resp.Body)
			err := fmt.Errorf("%s returned status %d", c.displayName, resp.StatusCode)
			if msg != "" {
				err = fmt.Errorf("%s returned status %d: %s", c.displayName, resp.StatusCode, msg)
			}
			c.emitError(ctx, ch, fmt.Sprintf("Error: %v", err), err)
			return
		}

		if stream {
			c.scanStream(ctx, resp.Body, ch)
			return
		}

		var completion wireCompletion
		if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
			c.emitError(ctx, ch, fmt.Sprintf("Error connecting to %s: %v", c.displayName, err), err)
			return
		}
		if len(completion.Choices) == 0 {
			err := fmt.Errorf("%s returned no choices", c.displayName)
			c.emitError(ctx, ch, fmt.Sprintf("Error: %v", err), err)
			return
		}
		c.emit(ctx, ch, Fragment{Content: completion.Choices[0].Message.Content})
	}()

	return ch
}

// requestWithRetry POSTs the completion request, retrying transport errors
// and 5xx responses with exponential backoff up to max_retries additional
// attempts. Nothing has been delivered yet at this point, so a retry cannot
// duplicate output; once a body streams, there are no retries.
func (c *chatClient) requestWithRetry(ctx context.Context, body []byte) (*http.Response, error) {
	retries := c.settings.MaxRetries
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	backoff := 500 * time.Millisecond
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying provider request",
				zap.String("provider", c.name),
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chatURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if resp.StatusCode >= http.StatusInternalServerError && attempt < retries {
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}

// scanStream parses the server-sent-events body of a streaming completion.
// Empty lines are skipped, payload lines carry a "data: " prefix, the
// "[DONE]" sentinel ends the stream and malformed JSON lines are ignored.
func (c *chatClient) scanStream(ctx context.Context, body io.Reader, ch chan<- Fragment) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			return
		}

		var delta wireDelta
		if err := json.Unmarshal([]byte(payload), &delta); err != nil {
			continue
		}
		if len(delta.Choices) == 0 || delta.Choices[0].Delta.Content == "" {
			continue
		}
		if !c.emit(ctx, ch, Fragment{Content: delta.Choices[0].Delta.Content}) {
			return
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		c.emitError(ctx, ch, fmt.Sprintf("Error connecting to %s: %v", c.displayName, err), err)
	}
}

func (c *chatClient) emit(ctx context.Context, ch chan<- Fragment, f Fragment) bool {
	select {
	case ch <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *chatClient) emitError(ctx context.Context, ch chan<- Fragment, content string, err error) {
	c.logger.Warn("provider generation failed", zap.String("provider", c.name), zap.Error(err))
	if err == nil {
		err = errors.New(content)
	}
	c.emit(ctx, ch, Fragment{Content: content, Err: err})
}

// readAPIError pulls the error message out of a non-200 JSON body, if any.
func readAPIError(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return ""
}

// listModels fetches and normalizes the provider's model listing.
func (c *chatClient) listModels(ctx context.Context) ModelList {
	if c.preflight != nil {
		if err := c.preflight(); err != nil {
			return modelListError(err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.modelsURL, nil)
	if err != nil {
		return modelListError(err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return modelListError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return modelListError(fmt.Errorf("%s returned status %d", c.displayName, resp.StatusCode))
	}

	var payload struct {
		Data []struct {
			ID      string `json:"id"`
			Model   string `json:"model"`
			OwnedBy string `json:"owned_by"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return modelListError(err)
	}

	models := make([]ModelInfo, 0, len(payload.Data))
	for _, m := range payload.Data {
		name := m.Model
		if name == "" {
			name = m.ID
		}
		models = append(models, ModelInfo{ID: m.ID, Name: name, OwnedBy: m.OwnedBy})
	}
	return ModelList{Success: true, Models: models, Count: len(models)}
}
