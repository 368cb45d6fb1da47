package convert

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OCRClient talks to an external OCR service over HTTP. The service accepts
// a base64-encoded image plus a language hint and returns the recognized
// text; a tesseract HTTP frontend fits this contract.
type OCRClient struct {
	endpoint   string
	languages  string
	httpClient *http.Client
}

// NewOCRClient creates an OCR client. An empty endpoint returns nil, which
// callers treat as "OCR unavailable".
func NewOCRClient(endpoint, languages string, timeout time.Duration) *OCRClient {
	if endpoint == "" {
		return nil
	}
	if languages == "" {
		languages = "deu+eng"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OCRClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		languages:  languages,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type ocrRequest struct {
	Image     string `json:"image"`
	Languages string `json:"languages"`
}

type ocrResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Recognize runs OCR on one image and returns the recognized text.
func (c *OCRClient) Recognize(image []byte) (string, error) {
	payload, err := json.Marshal(ocrRequest{
		Image:     base64.StdEncoding.EncodeToString(image),
		Languages: c.languages,
	})
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Post(c.endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocr service returned status %d", resp.StatusCode)
	}

	var out ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ocr response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ocr service: %s", out.Error)
	}
	return out.Text, nil
}
