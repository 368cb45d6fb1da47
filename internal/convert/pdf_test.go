package convert

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// A text layer exceeding the threshold must satisfy the extraction without
// the content-stream or OCR tiers ever running.
func TestPDFTextLayerShortCircuitsLaterTiers(t *testing.T) {
	long := strings.Repeat("Text aus der Textebene. ", 10)
	var streamCalls, imageCalls int

	c := New(nil, nil)
	c.pdfText = func([]byte) (string, error) { return long, nil }
	c.pdfStreams = func([]byte) (string, error) {
		streamCalls++
		return "", nil
	}
	c.pdfImages = func([]byte) (map[int][][]byte, error) {
		imageCalls++
		return nil, nil
	}

	res := c.Convert([]byte("%PDF-"), "bericht.pdf", "application/pdf")
	if !strings.Contains(res.Markdown, "Text aus der Textebene.") {
		t.Errorf("text-layer output missing:\n%s", res.Markdown)
	}
	if streamCalls != 0 || imageCalls != 0 {
		t.Errorf("later tiers ran (%d stream calls, %d image calls) although the text layer sufficed",
			streamCalls, imageCalls)
	}
}

// Short tier outputs accumulate until the threshold is exceeded instead of
// each tier starting over.
func TestPDFTiersAccumulate(t *testing.T) {
	srv := stubOCR(t, "nie")
	defer srv.Close()

	layerText := strings.Repeat("a", 60)
	streamText := strings.Repeat("b", 60)
	imageCalls := 0

	c := New(nil, NewOCRClient(srv.URL, "", 0))
	c.pdfText = func([]byte) (string, error) { return layerText, nil }
	c.pdfStreams = func([]byte) (string, error) { return streamText, nil }
	c.pdfImages = func([]byte) (map[int][][]byte, error) {
		imageCalls++
		return nil, nil
	}

	res := c.Convert([]byte("%PDF-"), "dünn.pdf", "application/pdf")
	if !strings.Contains(res.Markdown, layerText) || !strings.Contains(res.Markdown, streamText) {
		t.Errorf("tier outputs not accumulated:\n%s", res.Markdown)
	}
	if imageCalls != 0 {
		t.Error("OCR tier ran although the first two tiers together sufficed")
	}
}

// A scanned PDF with no extractable text falls through to OCR on the page
// images and marks the pages accordingly.
func TestPDFScannedPagesUseOCR(t *testing.T) {
	var sawImage []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Image     string `json:"image"`
			Languages string `json:"languages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("ocr request decode: %v", err)
		}
		sawImage, _ = base64.StdEncoding.DecodeString(req.Image)
		json.NewEncoder(w).Encode(map[string]string{"text": "Gescannter Absatz"})
	}))
	defer srv.Close()

	c := New(nil, NewOCRClient(srv.URL, "deu", 0))
	c.pdfText = func([]byte) (string, error) { return "", nil }
	c.pdfStreams = func([]byte) (string, error) { return "", nil }
	c.pdfImages = func([]byte) (map[int][][]byte, error) {
		return map[int][][]byte{1: {[]byte("rohbild")}}, nil
	}

	res := c.Convert([]byte("%PDF-"), "scan.pdf", "application/pdf")
	if !strings.Contains(res.Markdown, "## Seite 1 (OCR)") {
		t.Errorf("OCR page heading missing:\n%s", res.Markdown)
	}
	if !strings.Contains(res.Markdown, "Gescannter Absatz") {
		t.Errorf("recognized text missing:\n%s", res.Markdown)
	}
	if string(sawImage) != "rohbild" {
		t.Errorf("ocr service received image %q", sawImage)
	}
}
