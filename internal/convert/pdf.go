package convert

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
)

// extractPDF extracts text from a PDF with a three-tier fallback: text-layer
// extraction, an alternative content-stream extractor, then page-image OCR.
// Tier output accumulates; once the collected text exceeds minPDFText
// characters the remaining tiers are skipped. A failing tier logs and the
// next one runs.
func (c *Converter) extractPDF(data []byte, filename string) string {
	var parts []string
	collect := func(text string) string {
		if t := strings.TrimSpace(text); t != "" {
			parts = append(parts, t)
		}
		return strings.Join(parts, "\n\n")
	}

	if text, err := c.pdfText(data); err != nil {
		c.logger.Debug("pdf text-layer extraction failed", zap.String("filename", filename), zap.Error(err))
	} else if joined := collect(text); len(joined) > c.minPDFText {
		return joined
	}

	if text, err := c.pdfStreams(data); err != nil {
		c.logger.Debug("pdf content-stream extraction failed", zap.String("filename", filename), zap.Error(err))
	} else if joined := collect(text); len(joined) > c.minPDFText {
		return joined
	}

	if text, err := c.pdfOCR(data); err != nil {
		c.logger.Debug("pdf OCR extraction failed", zap.String("filename", filename), zap.Error(err))
	} else {
		collect(text)
	}

	if joined := strings.Join(parts, "\n\n"); joined != "" {
		return joined
	}
	return fmt.Sprintf("**Fehler beim Extrahieren des PDF-Inhalts von %s**\n\nDie Datei konnte nicht verarbeitet werden. Möglicherweise ist sie passwortgeschützt oder beschädigt.", filename)
}

// pdfTextLayer reads the text layer page by page.
func (c *Converter) pdfTextLayer(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip problematic pages instead of failing entirely.
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(&sb, "\n## Seite %d\n\n%s\n", i, strings.TrimSpace(text))
	}
	return sb.String(), nil
}

// pdfContentStreams parses page content streams directly, which handles
// some files the text-layer reader chokes on.
func (c *Converter) pdfContentStreams(data []byte) (string, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}

	var sb strings.Builder
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil {
			continue
		}
		raw, err := io.ReadAll(r)
		if err != nil || len(raw) == 0 {
			continue
		}
		text := textFromContentStream(raw)
		if text == "" {
			continue
		}
		fmt.Fprintf(&sb, "\n## Seite %d\n\n%s\n", pageNr, text)
	}
	return sb.String(), nil
}

// pdfOCR runs each page's embedded images through the OCR service; scanned
// documents carry the full page as one image.
func (c *Converter) pdfOCR(data []byte) (string, error) {
	if c.ocr == nil {
		return "", fmt.Errorf("kein OCR-Dienst konfiguriert")
	}

	pages, err := c.pdfImages(data)
	if err != nil {
		return "", err
	}
	pageNrs := make([]int, 0, len(pages))
	for nr := range pages {
		pageNrs = append(pageNrs, nr)
	}
	sort.Ints(pageNrs)

	var sb strings.Builder
	for _, pageNr := range pageNrs {
		var pageText strings.Builder
		for _, img := range pages[pageNr] {
			text, err := c.ocr.Recognize(img)
			if err != nil {
				return "", err
			}
			if strings.TrimSpace(text) != "" {
				pageText.WriteString(strings.TrimSpace(text))
				pageText.WriteByte('\n')
			}
		}
		if pageText.Len() > 0 {
			fmt.Fprintf(&sb, "\n## Seite %d (OCR)\n\n%s\n", pageNr, strings.TrimSpace(pageText.String()))
		}
	}
	return sb.String(), nil
}

// pdfPageImages extracts the embedded raw images of every page.
func (c *Converter) pdfPageImages(data []byte) (map[int][][]byte, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	pages := make(map[int][][]byte)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		images, err := pdfcpu.ExtractPageImages(ctx, pageNr, false)
		if err != nil || len(images) == 0 {
			continue
		}
		for _, img := range images {
			raw, err := io.ReadAll(img)
			if err != nil || len(raw) == 0 {
				continue
			}
			pages[pageNr] = append(pages[pageNr], raw)
		}
	}
	return pages, nil
}

// pdfLiteralRe matches PDF string literals in parentheses.
var pdfLiteralRe = regexp.MustCompile(`\(([^)]*)\)`)

// textFromContentStream walks PDF content-stream operators and collects the
// text-showing ones (Tj, TJ, ').
func textFromContentStream(raw []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(raw, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfLiteralRe.FindAllSubmatch(line, -1) {
				sb.WriteString(unescapePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			for _, m := range pdfLiteralRe.FindAllSubmatch(line, -1) {
				sb.WriteByte('\n')
				sb.WriteString(unescapePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return collapseSpaces(sb.String())
}

// unescapePDFString resolves backslash escapes in a PDF string literal,
// including octal byte values.
func unescapePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

// collapseSpaces normalizes runs of whitespace to single spaces and drops
// non-printable runes.
func collapseSpaces(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		case unicode.IsPrint(r):
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
