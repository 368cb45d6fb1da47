package convert

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// extractImage runs OCR on an image file.
func (c *Converter) extractImage(data []byte, filename string) string {
	if c.ocr == nil {
		return fmt.Sprintf("**Fehler beim OCR-Prozess für %s**: kein OCR-Dienst konfiguriert", filename)
	}

	text, err := c.ocr.Recognize(data)
	if err != nil {
		c.logger.Warn("image OCR failed", zap.String("filename", filename), zap.Error(err))
		return fmt.Sprintf("**Fehler beim OCR-Prozess für %s**: %v", filename, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Sprintf("**Keine Textinhalte in %s erkannt.**\n\nDas Bild enthält möglicherweise keinen lesbaren Text oder die Qualität ist zu niedrig für OCR.", filename)
	}
	return fmt.Sprintf("# OCR-Extraktion: %s\n\n%s", filename, text)
}
