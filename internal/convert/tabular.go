package convert

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractCSV renders a CSV file as a Markdown pipe table plus per-column
// statistics for numeric columns.
func (c *Converter) extractCSV(data []byte, filename string) string {
	reader := csv.NewReader(strings.NewReader(decodeText(data)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil || len(rows) == 0 {
		if err == nil {
			return noContent(filename)
		}
		return extractionError(filename, err)
	}

	header := rows[0]
	body := rows[1:]

	var sb strings.Builder
	fmt.Fprintf(&sb, "# CSV-Datei: %s\n\n", filename)
	fmt.Fprintf(&sb, "**Zeilen:** %d, **Spalten:** %d\n\n", len(body), len(header))

	writePipeTable(&sb, header, body)

	if stats := columnStats(header, body); stats != "" {
		sb.WriteString("\n## Statistiken:\n\n")
		sb.WriteString(stats)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// extractXLSX renders every worksheet of an Excel file as a pipe table with a
// numeric summary per sheet.
func (c *Converter) extractXLSX(data []byte, filename string) string {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return extractionError(filename, err)
	}
	defer f.Close()

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Excel-Datei: %s\n", filename)

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}

		fmt.Fprintf(&sb, "\n## Arbeitsblatt: %s\n\n", sheet)

		header := rows[0]
		body := rows[1:]
		writePipeTable(&sb, header, body)

		if stats := xlsxStats(header, body); stats != "" {
			fmt.Fprintf(&sb, "\n### Zusammenfassung für %s\n\n", sheet)
			sb.WriteString(stats)
		}
	}

	if !strings.Contains(sb.String(), "## Arbeitsblatt:") {
		return noContent(filename)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// writePipeTable writes header plus body rows as a Markdown table. Ragged
// rows are padded or truncated to the header width.
func writePipeTable(sb *strings.Builder, header []string, body [][]string) {
	if len(header) == 0 {
		return
	}

	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i := range header {
			cell := ""
			if i < len(cells) {
				cell = strings.ReplaceAll(cells[i], "|", "\\|")
				cell = strings.ReplaceAll(cell, "\n", " ")
			}
			fmt.Fprintf(sb, " %s |", cell)
		}
		sb.WriteString("\n")
	}

	writeRow(header)
	sb.WriteString("|")
	for range header {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")
	for _, row := range body {
		writeRow(row)
	}
}

// numericColumn collects the parseable values of one column; the column
// counts as numeric when every non-empty cell parses.
func numericColumn(body [][]string, col int) ([]float64, bool) {
	var values []float64
	for _, row := range body {
		if col >= len(row) || strings.TrimSpace(row[col]) == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(row[col], ",", ".")), 64)
		if err != nil {
			return nil, false
		}
		values = append(values, v)
	}
	return values, len(values) > 0
}

func minMaxMean(values []float64) (min, max, mean float64) {
	min, max = values[0], values[0]
	var sum float64
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	return min, max, sum / float64(len(values))
}

// columnStats renders CSV column statistics, one line per numeric column.
func columnStats(header []string, body [][]string) string {
	var sb strings.Builder
	for i, name := range header {
		values, ok := numericColumn(body, i)
		if !ok {
			continue
		}
		min, max, mean := minMaxMean(values)
		fmt.Fprintf(&sb, "- **%s**: Ø%.2f, Min=%s, Max=%s\n", name, mean, formatNumber(min), formatNumber(max))
	}
	return sb.String()
}

// xlsxStats renders the per-sheet numeric summary.
func xlsxStats(header []string, body [][]string) string {
	var sb strings.Builder
	for i, name := range header {
		values, ok := numericColumn(body, i)
		if !ok {
			continue
		}
		min, max, mean := minMaxMean(values)
		fmt.Fprintf(&sb, "- **%s**: Mittelwert=%.2f, Min=%s, Max=%s\n", name, mean, formatNumber(min), formatNumber(max))
	}
	return sb.String()
}

// formatNumber drops a trailing ".00" for whole values.
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
