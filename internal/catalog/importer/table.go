package importer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// table is a header row plus data rows, cells trimmed.
type table struct {
	header []string
	rows   [][]string
	// lines holds the 1-based source line of each row
	lines []int
}

func (t *table) line(i int) int {
	return t.lines[i]
}

// column returns the index of the named header, matched case-insensitively
// with spaces and dashes treated as underscores, or -1.
func (t *table) column(name string) int {
	for i, h := range t.header {
		if normalizeHeader(h) == name {
			return i
		}
	}
	return -1
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(h)
}

// cell returns row[idx], or "" when the column is absent or the row is short.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// readCSV splits delimited text into a table. The delimiter is detected
// from the first lines.
func readCSV(content string) (*table, error) {
	delimiter := detectDelimiter(content)

	var records [][]string
	lineNumbers := make([]int, 0)
	for i, line := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitLine(line, delimiter, '"')
		for j := range fields {
			fields[j] = strings.TrimSpace(fields[j])
		}
		records = append(records, fields)
		lineNumbers = append(lineNumbers, i+1)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	return &table{header: records[0], rows: records[1:], lines: lineNumbers[1:]}, nil
}

// detectDelimiter picks the candidate whose per-line count is highest and
// most consistent across the first five non-empty lines.
func detectDelimiter(content string) rune {
	sample := make([]string, 0, 5)
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			sample = append(sample, trimmed)
			if len(sample) == 5 {
				break
			}
		}
	}
	if len(sample) == 0 {
		return ','
	}

	best := ','
	bestScore := 0.0
	for _, delim := range []rune{',', ';', '\t'} {
		counts := make([]int, len(sample))
		sum := 0
		for i, line := range sample {
			counts[i] = strings.Count(line, string(delim))
			sum += counts[i]
		}
		avg := float64(sum) / float64(len(counts))
		if avg == 0 {
			continue
		}

		variance := 0.0
		for _, c := range counts {
			diff := float64(c) - avg
			variance += diff * diff
		}
		variance /= float64(len(counts))

		if score := avg / (1.0 + variance); score > bestScore {
			bestScore = score
			best = delim
		}
	}
	return best
}

// splitLine splits one line, honouring quoted fields and doubled quotes.
func splitLine(line string, delimiter, quote rune) []string {
	fields := make([]string, 0, 8)
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(line); {
		r, width := utf8.DecodeRuneInString(line[i:])
		i += width

		switch {
		case inQuotes && r == quote:
			if next, w := utf8.DecodeRuneInString(line[i:]); i < len(line) && next == quote {
				current.WriteRune(quote)
				i += w
				continue
			}
			inQuotes = false
		case inQuotes:
			current.WriteRune(r)
		case r == quote:
			inQuotes = true
		case r == delimiter:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}

	return append(fields, current.String())
}

// readXLSX reads the first sheet (or the named one) of a workbook.
func readXLSX(data []byte, sheet string) (*table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	t := &table{}
	for i, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		for j := range row {
			row[j] = strings.TrimSpace(row[j])
		}
		if t.header == nil {
			t.header = row
			continue
		}
		t.rows = append(t.rows, row)
		t.lines = append(t.lines, i+1)
	}
	if t.header == nil {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}
	return t, nil
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
