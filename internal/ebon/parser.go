package ebon

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"rewe-ebon-bot/internal/models"
)

// Parser converts raw eBon document bytes into a structured receipt.
type Parser interface {
	Parse(data []byte) (*models.Receipt, error)
}

// PDFParser parses the PDF eBon documents REWE attaches to its receipt
// mails.
type PDFParser struct{}

func (PDFParser) Parse(data []byte) (*models.Receipt, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("error reading eBon PDF: %w", err)
	}

	lines, err := extractLines(reader)
	if err != nil {
		return nil, fmt.Errorf("error extracting eBon text: %w", err)
	}

	return parseLines(lines)
}

// extractLines flattens the PDF into text lines, one per rendered row.
func extractLines(reader *pdf.Reader) ([]string, error) {
	var lines []string

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}

		for _, row := range rows {
			var sb strings.Builder
			for _, text := range row.Content {
				// Column gaps are not always carried into the text
				// runs, so separate runs explicitly.
				if sb.Len() > 0 && !strings.HasSuffix(sb.String(), " ") {
					sb.WriteString(" ")
				}
				sb.WriteString(text.S)
			}
			lines = append(lines, sb.String())
		}
	}

	return lines, nil
}
