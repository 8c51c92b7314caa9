package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/cardpress/internal/doctree"
)

// CSVParser handles CSV files. The header row names the columns; each data
// row becomes one bullet item of "column: value" pairs, with the first
// column in bold.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &Document{Title: baseTitle(filename), Root: doctree.NewRoot()}
	if len(records) < 2 {
		return doc, nil
	}

	headers := records[0]
	list := doctree.NewList(doctree.ListBullet)
	for _, row := range records[1:] {
		if len(row) == 0 || strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		item := doctree.NewListItem()
		item.Append(doctree.NewText(row[0]).ToggleFormat(doctree.FormatBold))

		var rest []string
		for j := 1; j < len(row); j++ {
			if j < len(headers) && headers[j] != "" {
				rest = append(rest, headers[j]+": "+row[j])
			} else {
				rest = append(rest, row[j])
			}
		}
		if len(rest) > 0 {
			item.Append(doctree.NewText(" (" + strings.Join(rest, ", ") + ")"))
		}
		list.Append(item)
	}
	if list.Len() > 0 {
		doc.Root.Append(list)
	}
	return doc, nil
}
