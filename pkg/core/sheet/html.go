package sheet

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTMLSheets extracts every <table> from an HTML payload as a Sheet.
// Surveillance dashboards are frequently exported as HTML; each table
// becomes one grid, named from the nearest preceding caption or heading.
func ParseHTMLSheets(html string) ([]*Sheet, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("cannot parse HTML payload: %w", err)
	}

	var sheets []*Sheet
	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		name := findTableName(table)
		if name == "" {
			name = fmt.Sprintf("table_%d", i+1)
		}

		var rows [][]string
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
		})

		s := &Sheet{Name: name, Rows: rows}
		if !s.IsEmpty() {
			sheets = append(sheets, s)
		}
	})

	return sheets, nil
}

// findTableName looks for a caption, then the nearest preceding heading.
func findTableName(table *goquery.Selection) string {
	if caption := table.Find("caption").First(); caption.Length() > 0 {
		return strings.TrimSpace(caption.Text())
	}
	if prev := table.PrevFiltered("h1, h2, h3, h4, p, strong"); prev.Length() > 0 {
		text := strings.TrimSpace(prev.Text())
		if len(text) <= 120 {
			return text
		}
	}
	return ""
}
