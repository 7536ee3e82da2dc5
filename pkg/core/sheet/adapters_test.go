package sheet

import (
	"testing"
)

func TestParseHTMLSheets(t *testing.T) {
	html := `
<html><body>
<h2>Pool Performance</h2>
<table>
  <tr><th>Metric</th><th>Jun 2024</th></tr>
  <tr><td>Pool Balance</td><td>$95,000,000</td></tr>
  <tr><td>Collections</td><td>$5,000,000</td></tr>
</table>
<table><caption>Tranche Detail</caption>
  <tr><th>Class</th><th>Coupon</th></tr>
  <tr><td>A</td><td>5.25%</td></tr>
</table>
</body></html>`

	sheets, err := ParseHTMLSheets(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sheets) != 2 {
		t.Fatalf("expected 2 sheets, got %d", len(sheets))
	}
	if sheets[0].Name != "Pool Performance" {
		t.Errorf("expected heading-derived name, got %q", sheets[0].Name)
	}
	if sheets[1].Name != "Tranche Detail" {
		t.Errorf("expected caption-derived name, got %q", sheets[1].Name)
	}
	if sheets[0].Cell(1, 1) != "$95,000,000" {
		t.Errorf("unexpected cell value %q", sheets[0].Cell(1, 1))
	}
}

func TestParseMarkdownSheets(t *testing.T) {
	payload := `# Monthly Report

## Pool Metrics

| Metric | Jun 2024 | Jul 2024 |
|--------|----------|----------|
| Pool Balance | $95,000,000 | $92,100,000 |
| Loss Rate | 0.45% | 0.48% |

Some prose between tables.

| Class | Coupon |
|-------|--------|
| A | 5.25% |
`

	if !IsMarkdownPayload(payload) {
		t.Fatal("expected payload to be detected as markdown with tables")
	}

	sheets := ParseMarkdownSheets(payload)
	if len(sheets) != 2 {
		t.Fatalf("expected 2 sheets, got %d", len(sheets))
	}
	if sheets[0].Name != "Pool Metrics" {
		t.Errorf("expected name from preceding heading, got %q", sheets[0].Name)
	}
	if len(sheets[0].Rows) != 3 {
		t.Errorf("expected 3 rows (separator dropped), got %d", len(sheets[0].Rows))
	}
	if sheets[0].Cell(1, 1) != "$95,000,000" {
		t.Errorf("unexpected cell value %q", sheets[0].Cell(1, 1))
	}
}

func TestIsMarkdownPayloadRejectsPlainProse(t *testing.T) {
	if IsMarkdownPayload("This prospectus describes the Class A Notes.") {
		t.Error("prose without pipe tables must not be treated as markdown")
	}
	if IsMarkdownPayload("a | b") {
		t.Error("a single pipe line is not a table")
	}
}

func TestParseJSONSheets(t *testing.T) {
	data := []byte(`{
		"Surveillance": [
			["Metric", "Jun 2024"],
			["Pool Balance", 95000000],
			["Loss Rate", "0.45%"]
		],
		"Empty": [["", ""]]
	}`)

	sheets, err := ParseJSONSheets(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sheets) != 1 {
		t.Fatalf("expected the empty sheet dropped, got %d sheets", len(sheets))
	}
	if sheets[0].Name != "Surveillance" {
		t.Errorf("unexpected sheet name %q", sheets[0].Name)
	}
	if sheets[0].Cell(1, 1) != "95000000" {
		t.Errorf("expected numeric cell rendered as %q, got %q", "95000000", sheets[0].Cell(1, 1))
	}
}

func TestParseJSONSheetsRepairsMalformedPayload(t *testing.T) {
	// Trailing comma: strict decoding fails, the repair path must recover.
	data := []byte(`{"S1": [["Metric", "Value"], ["Balance", "100"],]}`)

	sheets, err := ParseJSONSheets(data)
	if err != nil {
		t.Fatalf("expected repaired decode, got error: %v", err)
	}
	if len(sheets) != 1 || sheets[0].Cell(1, 1) != "100" {
		t.Fatalf("unexpected repaired result: %+v", sheets)
	}
}

func TestParseJSONSheetsRejectsGarbage(t *testing.T) {
	// An array payload repairs cleanly but can never satisfy the
	// name-to-grid shape.
	if _, err := ParseJSONSheets([]byte("[1, 2, 3")); err == nil {
		t.Error("expected an error for an undecodable payload")
	}
}
