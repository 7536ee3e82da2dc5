package sheet

import (
	"testing"
)

func pricingSheet() *Sheet {
	return &Sheet{
		Name: "BBG Export",
		Rows: [][]string{
			{"Ticker", "Issuer", "Class", "Pricing Date", "Orig Amt", "Yield", "Coupon", "Credit Support", "Rating"},
			{"AART 2024-A A1", "Apex Auto", "A-1", "2024-03-15", "$350 million", "5.42%", "5.25%", "12.50%", "AAA"},
			{"AART 2024-A B", "Apex Auto", "B", "2024-03-15", "$50 million", "6.10%", "5.95%", "6.25%", "AA"},
			{"", "Apex Auto", "C", "2024-03-15", "$25 million", "7.00%", "6.80%", "3.00%", "A"},
		},
	}
}

func TestExtractBloombergRows(t *testing.T) {
	res := ExtractBloombergRows(pricingSheet())

	// The ticker-less third row is skipped with an issue, never fatally.
	if len(res.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.Rows))
	}
	if len(res.Issues) != 1 {
		t.Errorf("expected 1 issue for the skipped row, got %v", res.Issues)
	}

	sec := res.Rows[0].Security
	if sec.Ticker != "AART 2024-A A1" {
		t.Errorf("unexpected ticker %q", sec.Ticker)
	}
	if sec.ClassLabel != "A-1" {
		t.Errorf("unexpected class label %q", sec.ClassLabel)
	}
	if sec.PricingDate != "2024-03-15" {
		t.Errorf("unexpected pricing date %q", sec.PricingDate)
	}
	if sec.OriginalAmount != 350_000_000 {
		t.Errorf("expected amount 350000000, got %f", sec.OriginalAmount)
	}

	// Percentage columns are stored as 4-decimal fractions.
	if sec.Yield != 0.0542 {
		t.Errorf("expected yield 0.0542, got %f", sec.Yield)
	}
	if sec.Coupon != 0.0525 {
		t.Errorf("expected coupon 0.0525, got %f", sec.Coupon)
	}
	if sec.CreditSupport != 0.125 {
		t.Errorf("expected credit support 0.125, got %f", sec.CreditSupport)
	}

	hist := res.Rows[0].History
	if hist.Ticker != sec.Ticker || hist.ObservedDate != sec.PricingDate {
		t.Errorf("history not keyed to the security: %+v", hist)
	}
}

func TestExtractBloombergRowsMixedPercentForms(t *testing.T) {
	// "25.7", "25.70%" and "0.257" must land as the identical fraction.
	s := &Sheet{
		Name: "mixed",
		Rows: [][]string{
			{"Ticker", "Credit Support"},
			{"T1", "25.7"},
			{"T2", "25.70%"},
			{"T3", "0.257"},
		},
	}

	res := ExtractBloombergRows(s)
	if len(res.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(res.Rows))
	}
	for _, row := range res.Rows {
		if row.Security.CreditSupport != 0.257 {
			t.Errorf("ticker %s: expected 0.257, got %f",
				row.Security.Ticker, row.Security.CreditSupport)
		}
	}
}

func TestExtractBloombergRowsNoTickerColumn(t *testing.T) {
	s := &Sheet{
		Name: "not pricing",
		Rows: [][]string{
			{"Metric", "Value"},
			{"Balance", "100"},
		},
	}

	res := ExtractBloombergRows(s)
	if len(res.Rows) != 0 {
		t.Errorf("expected no rows, got %d", len(res.Rows))
	}
	if len(res.Issues) == 0 {
		t.Error("expected an issue for the missing ticker column")
	}
}
