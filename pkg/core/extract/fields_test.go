package extract

import (
	"regexp"
	"testing"
)

func TestExtractWithPatternsRespectsChainOrder(t *testing.T) {
	// The third pattern's match sits earlier in the text than the second's;
	// chain position wins over text position.
	patterns := []FieldPattern{
		{Re: regexp.MustCompile(`never_matches_(\w+)`), Group: 1},
		{Re: regexp.MustCompile(`issuer[:\s]+(\w+)`), Group: 1},
		{Re: regexp.MustCompile(`entity[:\s]+(\w+)`), Group: 1},
	}
	text := "entity: Alpha was formed before issuer: Beta"

	got := ExtractWithPatterns(text, patterns)
	if got != "Beta" {
		t.Errorf("expected second pattern's match %q, got %q", "Beta", got)
	}
}

func TestExtractWithPatternsWholeMatchWhenNoGroup(t *testing.T) {
	patterns := []FieldPattern{
		{Re: regexp.MustCompile(`in compliance with all covenants`), Group: 0},
	}
	text := "The issuer remains in compliance with all covenants as of June."

	got := ExtractWithPatterns(text, patterns)
	if got != "in compliance with all covenants" {
		t.Errorf("unexpected whole-match result %q", got)
	}
}

func TestExtractFieldIssuer(t *testing.T) {
	e := NewFieldExtractor(NewPatternLibrary())

	text := "Issuer: Apex Funding Trust\nTrustee: Wilmington Trust\n"
	if got := e.ExtractField(text, "issuer"); got != "Apex Funding Trust" {
		t.Errorf("expected %q, got %q", "Apex Funding Trust", got)
	}

	if got := e.ExtractField(text, "no_such_field"); got != "" {
		t.Errorf("unknown field should yield empty string, got %q", got)
	}
}

func TestExtractAmountLargestWins(t *testing.T) {
	e := NewFieldExtractor(NewPatternLibrary())

	// The fee mention matches the generic amount pattern; the aggregate
	// value is what total_deal_size must resolve to.
	text := "An arrangement fee of $2 million was paid at closing. " +
		"The aggregate securitization value of $769.63 million was funded by the notes."

	got := e.ExtractAmount(text, "total_deal_size")
	want := 769_630_000.0
	if diff := got - want; diff > 1 || diff < -1 {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestExtractAmountScaleVariants(t *testing.T) {
	e := NewFieldExtractor(NewPatternLibrary())

	tests := []struct {
		text     string
		expected float64
	}{
		{"Total Deal Size: $250.5 million", 250_500_000},
		{"Total Deal Size: $250,500,000", 250_500_000},
		{"Offering amount: $1.2 billion", 1_200_000_000},
	}

	for _, tc := range tests {
		got := e.ExtractAmount(tc.text, "total_deal_size")
		if diff := got - tc.expected; diff > 1 || diff < -1 {
			t.Errorf("text %q: expected %f, got %f", tc.text, tc.expected, got)
		}
	}
}

func TestExtractAmountNoMatchIsZero(t *testing.T) {
	e := NewFieldExtractor(NewPatternLibrary())

	if got := e.ExtractAmount("no amounts here", "total_deal_size"); got != 0 {
		t.Errorf("expected 0 on no match, got %f", got)
	}
}

func TestExtractRatePercentageUnits(t *testing.T) {
	e := NewFieldExtractor(NewPatternLibrary())

	// Rates stay in percentage units here; the pricing store converts to
	// decimal fractions at its own boundary.
	text := "Cumulative Net Loss Rate: 1.25%\nConditional Prepayment Rate: 14.3%\n"
	if got := e.ExtractRate(text, "loss_rate"); got != 1.25 {
		t.Errorf("expected 1.25, got %f", got)
	}
	if got := e.ExtractRate(text, "prepayment_rate"); got != 14.3 {
		t.Errorf("expected 14.3, got %f", got)
	}
	if got := e.ExtractRate(text, "credit_enhancement"); got != 0 {
		t.Errorf("expected 0 on no match, got %f", got)
	}
}

func TestExtractDateCanonicalizes(t *testing.T) {
	e := NewFieldExtractor(NewPatternLibrary())

	text := "Closing Date: March 15, 2024\n"
	if got := e.ExtractDate(text, "issuance_date"); got != "2024-03-15" {
		t.Errorf("expected 2024-03-15, got %q", got)
	}
}
