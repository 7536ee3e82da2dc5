// Package extract implements the deterministic document-type classification
// and field-extraction engine for ABS new-issue and surveillance reports.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// VALUE NORMALIZER - Canonical numeric/date forms from raw matched text
// =============================================================================

var (
	numericRe   = regexp.MustCompile(`-?[\d.]+`)
	slashDateRe = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}$`)

	billionRe  = regexp.MustCompile(`(?i)\b(billions?|bn)\b`)
	millionRe  = regexp.MustCompile(`(?i)\b(millions?|mm|mio)\b`)
	thousandRe = regexp.MustCompile(`(?i)\b(thousands?|000s)\b`)
)

// TryParseNumber converts a raw matched string ("$1,234.56", "(5,000)",
// "-3,500") into a float. Returns nil on any failure; no error is ever
// propagated past a single field extraction.
func TryParseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "—" || strings.EqualFold(s, "n/a") || strings.EqualFold(s, "na") {
		return nil
	}

	// Date-like cells are not numbers.
	if slashDateRe.MatchString(s) {
		return nil
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, " ", "")

	// Accounting negatives: (5000) means -5000.
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.Trim(s, "()")
	}

	match := numericRe.FindString(s)
	if match == "" {
		return nil
	}

	val, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	if isNegative {
		val = -val
	}
	return &val
}

// ScaleFactor returns the multiplier implied by a scale word embedded in the
// matched text ("million" -> 1e6). Text with no scale word multiplies by 1.
func ScaleFactor(text string) float64 {
	switch {
	case billionRe.MatchString(text):
		return 1e9
	case millionRe.MatchString(text):
		return 1e6
	case thousandRe.MatchString(text):
		return 1e3
	}

	// A bare trailing "k" ("$250k") also means thousands, but "k" inside a
	// word (e.g. "bank") must not.
	trimmed := strings.TrimRight(strings.TrimSpace(strings.ToLower(text)), ".")
	if strings.HasSuffix(trimmed, "k") {
		if v := TryParseNumber(strings.TrimSuffix(trimmed, "k")); v != nil {
			return 1e3
		}
	}
	return 1.0
}

// NormalizeAmount parses a raw amount string and applies its embedded scale
// word, returning the value in base currency units. Nil on parse failure.
func NormalizeAmount(raw string) *float64 {
	v := TryParseNumber(raw)
	if v == nil {
		return nil
	}
	scaled := *v * ScaleFactor(raw)
	return &scaled
}

// NormalizePercent canonicalizes a percentage-valued input to a 4-decimal
// fraction: "25.70%", 25.70 and 0.2570 all become 0.257.
//
// Values with an absolute magnitude above 1 are treated as percentage units
// needing division by 100; values at or below 1 are assumed already-decimal
// and left unscaled. A legitimately decimal 1.5 (a 150% multiplier) would be
// mis-scaled by this rule; callers that know the unit must convert upstream.
func NormalizePercent(v float64) float64 {
	if v > 1.0 || v < -1.0 {
		v = v / 100.0
	}
	// Round to 4 decimal places.
	return float64(int64(v*10000+sign(v)*0.5)) / 10000
}

// FractionFromPercent converts a value known to be in percentage units
// (1.25 = 1.25%) to a 4-decimal fraction. No magnitude heuristic: callers
// use this where the unit is certain, such as the snapshot persistence
// boundary, so a 0.45% loss rate cannot be mistaken for a 45% fraction.
func FractionFromPercent(v float64) float64 {
	v = v / 100.0
	return float64(int64(v*10000+sign(v)*0.5)) / 10000
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// NormalizePercentString parses then canonicalizes. Nil on parse failure.
func NormalizePercentString(raw string) *float64 {
	v := TryParseNumber(raw)
	if v == nil {
		return nil
	}
	p := NormalizePercent(*v)
	return &p
}

// dateLayouts are tried in order. The assorted formats reflect what shows
// up in offering documents, trustee reports and Bloomberg exports.
var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"02/01/2006",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"02-Jan-2006",
	"2-Jan-06",
	"January 2006",
	"Jan 2006",
	"2006",
}

// TryParseDate parses a date string in any of the supported layouts.
// Returns nil when no layout matches.
func TryParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	// Collapse internal runs of whitespace; "January  15, 2024" happens in
	// PDF-extracted text.
	s = strings.Join(strings.Fields(s), " ")

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// NormalizeDate parses a raw date string and renders it as ISO YYYY-MM-DD,
// the persisted form. Empty string when unparseable.
func NormalizeDate(raw string) string {
	t := TryParseDate(raw)
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
