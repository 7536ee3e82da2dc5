package extract

import (
	"strings"
)

// =============================================================================
// FIELD EXTRACTOR - First-match-wins pattern application with fallbacks
// =============================================================================

// FieldExtractor applies PatternLibrary chains against document text. It is
// stateless; all configuration lives in the library passed at construction.
type FieldExtractor struct {
	lib *PatternLibrary
}

// NewFieldExtractor creates an extractor over the given pattern library.
func NewFieldExtractor(lib *PatternLibrary) *FieldExtractor {
	return &FieldExtractor{lib: lib}
}

// ExtractField applies the field's patterns in list order and returns the
// first match's capturing group (trimmed), or the whole match when the
// pattern has no group. Empty string when nothing matches.
func (e *FieldExtractor) ExtractField(text, field string) string {
	return ExtractWithPatterns(text, e.lib.Patterns(field))
}

// ExtractWithPatterns is the raw first-match-wins loop, usable with an
// ad-hoc chain. Stops at the first pattern that produces a non-empty value.
func ExtractWithPatterns(text string, patterns []FieldPattern) string {
	for _, p := range patterns {
		m := p.Re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		val := m[0]
		if p.Group > 0 && p.Group < len(m) {
			val = m[p.Group]
		}
		val = strings.TrimSpace(val)
		if val != "" {
			return val
		}
	}
	return ""
}

// ExtractAmount collects every match across every pattern in the field's
// chain, normalizes each through its embedded scale word, and returns the
// largest resulting amount. Total deal size is almost always the largest
// dollar figure near relevant keywords, so largest-wins is more robust than
// first-wins against incidental smaller mentions (fees, per-unit amounts).
// Ties keep the match from the earlier pattern in the list. Zero when no
// pattern yields a parseable amount.
func (e *FieldExtractor) ExtractAmount(text, field string) float64 {
	return ExtractLargestAmount(text, e.lib.Patterns(field))
}

// ExtractLargestAmount implements largest-wins over an explicit chain.
func ExtractLargestAmount(text string, patterns []FieldPattern) float64 {
	var best float64
	found := false

	for _, p := range patterns {
		for _, m := range p.Re.FindAllStringSubmatch(text, -1) {
			raw := m[0]
			if p.Group > 0 && p.Group < len(m) {
				raw = m[p.Group]
			}
			v := NormalizeAmount(raw)
			if v == nil {
				continue
			}
			// Strict > keeps the earliest-pattern match on ties.
			if !found || *v > best {
				best = *v
				found = true
			}
		}
	}
	return best
}

// ExtractRate parses the first numeric group before an optional % sign and
// returns it in percentage units (0-100), NOT as a decimal fraction. This
// asymmetry with the pricing store's decimal convention is deliberate;
// converting happens at the persistence boundary.
func (e *FieldExtractor) ExtractRate(text, field string) float64 {
	raw := e.ExtractField(text, field)
	if raw == "" {
		return 0
	}
	v := TryParseNumber(raw)
	if v == nil {
		return 0
	}
	return *v
}

// ExtractDate runs the field chain and canonicalizes the match to ISO
// YYYY-MM-DD. Empty string on miss or unparseable date.
func (e *FieldExtractor) ExtractDate(text, field string) string {
	raw := e.ExtractField(text, field)
	if raw == "" {
		return ""
	}
	return NormalizeDate(raw)
}
