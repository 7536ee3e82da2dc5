package extract

import (
	"regexp"
	"sort"
	"strings"

	"abs_intel/pkg/models"
)

// =============================================================================
// NOTE CLASS EXTRACTOR - Discover, validate, then detail tranche identifiers
// =============================================================================

// contextWindow is the character distance within which a candidate
// identifier must sit next to a financial keyword to be accepted. This is
// the primary precision lever: bare one/two-letter matches in prose are
// overwhelmingly false positives without it.
const contextWindow = 200

// classIdentifierPatterns discover candidates, most specific first. Group 1
// captures the bare identifier.
var classIdentifierPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bClass\s+([A-Z][A-Z0-9]?(?:-[A-Z0-9]{1,3})?)\s+Notes?\b`),
	regexp.MustCompile(`(?i)\b([A-Z][A-Z0-9]?(?:-[A-Z0-9]{1,3})?)\s+Class\s+Notes?\b`),
	regexp.MustCompile(`(?i)\bTranche\s+([A-Z][A-Z0-9]?(?:-[A-Z0-9]{1,3})?)\b`),
	regexp.MustCompile(`(?i)\bSeries\s+([A-Z][A-Z0-9]?(?:-[A-Z0-9]{1,3})?)\s+Notes?\b`),
}

// looseClassPatterns run only when the primary set finds nothing.
var looseClassPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bClass\s+([A-Z][A-Z0-9]?(?:-[A-Z0-9]{1,3})?)\b`),
	regexp.MustCompile(`(?i)\b([A-Z](?:-\d{1,2})?)\s+Notes?\b`),
}

// False-positive filters: single letters that read as words or Roman
// numerals, and short words the loose patterns can capture.
var singleLetterBlocklist = map[string]bool{
	"I": true, "O": true, "U": true, "X": true, "Y": true, "Z": true, "Q": true,
}

var shortWordBlocklist = map[string]bool{
	"THE": true, "AND": true, "OR": true, "OF": true, "TO": true, "IN": true,
	"FOR": true, "WITH": true, "BY": true, "FROM": true, "ON": true, "AT": true,
}

var financialContextKeywords = []string{
	"notes", "securities", "tranche", "subordination", "rating",
	"principal", "interest", "enhancement",
}

// NoteClassExtractor discovers tranche identifiers in prose, filters false
// positives, and extracts a structured record per surviving identifier.
type NoteClassExtractor struct {
	fields *FieldExtractor
}

// NewNoteClassExtractor creates the extractor sharing a FieldExtractor for
// the per-class sub-extractions.
func NewNoteClassExtractor(fields *FieldExtractor) *NoteClassExtractor {
	return &NoteClassExtractor{fields: fields}
}

// ExtractNoteClasses runs the full discover-validate-detail pipeline.
// Zero classes is a valid, reportable outcome: a class-count claim in the
// text ("five classes of notes") is never trusted to fabricate records.
func (e *NoteClassExtractor) ExtractNoteClasses(text string) []models.NoteClass {
	labels := e.discover(text, classIdentifierPatterns)
	if len(labels) == 0 {
		labels = e.discover(text, looseClassPatterns)
	}
	if len(labels) == 0 {
		return nil
	}

	classes := make([]models.NoteClass, 0, len(labels))
	for _, label := range labels {
		nc := e.extractClassDetail(text, label)
		classes = append(classes, nc)
	}

	// Senior first; stable order for identical input.
	sort.SliceStable(classes, func(i, j int) bool {
		if classes[i].SubordinationLevel != classes[j].SubordinationLevel {
			return classes[i].SubordinationLevel < classes[j].SubordinationLevel
		}
		return classes[i].ClassLabel < classes[j].ClassLabel
	})
	return classes
}

// discover collects the union of distinct uppercased identifiers that
// survive validation, in first-appearance order.
func (e *NoteClassExtractor) discover(text string, patterns []*regexp.Regexp) []string {
	seen := make(map[string]bool)
	type hit struct {
		label string
		pos   int
	}
	var hits []hit

	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			if len(m) < 4 || m[2] < 0 {
				continue
			}
			label := strings.ToUpper(text[m[2]:m[3]])
			if seen[label] {
				continue
			}
			if !IsValidNoteClass(label, text, m[2]) {
				continue
			}
			seen[label] = true
			hits = append(hits, hit{label: label, pos: m[2]})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	labels := make([]string, len(hits))
	for i, h := range hits {
		labels[i] = h.label
	}
	return labels
}

// IsValidNoteClass applies the false-positive rules to a candidate found at
// byte offset pos in text: length bounds, the letter/word blocklists, and
// the financial-context proximity window.
func IsValidNoteClass(candidate, text string, pos int) bool {
	candidate = strings.ToUpper(strings.TrimSpace(candidate))
	if candidate == "" || len(candidate) > 5 {
		return false
	}
	if len(candidate) == 1 && singleLetterBlocklist[candidate] {
		return false
	}
	if shortWordBlocklist[candidate] {
		return false
	}

	start := pos - contextWindow
	if start < 0 {
		start = 0
	}
	end := pos + contextWindow
	if end > len(text) {
		end = len(text)
	}
	window := strings.ToLower(text[start:end])

	for _, kw := range financialContextKeywords {
		if strings.Contains(window, kw) {
			return true
		}
	}
	return false
}

// extractClassDetail locates the bounded text section for a class label
// (from the label's first mention to the next class mention or end of text)
// and runs the per-class sub-extractions inside it.
func (e *NoteClassExtractor) extractClassDetail(text, label string) models.NoteClass {
	section := classSection(text, label)

	nc := models.NoteClass{
		ClassLabel:         label,
		SubordinationLevel: SubordinationLevel(label),
	}
	nc.PaymentPriority = nc.SubordinationLevel

	if section != "" {
		nc.OriginalBalance = ExtractLargestAmount(section, e.fields.lib.Patterns("class_balance"))
		nc.CurrentBalance = nc.OriginalBalance
		nc.InterestRate = e.fields.ExtractRate(section, "class_rate")
		nc.ExpectedMaturity = e.fields.ExtractDate(section, "class_maturity")
		nc.LegalFinalMaturity = e.fields.ExtractDate(section, "legal_final_maturity")
		nc.Rating = e.fields.ExtractField(section, "class_rating")
		nc.EnhancementLevel = e.fields.ExtractRate(section, "class_enhancement")
	}
	return nc
}

// classSection returns the text span from the first mention of the label to
// the next class-style mention, capped so one runaway section cannot absorb
// the whole document.
func classSection(text, label string) string {
	mention := regexp.MustCompile(`(?i)\b(?:Class|Tranche|Series)\s+` + regexp.QuoteMeta(label) + `\b`)
	loc := mention.FindStringIndex(text)
	if loc == nil {
		return ""
	}

	rest := text[loc[1]:]
	next := regexp.MustCompile(`(?i)\b(?:Class|Tranche|Series)\s+[A-Z][A-Z0-9]?(?:-[A-Z0-9]{1,3})?\b`)
	if nl := next.FindStringIndex(rest); nl != nil {
		rest = rest[:nl[0]]
	}
	if len(rest) > 4000 {
		rest = rest[:4000]
	}
	return text[loc[0]:loc[1]] + rest
}

// SubordinationLevel derives rank purely from the leading letter of the
// class label: A=1 (senior) through D=4, anything else 5.
func SubordinationLevel(label string) int {
	label = strings.ToUpper(strings.TrimSpace(label))
	if label == "" {
		return 5
	}
	switch label[0] {
	case 'A':
		return 1
	case 'B':
		return 2
	case 'C':
		return 3
	case 'D':
		return 4
	default:
		return 5
	}
}
