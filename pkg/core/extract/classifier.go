package extract

import (
	"strings"

	"abs_intel/pkg/models"
)

// =============================================================================
// DOCUMENT CLASSIFIER - Weighted keyword scoring over raw text
// =============================================================================

// DocumentClassifier scores raw text against weighted keyword dictionaries
// for the two document classes. The weight tables are built once at
// construction and never mutated, so classification of identical input is
// always identical.
type DocumentClassifier struct {
	newIssueWeights     map[string]float64
	surveillanceWeights map[string]float64
}

// NewDocumentClassifier builds the classifier with the default weights.
func NewDocumentClassifier() *DocumentClassifier {
	return &DocumentClassifier{
		newIssueWeights: map[string]float64{
			"prospectus":           3,
			"offering circular":    3,
			"offering memorandum":  3,
			"preliminary":          1,
			"new issue":            3,
			"pricing supplement":   2,
			"use of proceeds":      2,
			"underwriter":          2,
			"joint lead managers":  2,
			"subscription":         1,
			"closing date":         1,
			"issuance date":        2,
			"legal final maturity": 1,
			"credit enhancement":   1,
			"structure summary":    2,
		},
		surveillanceWeights: map[string]float64{
			"surveillance":        3,
			"servicer report":     3,
			"trustee report":      3,
			"monthly report":      2,
			"collection period":   2,
			"collections":         1,
			"charge-off":          2,
			"charge off":          2,
			"delinquent":          2,
			"delinquency":         2,
			"pool balance":        2,
			"prepayment":          1,
			"loss rate":           2,
			"covenant":            1,
			"performance":         1,
			"distribution date":   1,
			"remittance":          2,
		},
	}
}

// Classify scores the text and returns the winning document type with a
// normalized confidence in [0,1]. Ties and zero scores default to NEW_ISSUE
// at confidence 0.5; there is no random tie-break.
func (c *DocumentClassifier) Classify(text string) (models.DocumentType, float64) {
	lower := strings.ToLower(text)

	newIssueScore := scoreKeywords(lower, c.newIssueWeights)
	surveillanceScore := scoreKeywords(lower, c.surveillanceWeights)

	// Contextual bonus rules: fixed increments for combinations that are
	// much stronger signals than their parts.
	if strings.Contains(lower, "table of contents") &&
		(strings.Contains(lower, "offering") || strings.Contains(lower, "prospectus")) {
		newIssueScore += 5
	}
	if strings.Contains(lower, "notes offered") || strings.Contains(lower, "classes of notes offered") {
		newIssueScore += 5
	}
	if strings.Contains(lower, "collections for the month") ||
		strings.Contains(lower, "collections for the period") {
		surveillanceScore += 5
	}
	if strings.Contains(lower, "as of the determination date") {
		surveillanceScore += 5
	}

	confidence := (newIssueScore + surveillanceScore) / 20.0
	if confidence > 1.0 {
		confidence = 1.0
	}

	// Ties and all-zero scores both fall back to NEW_ISSUE at a neutral
	// confidence; there is nothing to break the tie with deterministically.
	if newIssueScore == surveillanceScore {
		return models.DocTypeNewIssue, 0.5
	}
	if surveillanceScore > newIssueScore {
		return models.DocTypeSurveillance, confidence
	}
	return models.DocTypeNewIssue, confidence
}

// scoreKeywords sums weight x occurrence_count over the weight table using
// case-insensitive substring counting. The caller lowercases once.
func scoreKeywords(lowerText string, weights map[string]float64) float64 {
	var score float64
	for keyword, weight := range weights {
		if n := strings.Count(lowerText, keyword); n > 0 {
			score += weight * float64(n)
		}
	}
	return score
}
