package sheet

import (
	"strings"

	"abs_intel/pkg/core/extract"
	"abs_intel/pkg/models"
)

// =============================================================================
// TABLE TRANSACTION EXTRACTOR - Columns are transactions, not rows
// =============================================================================

// SheetType selects which label standardization applies; extraction
// mechanics are identical across types.
type SheetType string

const (
	SheetTypeSurveillance SheetType = "surveillance"
	SheetTypeTranche      SheetType = "performance_tranche"
	SheetTypePortfolio    SheetType = "portfolio_composition"
)

var sheetTypeKeywords = map[SheetType][]string{
	SheetTypeSurveillance: {
		"surveillance", "servicer", "collection", "charge off", "charge-off",
		"delinquen", "pool balance", "remittance",
	},
	SheetTypeTranche: {
		"tranche", "class", "note", "subordination", "rating", "coupon",
		"enhancement", "factor",
	},
	SheetTypePortfolio: {
		"portfolio", "composition", "concentration", "obligor", "industry",
		"geography", "vintage",
	},
}

// metricSynonyms standardizes the metric labels running down the first
// column. Matched by keyword-in-label after lowercasing.
var metricSynonyms = []struct {
	keyword string
	metric  string
}{
	{"outstanding balance", "pool_balance"},
	{"pool balance", "pool_balance"},
	{"ending balance", "pool_balance"},
	{"receivables balance", "pool_balance"},
	{"principal balance", "pool_balance"},
	{"balance", "pool_balance"},
	{"collection", "collections"},
	{"charge off amount", "losses"},
	{"charge-off", "losses"},
	{"charge off", "losses"},
	{"net loss", "losses"},
	{"gross loss", "losses"},
	{"default", "losses"},
	{"30-59", "delinquencies_30"},
	{"30 day", "delinquencies_30"},
	{"60-89", "delinquencies_60"},
	{"60 day", "delinquencies_60"},
	{"90+", "delinquencies_90"},
	{"90 day", "delinquencies_90"},
	{"delinquen", "delinquencies"},
	{"prepayment", "prepayment_rate"},
	{"cpr", "prepayment_rate"},
	{"loss rate", "loss_rate"},
	{"enhancement", "credit_enhancement"},
	{"coupon", "rate"},
	{"interest rate", "rate"},
	{"rate", "rate"},
	{"yield", "yield"},
	{"factor", "pool_factor"},
}

// TransactionExtractor turns a rectangular sheet into column-shaped
// transactions: the first column supplies metric labels, every other column
// is one independent entity (a deal or a reporting period).
type TransactionExtractor struct{}

// NewTransactionExtractor creates the extractor. It is stateless.
func NewTransactionExtractor() *TransactionExtractor {
	return &TransactionExtractor{}
}

// Result is the stable (records, confidence, issues) triple for a sheet.
type Result struct {
	Transactions []models.SheetTransaction
	SheetType    SheetType
	Confidence   float64
	Issues       []string
}

// ExtractTransactions builds one record per data column. A column whose
// metrics map ends up empty (a wholly blank column) is discarded.
func (e *TransactionExtractor) ExtractTransactions(s *Sheet) *Result {
	clean := s.Clean()
	res := &Result{SheetType: e.ClassifySheet(clean)}

	if len(clean.Rows) < 2 {
		res.Issues = append(res.Issues, "sheet has no data rows")
		res.Confidence = 0.1
		return res
	}

	header := clean.Rows[0]
	width := 0
	for _, row := range clean.Rows {
		if len(row) > width {
			width = len(row)
		}
	}

	for c := 1; c < width; c++ {
		tx := models.SheetTransaction{
			SheetName: clean.Name,
			SheetType: string(res.SheetType),
			Metrics:   map[string]float64{},
			RawValues: map[string]string{},
		}
		if c < len(header) {
			tx.EntityLabel = header[c]
		}

		for r := 1; r < len(clean.Rows); r++ {
			label := clean.Cell(r, 0)
			value := clean.Cell(r, c)
			if label == "" || value == "" {
				continue
			}

			metric := StandardizeMetric(label)
			tx.RawValues[label] = value

			num := extract.TryParseNumber(value)
			if num == nil {
				continue
			}
			v := *num * extract.ScaleFactor(value)
			tx.Metrics[metric] = v

			// Promote well-known metrics so common queries don't have to
			// walk the metrics map.
			lowerLabel := strings.ToLower(label)
			switch {
			case strings.Contains(lowerLabel, "balance"):
				tx.PoolBalance = v
			case strings.Contains(lowerLabel, "collection"):
				tx.Collections = v
			case strings.Contains(lowerLabel, "delinquen"):
				tx.Delinquencies = v
			case strings.Contains(lowerLabel, "charge off"),
				strings.Contains(lowerLabel, "charge-off"),
				strings.Contains(lowerLabel, "loss"):
				tx.Losses = v
			case strings.Contains(lowerLabel, "rate"),
				strings.Contains(lowerLabel, "coupon"):
				tx.Rate = v
			}
		}

		if len(tx.Metrics) == 0 {
			continue
		}
		res.Transactions = append(res.Transactions, tx)
	}

	if len(res.Transactions) == 0 {
		res.Issues = append(res.Issues, "no usable data columns in sheet")
		res.Confidence = 0.1
		return res
	}

	res.Confidence = columnCoverage(res.Transactions, len(clean.Rows)-1)
	return res
}

// ClassifySheet scores the sheet name and header text against the three
// keyword sets and returns the highest-scoring type. Ties resolve in the
// fixed order surveillance > tranche > portfolio.
func (e *TransactionExtractor) ClassifySheet(s *Sheet) SheetType {
	var headerText strings.Builder
	headerText.WriteString(strings.ToLower(s.Name))
	headerText.WriteString(" ")
	if len(s.Rows) > 0 {
		headerText.WriteString(strings.ToLower(strings.Join(s.Rows[0], " ")))
	}
	// First-column labels carry most of the signal on metric sheets.
	for _, row := range s.Rows {
		if len(row) > 0 {
			headerText.WriteString(" ")
			headerText.WriteString(strings.ToLower(row[0]))
		}
	}
	text := headerText.String()

	best := SheetTypeSurveillance
	bestScore := -1
	for _, st := range []SheetType{SheetTypeSurveillance, SheetTypeTranche, SheetTypePortfolio} {
		score := 0
		for _, kw := range sheetTypeKeywords[st] {
			score += strings.Count(text, kw)
		}
		if score > bestScore {
			best = st
			bestScore = score
		}
	}
	return best
}

// StandardizeMetric maps a raw row label to its canonical metric name via
// the synonym table; unmatched labels are slugified as-is.
func StandardizeMetric(label string) string {
	lower := strings.ToLower(strings.TrimSpace(label))
	for _, syn := range metricSynonyms {
		if strings.Contains(lower, syn.keyword) {
			return syn.metric
		}
	}
	return slugify(lower)
}

func slugify(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

// columnCoverage estimates confidence as the mean fraction of label rows
// each surviving column populated.
func columnCoverage(txs []models.SheetTransaction, labelRows int) float64 {
	if labelRows <= 0 || len(txs) == 0 {
		return 0.1
	}
	var total float64
	for _, tx := range txs {
		total += float64(len(tx.Metrics)) / float64(labelRows)
	}
	cov := total / float64(len(txs))
	if cov > 1.0 {
		cov = 1.0
	}
	return cov
}
