package sheet

import (
	"strings"

	"abs_intel/pkg/core/extract"
	"abs_intel/pkg/models"
)

// =============================================================================
// BLOOMBERG PRICING SHEET - Row-per-security mapping
// =============================================================================

// Unlike surveillance dashboards, Bloomberg pricing sheets are ordinary
// row-oriented tables: the header row names the columns and every data row
// is one security keyed by ticker.

// bloombergColumns maps header keywords to canonical column roles, checked
// in order; the first keyword contained in the lowercased header wins.
var bloombergColumns = []struct {
	keyword string
	role    string
}{
	{"ticker", "ticker"},
	{"security", "ticker"},
	{"cusip", "cusip"},
	{"issuer", "issuer"},
	{"deal", "deal_name"},
	{"class", "class_label"},
	{"tranche", "class_label"},
	{"pricing date", "pricing_date"},
	{"price date", "pricing_date"},
	{"date", "pricing_date"},
	{"original amount", "original_amount"},
	{"orig amt", "original_amount"},
	{"amount", "original_amount"},
	{"size", "original_amount"},
	{"yield", "yield"},
	{"ytm", "yield"},
	{"coupon", "coupon"},
	{"credit support", "credit_support"},
	{"credit enhancement", "credit_support"},
	{"support", "credit_support"},
	{"rating", "rating"},
	{"wac", "wac"},
	{"price", "price"},
	{"spread", "spread"},
}

// BloombergRow is one mapped security row plus its history observation.
type BloombergRow struct {
	Security models.PricingSecurity
	History  models.PricingHistoryPoint
}

// BloombergResult carries the per-sheet (records, confidence, issues)
// triple: malformed rows are skipped and recorded, never fatal.
type BloombergResult struct {
	Rows       []BloombergRow
	Confidence float64
	Issues     []string
}

// ExtractBloombergRows maps a pricing sheet into securities. Rows without a
// ticker are unusable and reported as issues.
func ExtractBloombergRows(s *Sheet) *BloombergResult {
	clean := s.Clean()
	res := &BloombergResult{}

	if len(clean.Rows) < 2 {
		res.Issues = append(res.Issues, "pricing sheet has no data rows")
		res.Confidence = 0.1
		return res
	}

	roles := mapHeaderRoles(clean.Rows[0])
	if roles["ticker"] < 0 {
		res.Issues = append(res.Issues, "pricing sheet has no ticker column")
		res.Confidence = 0.1
		return res
	}

	for r := 1; r < len(clean.Rows); r++ {
		row, issue := mapPricingRow(clean, r, roles)
		if issue != "" {
			res.Issues = append(res.Issues, issue)
			continue
		}
		res.Rows = append(res.Rows, *row)
	}

	if len(res.Rows) == 0 {
		res.Confidence = 0.1
		return res
	}
	res.Confidence = float64(len(res.Rows)) / float64(len(clean.Rows)-1)
	return res
}

// mapHeaderRoles resolves each canonical role to a column index, -1 when
// the sheet lacks it. A header column claims only its first matching role.
func mapHeaderRoles(header []string) map[string]int {
	roles := map[string]int{
		"ticker": -1, "cusip": -1, "issuer": -1, "deal_name": -1,
		"class_label": -1, "pricing_date": -1, "original_amount": -1,
		"yield": -1, "coupon": -1, "credit_support": -1, "rating": -1,
		"wac": -1, "price": -1, "spread": -1,
	}

	for col, h := range header {
		lower := strings.ToLower(strings.TrimSpace(h))
		if lower == "" {
			continue
		}
		for _, bc := range bloombergColumns {
			if strings.Contains(lower, bc.keyword) {
				if roles[bc.role] < 0 {
					roles[bc.role] = col
				}
				break
			}
		}
	}
	return roles
}

func mapPricingRow(s *Sheet, r int, roles map[string]int) (*BloombergRow, string) {
	get := func(role string) string {
		col := roles[role]
		if col < 0 {
			return ""
		}
		return s.Cell(r, col)
	}

	ticker := strings.ToUpper(strings.TrimSpace(get("ticker")))
	if ticker == "" {
		return nil, "row " + strings.TrimSpace(s.Cell(r, 0)) + ": missing ticker, skipped"
	}

	num := func(role string) float64 {
		v := extract.TryParseNumber(get(role))
		if v == nil {
			return 0
		}
		return *v
	}
	// Percentage columns (yield, coupon, credit support, WAC, spread) are
	// canonicalized to 4-decimal fractions here, before any comparison or
	// storage, so "25.7", "0.257" and "25.70%" all land identically.
	pct := func(role string) float64 {
		v := extract.NormalizePercentString(get(role))
		if v == nil {
			return 0
		}
		return *v
	}

	sec := models.PricingSecurity{
		Ticker:         ticker,
		Issuer:         get("issuer"),
		DealName:       get("deal_name"),
		ClassLabel:     strings.ToUpper(get("class_label")),
		PricingDate:    extract.NormalizeDate(get("pricing_date")),
		OriginalAmount: num("original_amount") * extract.ScaleFactor(get("original_amount")),
		Yield:          pct("yield"),
		Coupon:         pct("coupon"),
		CreditSupport:  pct("credit_support"),
		Rating:         get("rating"),
		CUSIP:          get("cusip"),
		WAC:            pct("wac"),
	}

	hist := models.PricingHistoryPoint{
		Ticker:        ticker,
		ObservedDate:  sec.PricingDate,
		Yield:         sec.Yield,
		Price:         num("price"),
		Spread:        pct("spread"),
		CreditSupport: sec.CreditSupport,
		Coupon:        sec.Coupon,
	}

	return &BloombergRow{Security: sec, History: hist}, ""
}
