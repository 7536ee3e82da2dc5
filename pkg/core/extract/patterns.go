package extract

import (
	"fmt"
	"os"
	"regexp"

	hjson "github.com/hjson/hjson-go/v4"
)

// =============================================================================
// PATTERN LIBRARY - Ordered fallback chains of regexes per semantic field
// =============================================================================

// FieldPattern is one candidate regex for a field. Group is the index of the
// capturing group holding the value; 0 means the whole match.
type FieldPattern struct {
	Re    *regexp.Regexp
	Group int
}

// PatternLibrary holds the ordered candidate patterns for every semantic
// field. Lists are hand-ordered from most-specific to most-generic: the
// order is a behavior contract, not an implementation detail, because
// extraction is first-match-wins per field.
type PatternLibrary struct {
	Fields map[string][]FieldPattern
}

func pats(exprs ...string) []FieldPattern {
	out := make([]FieldPattern, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, FieldPattern{Re: regexp.MustCompile(e), Group: 1})
	}
	return out
}

// NewPatternLibrary builds the default library. Construct once and share;
// the library is immutable after construction.
func NewPatternLibrary() *PatternLibrary {
	lib := &PatternLibrary{Fields: map[string][]FieldPattern{
		"deal_name": pats(
			`(?i)(?:deal|transaction|series)\s+name[:\s]+([A-Z][A-Za-z0-9&.,\- ]{3,80}?)\s*(?:\n|$)`,
			`(?im)^([A-Z][A-Za-z0-9&.\- ]{3,60}(?:Trust|Funding|Finance|Receivables|Master Trust)[A-Za-z0-9 \-]{0,30})\s*$`,
			`(?i)offering\s+(?:circular|memorandum)\s+(?:for|of)\s+([A-Z][A-Za-z0-9&.,\- ]{3,80}?)(?:\n|\.|,)`,
			`([A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+){0,4}\s+(?:20\d{2}-[A-Z0-9]+|Series\s+20\d{2}-[A-Z0-9]+))`,
		),
		"issuer": pats(
			`(?i)issuer[:\s]+([A-Z][A-Za-z0-9&.,\- ]{3,80}?)\s*(?:\n|$)`,
			`(?i)issued\s+by\s+([A-Z][A-Za-z0-9&.,\- ]{3,80}?)(?:\n|\.|,\s+a)`,
			`(?i)issuing\s+entity[:\s]+([A-Z][A-Za-z0-9&.,\- ]{3,80}?)\s*(?:\n|$)`,
		),
		"deal_type": pats(
			`(?i)\b(asset[- ]backed\s+(?:securities|notes|certificates))\b`,
			`(?i)\b(mortgage[- ]backed\s+(?:securities|notes|certificates))\b`,
			`(?i)\b(collateralized\s+(?:loan|debt)\s+obligations?)\b`,
			`(?i)\b(securitization|securitisation)\b`,
		),
		"asset_type": pats(
			`(?i)\b(auto\s+loans?|automobile\s+(?:loan|lease)s?)\b`,
			`(?i)\b(credit\s+card\s+receivables)\b`,
			`(?i)\b(equipment\s+(?:loan|lease)s?)\b`,
			`(?i)\b(student\s+loans?)\b`,
			`(?i)\b(residential\s+mortgages?)\b`,
			`(?i)\b(commercial\s+mortgages?)\b`,
			`(?i)\b(consumer\s+loans?)\b`,
			`(?i)\b(trade\s+receivables)\b`,
			`(?i)\b(dealer\s+floorplan\s+receivables)\b`,
		),
		"originator": pats(
			`(?i)originator[:\s]+([A-Z][A-Za-z0-9&.,\- ]{3,80}?)\s*(?:\n|$)`,
			`(?i)originated\s+by\s+([A-Z][A-Za-z0-9&.,\- ]{3,80}?)(?:\n|\.|,\s)`,
		),
		"servicer": pats(
			`(?i)(?:master\s+)?servicer[:\s]+([A-Z][A-Za-z0-9&.,\- ]{3,80}?)\s*(?:\n|$)`,
			`(?i)serviced\s+by\s+([A-Z][A-Za-z0-9&.,\- ]{3,80}?)(?:\n|\.|,\s)`,
		),
		"trustee": pats(
			`(?i)(?:indenture\s+)?trustee[:\s]+([A-Z][A-Za-z0-9&.,\- ]{3,80}?)\s*(?:\n|$)`,
		),
		"rating_agency": pats(
			`(?i)rated\s+by\s+((?:Moody's|S&P|Standard\s*&\s*Poor's|Fitch|DBRS|KBRA)(?:\s*(?:,|and)\s*(?:Moody's|S&P|Standard\s*&\s*Poor's|Fitch|DBRS|KBRA))*)`,
			`(?i)\b(Moody's|S&P|Standard\s*&\s*Poor's|Fitch|DBRS|KBRA)\b`,
		),
		"issuance_date": pats(
			`(?i)(?:issuance|issue|closing)\s+date[:\s]+([A-Za-z0-9,/\- ]{6,30}?)\s*(?:\n|$)`,
			`(?i)dated\s+(?:as\s+of\s+)?([A-Z][a-z]+\s+\d{1,2},?\s+20\d{2})`,
			`(?i)closing\s+on\s+(?:or\s+about\s+)?([A-Z][a-z]+\s+\d{1,2},?\s+20\d{2})`,
		),
		"legal_final_maturity": pats(
			`(?i)legal\s+final\s+maturity(?:\s+date)?[:\s]+([A-Za-z0-9,/\- ]{4,30}?)\s*(?:\n|$)`,
			`(?i)final\s+maturity\s+date[:\s]+([A-Za-z0-9,/\- ]{4,30}?)\s*(?:\n|$)`,
			`(?i)maturing\s+(?:in|on)\s+([A-Za-z0-9,/\- ]{4,30}?)(?:\n|\.|,\s)`,
		),
		"revolving_period": pats(
			`(?i)revolving\s+period[:\s]*(?:of\s+)?([A-Za-z0-9,/\- ]{2,60}?)\s*(?:\n|\.|;)`,
		),
		"amortization_period": pats(
			`(?i)amorti[sz]ation\s+period[:\s]*(?:of\s+)?([A-Za-z0-9,/\- ]{2,60}?)\s*(?:\n|\.|;)`,
			`(?i)controlled\s+amorti[sz]ation[:\s]*([A-Za-z0-9,/\- ]{2,60}?)\s*(?:\n|\.|;)`,
		),
		// Amount patterns feed ExtractAmount, which collects every match
		// across every pattern and keeps the largest after scale
		// normalization. The captured group must include the scale word.
		"total_deal_size": pats(
			`(?i)(?:total\s+)?(?:deal|transaction|issuance|offering)\s+(?:size|amount|value)[:\s]+(?:of\s+)?([$€£]?\s?[\d,.]+\s*(?:billion|million|thousand|bn|mm|k)?)`,
			`(?i)aggregate\s+(?:principal|securitization|note)\s+(?:amount|balance|value)\s+of\s+([$€£]?\s?[\d,.]+\s*(?:billion|million|thousand|bn|mm|k)?)`,
			`(?i)(?:issued?|offering)\s+(?:of\s+)?(?:up\s+to\s+)?([$€£]\s?[\d,.]+\s*(?:billion|million|thousand|bn|mm|k)?)\s+(?:of|in)\s+(?:notes|securities|certificates)`,
			`([$€£]\s?[\d][\d,.]*\s*(?:billion|million|thousand|bn|mm|k)?)`,
		),
		// Surveillance report fields.
		"report_date": pats(
			`(?i)(?:report(?:ing)?|collection|determination)\s+(?:date|period\s+end(?:ed|ing)?)[:\s]+([A-Za-z0-9,/\- ]{6,30}?)\s*(?:\n|$)`,
			`(?i)for\s+the\s+(?:month|period|quarter)\s+end(?:ed|ing)\s+([A-Z][a-z]+\s+\d{1,2},?\s+20\d{2})`,
			`(?i)as\s+of\s+([A-Z][a-z]+\s+\d{1,2},?\s+20\d{2})`,
		),
		"pool_balance": pats(
			`(?i)(?:ending\s+)?pool\s+(?:principal\s+)?balance[:\s]+([$€£]?\s?[\d,.]+\s*(?:billion|million|thousand|bn|mm|k)?)`,
			`(?i)(?:outstanding|aggregate)\s+(?:receivables|principal)\s+balance[:\s]+([$€£]?\s?[\d,.]+\s*(?:billion|million|thousand|bn|mm|k)?)`,
		),
		"collections": pats(
			`(?i)(?:total\s+)?collections?(?:\s+for\s+the\s+(?:month|period))?[:\s]+([$€£]?\s?[\d,.]+\s*(?:billion|million|thousand|bn|mm|k)?)`,
		),
		"charge_offs": pats(
			`(?i)(?:net\s+|gross\s+)?charge[- ]?offs?[:\s]+([$€£]?\s?[\d,.]+\s*(?:billion|million|thousand|bn|mm|k)?)`,
			`(?i)defaulted\s+receivables[:\s]+([$€£]?\s?[\d,.]+\s*(?:billion|million|thousand|bn|mm|k)?)`,
		),
		"delinquencies_30": pats(
			`(?i)30(?:\s*[-–]\s*|\s*to\s*)59\s+days?(?:\s+delinquent)?[:\s]+([\d,.]+\s*%?)`,
			`(?i)30\+?\s+days?\s+(?:past\s+due|delinquent)[:\s]+([\d,.]+\s*%?)`,
		),
		"delinquencies_60": pats(
			`(?i)60(?:\s*[-–]\s*|\s*to\s*)89\s+days?(?:\s+delinquent)?[:\s]+([\d,.]+\s*%?)`,
			`(?i)60\+?\s+days?\s+(?:past\s+due|delinquent)[:\s]+([\d,.]+\s*%?)`,
		),
		"delinquencies_90": pats(
			`(?i)90\+?\s+days?(?:\s+or\s+more)?\s+(?:past\s+due|delinquent)[:\s]+([\d,.]+\s*%?)`,
			`(?i)90\+?\s+days?(?:\s+delinquent)?[:\s]+([\d,.]+\s*%?)`,
		),
		"loss_rate": pats(
			`(?i)(?:cumulative\s+net\s+|annuali[sz]ed\s+|net\s+)?loss\s+rate[:\s]+([\d,.]+\s*%?)`,
		),
		"prepayment_rate": pats(
			`(?i)(?:conditional\s+)?prepayment\s+(?:rate|speed)[:\s]+([\d,.]+\s*%?)`,
			`(?i)\bCPR\b[:\s]+([\d,.]+\s*%?)`,
		),
		"covenant_compliance": pats(
			`(?i)covenant\s+(?:compliance|status)[:\s]+([A-Za-z ,\-]{2,60}?)\s*(?:\n|$)`,
			`(?i)(in\s+compliance\s+with\s+all\s+covenants)`,
			`(?i)(covenant\s+breach(?:es)?\s*[A-Za-z ,\-]{0,40})`,
		),
		"credit_enhancement": pats(
			`(?i)(?:total\s+)?credit\s+enhancement(?:\s+level)?[:\s]+([\d,.]+\s*%?)`,
			`(?i)(?:subordination|overcollaterali[sz]ation)[:\s]+([\d,.]+\s*%?)`,
		),
		// Per-class sub-extractions run by NoteClassExtractor inside the
		// class-bounded section.
		"class_balance": pats(
			`(?i)(?:original|initial)\s+(?:principal\s+)?(?:balance|amount)[:\s]+(?:of\s+)?([$€£]?\s?[\d,.]+\s*(?:billion|million|thousand|bn|mm|k)?)`,
			`(?i)in\s+(?:an\s+)?(?:aggregate\s+)?(?:principal\s+)?amount\s+of\s+([$€£]?\s?[\d,.]+\s*(?:billion|million|thousand|bn|mm|k)?)`,
			`([$€£]\s?[\d][\d,.]*\s*(?:billion|million|thousand|bn|mm|k)?)`,
		),
		"class_rate": pats(
			`(?i)(?:interest|coupon)\s+rate[:\s]+(?:of\s+)?([\d.]+)\s*%`,
			`(?i)(?:bear(?:s|ing)?\s+interest\s+at|rate\s+of)\s+([\d.]+)\s*%`,
			`([\d.]+)\s*%\s+(?:per\s+annum|p\.a\.)`,
		),
		"class_maturity": pats(
			`(?i)expected\s+(?:final\s+)?maturity(?:\s+date)?[:\s]+([A-Za-z0-9,/\- ]{4,30}?)\s*(?:\n|$|\.)`,
			`(?i)(?:legal\s+final\s+)?maturity(?:\s+date)?[:\s]+([A-Za-z0-9,/\- ]{4,30}?)\s*(?:\n|$|\.)`,
		),
		"class_rating": pats(
			`(?i)rated?\s+((?:Aaa|Aa[1-3]?|A[1-3]?|Baa[1-3]?|Ba[1-3]?|B[1-3]?|Caa|AAA|AA[+-]?|A[+-]?|BBB[+-]?|BB[+-]?|B[+-]?|CCC)(?:\s*\(sf\))?)`,
			`(?i)rating[:\s]+((?:Aaa|Aa[1-3]?|A[1-3]?|Baa[1-3]?|Ba[1-3]?|B[1-3]?|Caa|AAA|AA[+-]?|A[+-]?|BBB[+-]?|BB[+-]?|B[+-]?|CCC)(?:\s*\(sf\))?)`,
		),
		"class_enhancement": pats(
			`(?i)(?:credit\s+)?enhancement(?:\s+level)?[:\s]+(?:of\s+)?([\d.]+)\s*%`,
			`(?i)subordination\s+of\s+([\d.]+)\s*%`,
		),
	}}
	return lib
}

// Patterns returns the ordered fallback chain for a field, nil when the
// field is unknown.
func (l *PatternLibrary) Patterns(field string) []FieldPattern {
	return l.Fields[field]
}

// overrideFile is the shape of an operator-supplied Hjson override: extra
// patterns are appended per field, ahead of nothing — the defaults keep
// their order and overrides are tried first.
type overrideFile struct {
	Fields map[string][]string `json:"fields"`
}

// LoadOverrides reads an Hjson file of additional per-field patterns and
// prepends them to the corresponding chains. Hjson keeps the files human
// editable (comments, no quote noise) for desk operators tuning extraction.
func (l *PatternLibrary) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read pattern overrides: %w", err)
	}

	var of overrideFile
	if err := hjson.Unmarshal(data, &of); err != nil {
		return fmt.Errorf("cannot parse pattern overrides: %w", err)
	}

	for field, exprs := range of.Fields {
		var extra []FieldPattern
		for _, e := range exprs {
			re, err := regexp.Compile(e)
			if err != nil {
				return fmt.Errorf("invalid override pattern for %s: %w", field, err)
			}
			extra = append(extra, FieldPattern{Re: re, Group: 1})
		}
		l.Fields[field] = append(extra, l.Fields[field]...)
	}
	return nil
}
