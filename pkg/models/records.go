package models

import (
	"time"
)

// DocumentType identifies the kind of free-text document being processed.
type DocumentType string

const (
	DocTypeNewIssue     DocumentType = "NEW_ISSUE"
	DocTypeSurveillance DocumentType = "SURVEILLANCE"

	// DocTypeSheet labels tabular payloads, which bypass prose
	// classification entirely.
	DocTypeSheet DocumentType = "SHEET"
)

// NoteClass is one tranche within a securitization.
type NoteClass struct {
	ClassLabel         string  `json:"class_label"` // e.g. "A-1"
	OriginalBalance    float64 `json:"original_balance"`
	CurrentBalance     float64 `json:"current_balance"`
	InterestRate       float64 `json:"interest_rate"` // percentage units (4.25 = 4.25%)
	ExpectedMaturity   string  `json:"expected_maturity"`
	LegalFinalMaturity string  `json:"legal_final_maturity"`
	Rating             string  `json:"rating"`
	SubordinationLevel int     `json:"subordination_level"` // senior = 1
	PaymentPriority    int     `json:"payment_priority"`
	EnhancementLevel   float64 `json:"enhancement_level"`
}

// ExtractedDeal is one logical securitization lifted from a new-issue report.
type ExtractedDeal struct {
	DealID             string      `json:"deal_id"`
	DealName           string      `json:"deal_name"`
	Issuer             string      `json:"issuer"`
	DealType           string      `json:"deal_type"`
	AssetType          string      `json:"asset_type"`
	Originator         string      `json:"originator"`
	Servicer           string      `json:"servicer"`
	Trustee            string      `json:"trustee"`
	RatingAgency       string      `json:"rating_agency"`
	IssuanceDate       string      `json:"issuance_date"` // ISO YYYY-MM-DD
	LegalFinalMaturity string      `json:"legal_final_maturity"`
	RevolvingPeriod    string      `json:"revolving_period"`
	AmortizationPeriod string      `json:"amortization_period"`
	TotalDealSize      float64     `json:"total_deal_size"` // base currency units
	NoteClasses        []NoteClass `json:"note_classes"`
}

// SurveillanceSnapshot is one (deal, report_date, data_source) observation
// of pool performance. Uniqueness on that triple is enforced by the store.
//
// In memory every percentage field (delinquencies, loss rate, prepayment
// rate, credit enhancement) carries percentage units: 1.25 means 1.25%.
// The store converts all of them to 4-decimal fractions on write, so rows
// read back from surveillance_snapshots carry 0.0125 instead.
type SurveillanceSnapshot struct {
	DealID              string             `json:"deal_id"`
	DealName            string             `json:"deal_name"`
	ReportDate          string             `json:"report_date"` // ISO YYYY-MM-DD
	DataSource          string             `json:"data_source"`
	PoolBalance         float64            `json:"pool_balance"`
	Collections         float64            `json:"collections"`
	ChargeOffs          float64            `json:"charge_offs"`
	Delinquencies30     float64            `json:"delinquencies_30"`
	Delinquencies60     float64            `json:"delinquencies_60"`
	Delinquencies90     float64            `json:"delinquencies_90"`
	LossRate            float64            `json:"loss_rate"`
	PrepaymentRate      float64            `json:"prepayment_rate"`
	CovenantCompliance  string             `json:"covenant_compliance"`
	CreditEnhancement   float64            `json:"credit_enhancement"`
	Metrics             map[string]float64 `json:"metrics"` // fields outside the fixed schema
}

// PricingSecurity mirrors the Bloomberg pricing-sheet column set, keyed by
// ticker. Percentage-valued fields are stored as 4-decimal fractions
// (0.2570, never 25.70) — canonicalized at ingestion.
type PricingSecurity struct {
	Ticker         string  `json:"ticker"`
	Issuer         string  `json:"issuer"`
	DealName       string  `json:"deal_name"`
	ClassLabel     string  `json:"class_label"`
	PricingDate    string  `json:"pricing_date"` // ISO YYYY-MM-DD
	OriginalAmount float64 `json:"original_amount"`
	Yield          float64 `json:"yield"`          // decimal fraction
	Coupon         float64 `json:"coupon"`         // decimal fraction
	CreditSupport  float64 `json:"credit_support"` // decimal fraction
	Rating         string  `json:"rating"`
	CUSIP          string  `json:"cusip"`
	WAC            float64 `json:"wac"` // decimal fraction
}

// PricingHistoryPoint is one append-only audit-trail observation for a
// ticker. Never updated or deleted.
type PricingHistoryPoint struct {
	Ticker        string    `json:"ticker"`
	ObservedDate  string    `json:"observed_date"`
	Yield         float64   `json:"yield"`
	Price         float64   `json:"price"`
	Spread        float64   `json:"spread"`
	CreditSupport float64   `json:"credit_support"`
	Coupon        float64   `json:"coupon"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// SheetTransaction is one column-shaped record lifted from a rectangular
// sheet: the metrics map carries every standardized label/value pair, while
// common metrics are also promoted to top-level fields for direct queries.
type SheetTransaction struct {
	EntityLabel    string             `json:"entity_label"` // column header (deal or period)
	SheetName      string             `json:"sheet_name"`
	SheetType      string             `json:"sheet_type"`
	PoolBalance    float64            `json:"pool_balance"`
	Collections    float64            `json:"collections"`
	Delinquencies  float64            `json:"delinquencies"`
	Losses         float64            `json:"losses"`
	Rate           float64            `json:"rate"`
	Metrics        map[string]float64 `json:"metrics"`
	RawValues      map[string]string  `json:"raw_values"` // label -> original cell text
}
