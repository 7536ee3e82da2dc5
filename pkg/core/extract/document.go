package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"abs_intel/pkg/models"
)

// =============================================================================
// DOCUMENT EXTRACTION - Classify, then run the per-type field pipelines
// =============================================================================

// DealResult is the stable extraction contract for a new-issue document:
// the extracted record, a confidence in [0,1], and a human-readable issues
// list. Issues never block; they only annotate.
type DealResult struct {
	Deal       *models.ExtractedDeal
	DocType    models.DocumentType
	Confidence float64
	Issues     []string
}

// SurveillanceResult is the extraction contract for a surveillance report.
type SurveillanceResult struct {
	Snapshot   *models.SurveillanceSnapshot
	DocType    models.DocumentType
	Confidence float64
	Issues     []string
}

// DocumentExtractor is the prose-path entry point: classification followed
// by the field pipeline for the winning document type.
type DocumentExtractor struct {
	classifier  *DocumentClassifier
	fields      *FieldExtractor
	noteClasses *NoteClassExtractor
}

// NewDocumentExtractor wires the default classifier and extractors over one
// shared pattern library.
func NewDocumentExtractor(lib *PatternLibrary) *DocumentExtractor {
	fields := NewFieldExtractor(lib)
	return &DocumentExtractor{
		classifier:  NewDocumentClassifier(),
		fields:      fields,
		noteClasses: NewNoteClassExtractor(fields),
	}
}

// Classify exposes the classifier decision for the raw text.
func (d *DocumentExtractor) Classify(text string) (models.DocumentType, float64) {
	return d.classifier.Classify(text)
}

// ExtractDeal populates an ExtractedDeal from new-issue document text.
// Parse misses leave fields empty/zero and are reported through the
// validation issues, never as errors.
func (d *DocumentExtractor) ExtractDeal(text string) *DealResult {
	docType, confidence := d.classifier.Classify(text)

	deal := &models.ExtractedDeal{
		DealID:             GenerateDealID(),
		DealName:           d.fields.ExtractField(text, "deal_name"),
		Issuer:             d.fields.ExtractField(text, "issuer"),
		DealType:           d.fields.ExtractField(text, "deal_type"),
		AssetType:          d.fields.ExtractField(text, "asset_type"),
		Originator:         d.fields.ExtractField(text, "originator"),
		Servicer:           d.fields.ExtractField(text, "servicer"),
		Trustee:            d.fields.ExtractField(text, "trustee"),
		RatingAgency:       d.fields.ExtractField(text, "rating_agency"),
		IssuanceDate:       d.fields.ExtractDate(text, "issuance_date"),
		LegalFinalMaturity: d.fields.ExtractDate(text, "legal_final_maturity"),
		RevolvingPeriod:    d.fields.ExtractField(text, "revolving_period"),
		AmortizationPeriod: d.fields.ExtractField(text, "amortization_period"),
		TotalDealSize:      d.fields.ExtractAmount(text, "total_deal_size"),
		NoteClasses:        d.noteClasses.ExtractNoteClasses(text),
	}

	return &DealResult{
		Deal:       deal,
		DocType:    docType,
		Confidence: confidence,
	}
}

// ExtractSurveillance populates a SurveillanceSnapshot from surveillance
// report text. DealID stays empty here; the caller resolves or generates it
// before persistence.
func (d *DocumentExtractor) ExtractSurveillance(text, source string) *SurveillanceResult {
	docType, confidence := d.classifier.Classify(text)

	// All percentage fields stay in percentage units (1.25 = 1.25%) here;
	// the store converts the whole record to fractions in one place.
	snap := &models.SurveillanceSnapshot{
		DealName:           d.fields.ExtractField(text, "deal_name"),
		ReportDate:         d.fields.ExtractDate(text, "report_date"),
		DataSource:         source,
		PoolBalance:        d.fields.ExtractAmount(text, "pool_balance"),
		Collections:        d.fields.ExtractAmount(text, "collections"),
		ChargeOffs:         d.fields.ExtractAmount(text, "charge_offs"),
		Delinquencies30:    d.fields.ExtractRate(text, "delinquencies_30"),
		Delinquencies60:    d.fields.ExtractRate(text, "delinquencies_60"),
		Delinquencies90:    d.fields.ExtractRate(text, "delinquencies_90"),
		LossRate:           d.fields.ExtractRate(text, "loss_rate"),
		PrepaymentRate:     d.fields.ExtractRate(text, "prepayment_rate"),
		CovenantCompliance: d.fields.ExtractField(text, "covenant_compliance"),
		CreditEnhancement:  d.fields.ExtractRate(text, "credit_enhancement"),
		Metrics:            map[string]float64{},
	}

	return &SurveillanceResult{
		Snapshot:   snap,
		DocType:    docType,
		Confidence: confidence,
	}
}

// GenerateDealID creates an opaque deal identifier: timestamp plus a random
// suffix. Uniqueness matters, readability of the timestamp prefix helps
// operators; neither side is ever parsed back.
func GenerateDealID() string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("DEAL-%s-%s", time.Now().UTC().Format("20060102150405"), suffix)
}
