// Package ingest is the pipeline entry point: it inspects a decoded
// payload's shape, routes it to the prose or sheet extractors, runs
// validation and reconciles the results into the store.
package ingest

import (
	"context"
	"strings"

	"abs_intel/pkg/core/extract"
	"abs_intel/pkg/core/logging"
	"abs_intel/pkg/core/sheet"
	"abs_intel/pkg/core/store"
	"abs_intel/pkg/core/validate"
	"abs_intel/pkg/models"
)

// Payload is a decoded input: either flat text or rectangular sheets. The
// upload/file-reading layer decodes bytes; shape-based dispatch happens
// here, inside the core, not at the presentation layer.
type Payload struct {
	Name   string
	Source string // data source tag carried onto snapshots
	Text   string
	Sheets []*sheet.Sheet
}

// Result summarizes one payload's ingestion: what was extracted, the
// confidence/issues triple, and what was persisted. Row-level persistence
// failures land in Issues and never abort the remaining records.
type Result struct {
	Payload      string
	DocType      models.DocumentType
	Deal         *models.ExtractedDeal
	Snapshots    []models.SurveillanceSnapshot
	Transactions []models.SheetTransaction
	Securities   int
	Confidence   float64
	Issues       []string
}

// Pipeline wires the extractors, validation and repositories. Construct
// once; all members are safe for reuse across payloads.
type Pipeline struct {
	docs      *extract.DocumentExtractor
	tables    *sheet.TransactionExtractor
	validator *validate.Engine
	deals     *store.DealRepo
	surv      *store.SurveillanceRepo
	pricing   *store.PricingRepo
	persist   bool
	log       *logging.Entry
}

// NewPipeline builds a persisting pipeline over the shared pattern library.
func NewPipeline(lib *extract.PatternLibrary) *Pipeline {
	return &Pipeline{
		docs:      extract.NewDocumentExtractor(lib),
		tables:    sheet.NewTransactionExtractor(),
		validator: validate.NewEngine(),
		deals:     store.NewDealRepo(),
		surv:      store.NewSurveillanceRepo(),
		pricing:   store.NewPricingRepo(),
		persist:   true,
		log:       logging.GetLogger().WithComponent("ingest"),
	}
}

// NewExtractOnlyPipeline builds a pipeline that skips the store entirely —
// extraction and validation still run, nothing is persisted.
func NewExtractOnlyPipeline(lib *extract.PatternLibrary) *Pipeline {
	p := NewPipeline(lib)
	p.persist = false
	return p
}

// Dispatch routes one payload by shape: sheets take the tabular path, flat
// text is classified and takes the prose path. Markdown text carrying pipe
// tables is re-shaped into sheets first.
func (p *Pipeline) Dispatch(ctx context.Context, payload *Payload) *Result {
	if len(payload.Sheets) > 0 {
		return p.ingestSheets(ctx, payload)
	}

	if sheet.IsMarkdownPayload(payload.Text) {
		if sheets := sheet.ParseMarkdownSheets(payload.Text); len(sheets) > 0 {
			reshaped := *payload
			reshaped.Sheets = sheets
			return p.ingestSheets(ctx, &reshaped)
		}
	}

	return p.ingestText(ctx, payload)
}

// ingestText runs the prose path: classify, extract per type, validate,
// persist.
func (p *Pipeline) ingestText(ctx context.Context, payload *Payload) *Result {
	docType, _ := p.docs.Classify(payload.Text)
	res := &Result{Payload: payload.Name, DocType: docType}

	switch docType {
	case models.DocTypeSurveillance:
		sr := p.docs.ExtractSurveillance(payload.Text, payload.Source)
		issues, confidence := p.validator.CheckSnapshot(sr.Snapshot, sr.Confidence)
		res.Confidence = confidence
		res.Issues = append(res.Issues, issues...)

		snap := *sr.Snapshot
		if p.persist {
			p.resolveSnapshotDeal(ctx, &snap)
			if err := p.surv.UpsertSnapshot(ctx, snap); err != nil {
				res.Issues = append(res.Issues, "persist: "+err.Error())
			}
		}
		res.Snapshots = append(res.Snapshots, snap)

	default:
		dr := p.docs.ExtractDeal(payload.Text)
		issues, confidence := p.validator.CheckDeal(dr.Deal, dr.Confidence)
		res.Confidence = confidence
		res.Issues = append(res.Issues, issues...)
		res.Deal = dr.Deal

		if p.persist {
			if err := p.deals.InsertDeal(ctx, dr.Deal, confidence); err != nil {
				res.Issues = append(res.Issues, "persist: "+err.Error())
			}
		}
	}

	p.log.WithFields(logging.Fields{
		"payload":    payload.Name,
		"doc_type":   string(res.DocType),
		"confidence": res.Confidence,
		"issues":     len(res.Issues),
	}).Info("text payload processed")
	return res
}

// ingestSheets runs the tabular path. A sheet whose header carries a ticker
// column is a Bloomberg pricing sheet; everything else goes through the
// column-as-transaction extractor.
func (p *Pipeline) ingestSheets(ctx context.Context, payload *Payload) *Result {
	res := &Result{Payload: payload.Name, DocType: models.DocTypeSheet}
	var confidences []float64

	for _, s := range payload.Sheets {
		if isPricingSheet(s) {
			br := sheet.ExtractBloombergRows(s)
			res.Issues = append(res.Issues, br.Issues...)
			confidences = append(confidences, br.Confidence)

			for _, row := range br.Rows {
				if !p.persist {
					res.Securities++
					continue
				}
				// Row-level fault isolation: one malformed row must not
				// abort the batch.
				if err := p.pricing.UpsertSecurity(ctx, row.Security, row.History); err != nil {
					res.Issues = append(res.Issues, "persist: "+err.Error())
					continue
				}
				res.Securities++
			}
			continue
		}

		tr := p.tables.ExtractTransactions(s)
		res.Issues = append(res.Issues, tr.Issues...)
		confidences = append(confidences, tr.Confidence)

		for i := range tr.Transactions {
			tx := &tr.Transactions[i]
			issues, _ := p.validator.CheckTransaction(tx, tr.Confidence)
			res.Issues = append(res.Issues, issues...)
			res.Transactions = append(res.Transactions, *tx)

			if p.persist && tr.SheetType == sheet.SheetTypeSurveillance {
				snap := transactionToSnapshot(tx, payload.Source)
				p.resolveSnapshotDeal(ctx, &snap)
				if err := p.surv.UpsertSnapshot(ctx, snap); err != nil {
					res.Issues = append(res.Issues, "persist: "+err.Error())
				} else {
					res.Snapshots = append(res.Snapshots, snap)
				}
			}
		}
	}

	res.Confidence = meanConfidence(confidences)
	p.log.WithFields(logging.Fields{
		"payload":      payload.Name,
		"sheets":       len(payload.Sheets),
		"transactions": len(res.Transactions),
		"securities":   res.Securities,
		"confidence":   res.Confidence,
	}).Info("sheet payload processed")
	return res
}

// resolveSnapshotDeal fills in the deal id: an existing deal with the same
// name is reused, otherwise a fresh id is generated.
func (p *Pipeline) resolveSnapshotDeal(ctx context.Context, snap *models.SurveillanceSnapshot) {
	if snap.DealID != "" {
		return
	}
	if id, _ := p.surv.ResolveDealID(ctx, snap.DealName); id != "" {
		snap.DealID = id
		return
	}
	snap.DealID = extract.GenerateDealID()
}

// transactionToSnapshot lifts a column-shaped surveillance record into the
// snapshot schema. The column header doubles as deal name; the report date
// comes from a date-like metric label when present.
func transactionToSnapshot(tx *models.SheetTransaction, source string) models.SurveillanceSnapshot {
	snap := models.SurveillanceSnapshot{
		DealName:          tx.EntityLabel,
		DataSource:        source,
		PoolBalance:       tx.PoolBalance,
		Collections:       tx.Collections,
		ChargeOffs:        tx.Losses,
		Delinquencies30:   tx.Metrics["delinquencies_30"],
		Delinquencies60:   tx.Metrics["delinquencies_60"],
		Delinquencies90:   tx.Metrics["delinquencies_90"],
		LossRate:          tx.Metrics["loss_rate"],
		PrepaymentRate:    tx.Metrics["prepayment_rate"],
		CreditEnhancement: tx.Metrics["credit_enhancement"],
		Metrics:           tx.Metrics,
	}

	// A column header like "Mar 2024" is a reporting period, not a deal.
	if d := extract.NormalizeDate(tx.EntityLabel); d != "" {
		snap.ReportDate = d
		snap.DealName = strings.TrimSpace(tx.SheetName)
	}
	for label, raw := range tx.RawValues {
		lower := strings.ToLower(label)
		if strings.Contains(lower, "report date") || strings.Contains(lower, "period end") {
			if d := extract.NormalizeDate(raw); d != "" {
				snap.ReportDate = d
			}
		}
		// Covenant rows hold text, so they never reach the metrics map.
		if strings.Contains(lower, "covenant") {
			snap.CovenantCompliance = raw
		}
	}
	return snap
}

// isPricingSheet checks the header row for a ticker-style column.
func isPricingSheet(s *sheet.Sheet) bool {
	if len(s.Rows) == 0 {
		return false
	}
	for _, h := range s.Rows[0] {
		lower := strings.ToLower(h)
		if strings.Contains(lower, "ticker") || strings.Contains(lower, "cusip") {
			return true
		}
	}
	return false
}

func meanConfidence(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
