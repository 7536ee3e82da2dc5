// Package validate runs post-extraction sanity checks. Checks produce an
// issues list and a downgraded confidence; they never block persistence.
package validate

import (
	"fmt"

	"abs_intel/pkg/models"
)

// minPlausibleDealSize is the floor below which a stated total deal size is
// treated as implausible for a rated securitization.
const minPlausibleDealSize = 1_000_000.0

// issuePenalty is the confidence haircut applied per recorded issue.
const issuePenalty = 0.05

// Engine applies the sanity checks. Stateless; safe to share.
type Engine struct{}

// NewEngine creates a validation engine.
func NewEngine() *Engine {
	return &Engine{}
}

// CheckDeal inspects an extracted deal and returns the issues found plus
// the adjusted confidence. Confidence never drops below zero.
func (e *Engine) CheckDeal(deal *models.ExtractedDeal, confidence float64) ([]string, float64) {
	var issues []string

	if deal.DealName == "" {
		issues = append(issues, "missing deal name")
	}
	if deal.Issuer == "" {
		issues = append(issues, "missing issuer")
	}
	if deal.TotalDealSize == 0 {
		issues = append(issues, "missing total deal size")
	} else if deal.TotalDealSize < minPlausibleDealSize {
		issues = append(issues, fmt.Sprintf("total deal size %.2f is implausibly small", deal.TotalDealSize))
	}
	if deal.IssuanceDate == "" {
		issues = append(issues, "missing issuance date")
	}

	switch n := len(deal.NoteClasses); {
	case n == 0:
		issues = append(issues, "no note classes found")
	case n < 2:
		issues = append(issues, "fewer than two note classes found")
	}

	for _, nc := range deal.NoteClasses {
		if nc.OriginalBalance == 0 {
			issues = append(issues, fmt.Sprintf("class %s has no balance", nc.ClassLabel))
		}
		if nc.InterestRate < 0 || nc.InterestRate > 30 {
			issues = append(issues, fmt.Sprintf("class %s rate %.2f%% outside plausible range", nc.ClassLabel, nc.InterestRate))
		}
	}

	return issues, downgrade(confidence, len(issues))
}

// CheckSnapshot inspects a surveillance snapshot the same way.
func (e *Engine) CheckSnapshot(snap *models.SurveillanceSnapshot, confidence float64) ([]string, float64) {
	var issues []string

	if snap.ReportDate == "" {
		issues = append(issues, "missing report date")
	}
	if snap.PoolBalance == 0 {
		issues = append(issues, "missing pool balance")
	}
	for _, d := range []struct {
		name string
		val  float64
	}{
		{"30-day delinquencies", snap.Delinquencies30},
		{"60-day delinquencies", snap.Delinquencies60},
		{"90-day delinquencies", snap.Delinquencies90},
		{"loss rate", snap.LossRate},
		{"prepayment rate", snap.PrepaymentRate},
		{"credit enhancement", snap.CreditEnhancement},
	} {
		if d.val < 0 || d.val > 100 {
			issues = append(issues, fmt.Sprintf("%s %.2f outside percentage range", d.name, d.val))
		}
	}

	return issues, downgrade(confidence, len(issues))
}

// CheckTransaction inspects one column-shaped sheet record.
func (e *Engine) CheckTransaction(tx *models.SheetTransaction, confidence float64) ([]string, float64) {
	var issues []string

	if len(tx.Metrics) == 0 {
		issues = append(issues, fmt.Sprintf("column %q produced no metrics", tx.EntityLabel))
	}
	if tx.PoolBalance < 0 {
		issues = append(issues, fmt.Sprintf("column %q has negative pool balance", tx.EntityLabel))
	}

	return issues, downgrade(confidence, len(issues))
}

func downgrade(confidence float64, issueCount int) float64 {
	adjusted := confidence - float64(issueCount)*issuePenalty
	if adjusted < 0 {
		return 0
	}
	return adjusted
}
