// Package analytics provides simple risk analytics over persisted deals
// and surveillance history: deterministic stress scenarios and seeded
// Monte Carlo loss simulation.
package analytics

import (
	"abs_intel/pkg/models"
)

// StressScenario shocks observed pool performance. Shocks are multiplative
// on rates and subtractive on enhancement, all in percentage units.
type StressScenario struct {
	Name               string
	LossRateMultiple   float64 // e.g. 3.0 = losses triple
	PrepaymentMultiple float64 // slower prepays extend exposure
	EnhancementHaircut float64 // percentage points removed from enhancement
}

// StandardScenarios mirror the usual rating-agency ladder.
func StandardScenarios() []StressScenario {
	return []StressScenario{
		{Name: "base", LossRateMultiple: 1.0, PrepaymentMultiple: 1.0},
		{Name: "moderate_stress", LossRateMultiple: 2.0, PrepaymentMultiple: 0.75, EnhancementHaircut: 1.0},
		{Name: "severe_stress", LossRateMultiple: 3.5, PrepaymentMultiple: 0.5, EnhancementHaircut: 2.5},
		{Name: "extreme_stress", LossRateMultiple: 5.0, PrepaymentMultiple: 0.25, EnhancementHaircut: 5.0},
	}
}

// ClassStress is the outcome for one note class under one scenario.
type ClassStress struct {
	ClassLabel        string
	Enhancement       float64 // post-haircut, percentage units
	StressedLossRate  float64 // percentage units
	CoverageRatio     float64 // enhancement / stressed losses
	PrincipalImpaired bool
}

// StressResult is one scenario applied to one deal.
type StressResult struct {
	Scenario         StressScenario
	DealID           string
	StressedLossRate float64
	Classes          []ClassStress
}

// RunStress applies a scenario to a deal using its latest surveillance
// snapshot as read back from the store, where rate columns are 4-decimal
// fractions. Analytics works in percentage units so enhancement and loss
// compare directly. A class is impaired when its enhancement no longer
// covers the stressed cumulative loss rate.
func RunStress(deal *models.ExtractedDeal, latest *models.SurveillanceSnapshot, sc StressScenario) *StressResult {
	baseLoss := 0.0
	if latest != nil {
		baseLoss = latest.LossRate * 100
	}
	stressedLoss := baseLoss * sc.LossRateMultiple

	res := &StressResult{
		Scenario:         sc,
		DealID:           deal.DealID,
		StressedLossRate: stressedLoss,
	}

	for _, nc := range deal.NoteClasses {
		enhancement := nc.EnhancementLevel - sc.EnhancementHaircut
		if enhancement < 0 {
			enhancement = 0
		}

		cs := ClassStress{
			ClassLabel:       nc.ClassLabel,
			Enhancement:      enhancement,
			StressedLossRate: stressedLoss,
		}
		if stressedLoss > 0 {
			cs.CoverageRatio = enhancement / stressedLoss
		}
		cs.PrincipalImpaired = stressedLoss > enhancement && stressedLoss > 0

		res.Classes = append(res.Classes, cs)
	}
	return res
}

// RunStandardStress runs the full scenario ladder.
func RunStandardStress(deal *models.ExtractedDeal, latest *models.SurveillanceSnapshot) []*StressResult {
	var out []*StressResult
	for _, sc := range StandardScenarios() {
		out = append(out, RunStress(deal, latest, sc))
	}
	return out
}
