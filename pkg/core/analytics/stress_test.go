package analytics

import (
	"testing"

	"abs_intel/pkg/models"
)

func stressDeal() *models.ExtractedDeal {
	return &models.ExtractedDeal{
		DealID: "DEAL-20240315-abc",
		NoteClasses: []models.NoteClass{
			{ClassLabel: "A", EnhancementLevel: 12.0, SubordinationLevel: 1},
			{ClassLabel: "B", EnhancementLevel: 4.0, SubordinationLevel: 2},
		},
	}
}

func TestRunStressImpairment(t *testing.T) {
	deal := stressDeal()
	// Store-loaded snapshots carry fractions: 0.02 is a 2% loss rate.
	latest := &models.SurveillanceSnapshot{LossRate: 0.02}

	// 3.5x of 2.0% = 7.0% stressed loss; class B's post-haircut
	// enhancement (4.0 - 2.5 = 1.5) is breached, class A's (9.5) is not.
	sc := StressScenario{Name: "severe_stress", LossRateMultiple: 3.5, EnhancementHaircut: 2.5}
	res := RunStress(deal, latest, sc)

	if res.StressedLossRate != 7.0 {
		t.Errorf("expected stressed loss 7.0, got %f", res.StressedLossRate)
	}
	if len(res.Classes) != 2 {
		t.Fatalf("expected 2 class outcomes, got %d", len(res.Classes))
	}
	if res.Classes[0].PrincipalImpaired {
		t.Error("class A should not be impaired at 9.5 enhancement vs 7.0 loss")
	}
	if !res.Classes[1].PrincipalImpaired {
		t.Error("class B should be impaired at 1.5 enhancement vs 7.0 loss")
	}
}

func TestRunStressBaseScenarioNoImpairment(t *testing.T) {
	deal := stressDeal()
	latest := &models.SurveillanceSnapshot{LossRate: 0.005}

	res := RunStress(deal, latest, StressScenario{Name: "base", LossRateMultiple: 1.0, PrepaymentMultiple: 1.0})
	for _, cs := range res.Classes {
		if cs.PrincipalImpaired {
			t.Errorf("class %s impaired under base scenario", cs.ClassLabel)
		}
	}
}

func TestRunStressNilSnapshot(t *testing.T) {
	res := RunStress(stressDeal(), nil, StressScenario{Name: "severe_stress", LossRateMultiple: 3.5})
	if res.StressedLossRate != 0 {
		t.Errorf("expected zero stressed loss without history, got %f", res.StressedLossRate)
	}
	for _, cs := range res.Classes {
		if cs.PrincipalImpaired {
			t.Errorf("class %s impaired with no observed losses", cs.ClassLabel)
		}
	}
}

func TestRunStandardStressLadder(t *testing.T) {
	results := RunStandardStress(stressDeal(), &models.SurveillanceSnapshot{LossRate: 0.01})
	if len(results) != 4 {
		t.Fatalf("expected 4 scenarios, got %d", len(results))
	}
	// The ladder escalates monotonically.
	for i := 1; i < len(results); i++ {
		if results[i].StressedLossRate <= results[i-1].StressedLossRate {
			t.Errorf("scenario %s does not escalate: %f vs %f",
				results[i].Scenario.Name, results[i].StressedLossRate, results[i-1].StressedLossRate)
		}
	}
}
