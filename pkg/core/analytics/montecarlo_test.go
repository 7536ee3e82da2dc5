package analytics

import (
	"testing"

	"abs_intel/pkg/models"
)

func TestSimulateLossesSeededDeterminism(t *testing.T) {
	deal := stressDeal()
	in := MonteCarloInput{
		BaseLossRate: 1.5,
		Volatility:   0.5,
		HorizonYears: 5,
		Runs:         2000,
		Seed:         42,
	}

	first := SimulateLosses(deal, in)
	second := SimulateLosses(deal, in)

	if first.MeanLoss != second.MeanLoss || first.P95 != second.P95 || first.WorstLoss != second.WorstLoss {
		t.Errorf("identical seeds diverged: %+v vs %+v", first, second)
	}
	for i := range first.ClassOutcomes {
		if first.ClassOutcomes[i].ImpairmentProbability != second.ClassOutcomes[i].ImpairmentProbability {
			t.Errorf("class %s probability diverged", first.ClassOutcomes[i].ClassLabel)
		}
	}
}

func TestSimulateLossesDistributionShape(t *testing.T) {
	res := SimulateLosses(stressDeal(), MonteCarloInput{
		BaseLossRate: 1.0,
		Volatility:   0.5,
		HorizonYears: 5,
		Runs:         2000,
		Seed:         7,
	})

	if res.Runs != 2000 {
		t.Errorf("expected 2000 runs, got %d", res.Runs)
	}
	if res.P50 > res.P95 || res.P95 > res.P99 || res.P99 > res.WorstLoss {
		t.Errorf("percentiles not monotone: p50=%f p95=%f p99=%f worst=%f",
			res.P50, res.P95, res.P99, res.WorstLoss)
	}
	if res.MeanLoss <= 0 {
		t.Errorf("expected positive mean cumulative loss, got %f", res.MeanLoss)
	}
}

func TestSimulateLossesSeniorityOrdersImpairment(t *testing.T) {
	// The senior class carries more enhancement, so its impairment
	// probability can never exceed the junior's on the same paths.
	res := SimulateLosses(stressDeal(), MonteCarloInput{
		BaseLossRate: 2.0,
		Volatility:   1.5,
		HorizonYears: 5,
		Runs:         2000,
		Seed:         99,
	})

	if len(res.ClassOutcomes) != 2 {
		t.Fatalf("expected 2 class outcomes, got %d", len(res.ClassOutcomes))
	}
	senior, junior := res.ClassOutcomes[0], res.ClassOutcomes[1]
	if senior.ImpairmentProbability > junior.ImpairmentProbability {
		t.Errorf("senior impairment %f exceeds junior %f",
			senior.ImpairmentProbability, junior.ImpairmentProbability)
	}
}

func TestSimulateLossesDefaults(t *testing.T) {
	res := SimulateLosses(&models.ExtractedDeal{}, MonteCarloInput{BaseLossRate: 1.0, Seed: 1})
	if res.Runs != 10000 {
		t.Errorf("expected default 10000 runs, got %d", res.Runs)
	}
}
