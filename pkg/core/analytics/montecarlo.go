package analytics

import (
	"math"
	"math/rand"
	"sort"

	"abs_intel/pkg/models"
)

// MonteCarloInput configures a loss simulation. The seed makes runs
// reproducible; two runs with identical inputs produce identical paths.
type MonteCarloInput struct {
	BaseLossRate float64 // current annualized loss rate, percentage units
	Volatility   float64 // annualized stdev of the loss-rate shock, percentage points
	HorizonYears int
	Runs         int
	Seed         int64
}

// MonteCarloResult summarizes the simulated cumulative-loss distribution.
type MonteCarloResult struct {
	Runs           int
	MeanLoss       float64 // percentage units
	P50            float64
	P95            float64
	P99            float64
	WorstLoss      float64
	ClassOutcomes  []ClassOutcome
}

// ClassOutcome is the impairment probability for one note class: the share
// of simulated paths whose cumulative loss exceeded the class enhancement.
type ClassOutcome struct {
	ClassLabel            string
	Enhancement           float64
	ImpairmentProbability float64
}

// SimulateLosses runs a seeded random walk on the annual loss rate and
// accumulates losses over the horizon, then measures each note class's
// enhancement against the simulated distribution.
func SimulateLosses(deal *models.ExtractedDeal, in MonteCarloInput) *MonteCarloResult {
	if in.Runs <= 0 {
		in.Runs = 10000
	}
	if in.HorizonYears <= 0 {
		in.HorizonYears = 5
	}
	if in.Volatility <= 0 {
		in.Volatility = math.Max(in.BaseLossRate*0.5, 0.25)
	}

	rng := rand.New(rand.NewSource(in.Seed))
	cumulative := make([]float64, in.Runs)

	for i := 0; i < in.Runs; i++ {
		rate := in.BaseLossRate
		var total float64
		for y := 0; y < in.HorizonYears; y++ {
			rate += rng.NormFloat64() * in.Volatility
			if rate < 0 {
				rate = 0
			}
			total += rate
		}
		cumulative[i] = total
	}

	sort.Float64s(cumulative)

	res := &MonteCarloResult{
		Runs:      in.Runs,
		MeanLoss:  mean(cumulative),
		P50:       percentile(cumulative, 0.50),
		P95:       percentile(cumulative, 0.95),
		P99:       percentile(cumulative, 0.99),
		WorstLoss: cumulative[len(cumulative)-1],
	}

	for _, nc := range deal.NoteClasses {
		breaches := 0
		for _, loss := range cumulative {
			if loss > nc.EnhancementLevel {
				breaches++
			}
		}
		res.ClassOutcomes = append(res.ClassOutcomes, ClassOutcome{
			ClassLabel:            nc.ClassLabel,
			Enhancement:           nc.EnhancementLevel,
			ImpairmentProbability: float64(breaches) / float64(in.Runs),
		})
	}
	return res
}

func mean(sorted []float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return sum / float64(len(sorted))
}

// percentile uses nearest-rank on the pre-sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
