package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"abs_intel/pkg/core/analytics"
	"abs_intel/pkg/core/config"
	"abs_intel/pkg/core/store"
	"abs_intel/pkg/models"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config")
		dealID     = flag.String("deal", "", "deal id to model")
		runs       = flag.Int("runs", 0, "Monte Carlo runs (overrides config)")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}
	if *dealID == "" {
		log.Fatal("usage: riskmodel -deal <deal_id> [-runs n]")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *runs <= 0 {
		*runs = cfg.Analytics.MonteCarloRuns
	}

	ctx := context.Background()
	if err := store.InitDB(ctx); err != nil {
		log.Fatalf("store: %v", err)
	}
	defer store.Close()

	deal, err := store.NewDealRepo().LoadDeal(ctx, *dealID)
	if err != nil {
		log.Fatalf("load deal: %v", err)
	}
	snaps, err := store.NewSurveillanceRepo().LoadSnapshots(ctx, *dealID)
	if err != nil {
		log.Fatalf("load snapshots: %v", err)
	}

	var latest *models.SurveillanceSnapshot
	if len(snaps) > 0 {
		latest = &snaps[len(snaps)-1]
	}

	fmt.Printf("Deal %s %q: %d note classes, %d snapshots\n",
		deal.DealID, deal.DealName, len(deal.NoteClasses), len(snaps))

	fmt.Println("\nStress scenarios:")
	for _, sr := range analytics.RunStandardStress(deal, latest) {
		fmt.Printf("  %-16s stressed loss %.2f%%\n", sr.Scenario.Name, sr.StressedLossRate)
		for _, cs := range sr.Classes {
			status := "covered"
			if cs.PrincipalImpaired {
				status = "IMPAIRED"
			}
			fmt.Printf("    class %-4s enhancement %.2f%% coverage %.2fx %s\n",
				cs.ClassLabel, cs.Enhancement, cs.CoverageRatio, status)
		}
	}

	// Stored rate columns are fractions; the simulator takes percentage units.
	baseLoss := 0.0
	if latest != nil {
		baseLoss = latest.LossRate * 100
	}
	mc := analytics.SimulateLosses(deal, analytics.MonteCarloInput{
		BaseLossRate: baseLoss,
		Runs:         *runs,
		Seed:         cfg.Analytics.Seed,
	})

	fmt.Printf("\nMonte Carlo (%d runs): mean %.2f%% p50 %.2f%% p95 %.2f%% p99 %.2f%% worst %.2f%%\n",
		mc.Runs, mc.MeanLoss, mc.P50, mc.P95, mc.P99, mc.WorstLoss)
	for _, co := range mc.ClassOutcomes {
		fmt.Printf("  class %-4s impairment probability %.2f%%\n",
			co.ClassLabel, co.ImpairmentProbability*100)
	}
}
