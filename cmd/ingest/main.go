package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/joho/godotenv"

	"abs_intel/pkg/core/config"
	"abs_intel/pkg/core/extract"
	"abs_intel/pkg/core/ingest"
	"abs_intel/pkg/core/logging"
	"abs_intel/pkg/core/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config")
		dir        = flag.String("dir", "", "folder of documents/sheets to ingest")
		file       = flag.String("file", "", "single file to ingest")
		source     = flag.String("source", "", "data source tag for snapshots")
		dryRun     = flag.Bool("dry-run", false, "extract and validate without persisting")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.LogFile != "" {
		logging.EnableFileRotation(cfg.LogFile)
	}
	if *dir == "" {
		*dir = cfg.Ingest.WatchDir
	}
	if *source == "" {
		*source = cfg.Ingest.DataSource
	}

	ctx := context.Background()

	lib := extract.NewPatternLibrary()
	if cfg.Ingest.PatternOverrides != "" {
		if err := lib.LoadOverrides(cfg.Ingest.PatternOverrides); err != nil {
			log.Fatalf("pattern overrides: %v", err)
		}
	}

	var pipeline *ingest.Pipeline
	if *dryRun {
		pipeline = ingest.NewExtractOnlyPipeline(lib)
	} else {
		if err := store.InitDB(ctx); err != nil {
			log.Fatalf("store: %v", err)
		}
		defer store.Close()
		pipeline = ingest.NewPipeline(lib)
	}

	switch {
	case *file != "":
		res, err := pipeline.ProcessFile(ctx, *file, *source)
		if err != nil {
			log.Fatalf("ingest %s: %v", *file, err)
		}
		printResult(res)

	case *dir != "":
		batch, err := pipeline.ProcessFolder(ctx, *dir, *source)
		if err != nil {
			log.Fatalf("batch %s: %v", *dir, err)
		}
		fmt.Printf("Batch complete: %d processed, %d failed\n", batch.Processed, batch.Failed)
		failed := make([]string, 0, len(batch.Errors))
		for name := range batch.Errors {
			failed = append(failed, name)
		}
		sort.Strings(failed)
		for _, name := range failed {
			fmt.Printf("  FAILED %s: %s\n", name, batch.Errors[name])
		}
		for _, res := range batch.Results {
			printResult(res)
		}

	default:
		fmt.Fprintln(os.Stderr, "usage: ingest -file <path> | -dir <folder> [-config cfg.yaml] [-dry-run]")
		os.Exit(2)
	}
}

func printResult(res *ingest.Result) {
	fmt.Printf("%s [%s] confidence=%.2f\n", res.Payload, res.DocType, res.Confidence)
	if res.Deal != nil {
		fmt.Printf("  deal %s %q size=%.0f classes=%d\n",
			res.Deal.DealID, res.Deal.DealName, res.Deal.TotalDealSize, len(res.Deal.NoteClasses))
	}
	if n := len(res.Snapshots); n > 0 {
		fmt.Printf("  %d surveillance snapshot(s)\n", n)
	}
	if n := len(res.Transactions); n > 0 {
		fmt.Printf("  %d sheet transaction(s)\n", n)
	}
	if res.Securities > 0 {
		fmt.Printf("  %d pricing securities\n", res.Securities)
	}
	for _, issue := range res.Issues {
		fmt.Printf("  issue: %s\n", issue)
	}
}
