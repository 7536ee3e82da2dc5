package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"abs_intel/pkg/models"
)

// These tests run against a real Postgres and are skipped unless
// DATABASE_URL is set. Each run keys its rows with a unique suffix so
// repeated runs against the same database never collide.

func requireDB(t *testing.T) context.Context {
	t.Helper()
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set; skipping store integration test")
	}
	ctx := context.Background()
	if err := InitDB(ctx); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	return ctx
}

func uniqueSuffix() string {
	return fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102150405"),
		uuid.NewString()[:8])
}

func countRows(ctx context.Context, t *testing.T, query string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := GetPool().QueryRow(ctx, query, args...).Scan(&n); err != nil {
		t.Fatalf("count query: %v", err)
	}
	return n
}

func TestUpsertSecurityIdempotent(t *testing.T) {
	ctx := requireDB(t)
	repo := NewPricingRepo()

	ticker := "ITEST " + uniqueSuffix()
	sec := models.PricingSecurity{
		Ticker:        ticker,
		Issuer:        "Apex Auto",
		ClassLabel:    "A-1",
		PricingDate:   "2024-03-15",
		Yield:         5.42, // percentage units in, fraction stored
		Coupon:        5.25,
		CreditSupport: 12.5,
	}
	hist := models.PricingHistoryPoint{Ticker: ticker, ObservedDate: "2024-03-15", Yield: 5.42}

	if err := repo.UpsertSecurity(ctx, sec, hist); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	sec.Yield = 5.60
	hist.Yield = 5.60
	if err := repo.UpsertSecurity(ctx, sec, hist); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if n := countRows(ctx, t,
		`SELECT COUNT(*) FROM pricing_securities WHERE ticker = $1`, ticker); n != 1 {
		t.Errorf("expected 1 security row after double ingestion, got %d", n)
	}
	if n := countRows(ctx, t,
		`SELECT COUNT(*) FROM pricing_history WHERE ticker = $1`, ticker); n != 2 {
		t.Errorf("expected 2 history rows after double ingestion, got %d", n)
	}

	loaded, err := repo.LoadSecurity(ctx, ticker)
	if err != nil {
		t.Fatalf("LoadSecurity: %v", err)
	}
	if loaded.Yield != 0.056 {
		t.Errorf("expected second yield 0.056 stored as a fraction, got %f", loaded.Yield)
	}
}

func TestUpsertSnapshotUniqueTriple(t *testing.T) {
	ctx := requireDB(t)
	repo := NewSurveillanceRepo()

	dealID := "DEAL-ITEST-" + uniqueSuffix()
	snap := models.SurveillanceSnapshot{
		DealID:            dealID,
		DealName:          "Apex Auto 2024-A",
		ReportDate:        "2024-06-30",
		DataSource:        "integration",
		PoolBalance:       95_000_000,
		LossRate:          1.25, // percentage units in, fraction stored
		CreditEnhancement: 12.5,
	}

	if err := repo.UpsertSnapshot(ctx, snap); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	snap.PoolBalance = 94_000_000
	if err := repo.UpsertSnapshot(ctx, snap); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if n := countRows(ctx, t,
		`SELECT COUNT(*) FROM surveillance_snapshots
		 WHERE deal_id = $1 AND report_date = $2 AND data_source = $3`,
		dealID, "2024-06-30", "integration"); n != 1 {
		t.Errorf("expected 1 snapshot row for the triple, got %d", n)
	}

	snaps, err := repo.LoadSnapshots(ctx, dealID)
	if err != nil {
		t.Fatalf("LoadSnapshots: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	if snaps[0].PoolBalance != 94_000_000 {
		t.Errorf("expected the second balance to win, got %f", snaps[0].PoolBalance)
	}
	// Stored rate columns share one unit: 4-decimal fractions.
	if snaps[0].LossRate != 0.0125 {
		t.Errorf("expected loss rate stored as 0.0125, got %f", snaps[0].LossRate)
	}
	if snaps[0].CreditEnhancement != 0.125 {
		t.Errorf("expected enhancement stored as 0.125, got %f", snaps[0].CreditEnhancement)
	}

	// A second report date is a new row, not an update.
	snap.ReportDate = "2024-07-31"
	if err := repo.UpsertSnapshot(ctx, snap); err != nil {
		t.Fatalf("third upsert: %v", err)
	}
	if n := countRows(ctx, t,
		`SELECT COUNT(*) FROM surveillance_snapshots WHERE deal_id = $1`, dealID); n != 2 {
		t.Errorf("expected 2 snapshot rows across report dates, got %d", n)
	}
}

func TestInsertAndLoadDeal(t *testing.T) {
	ctx := requireDB(t)
	repo := NewDealRepo()

	dealID := "DEAL-ITEST-" + uniqueSuffix()
	deal := &models.ExtractedDeal{
		DealID:        dealID,
		DealName:      "Apex Auto Receivables Trust 2024-A",
		Issuer:        "Apex Funding LLC",
		TotalDealSize: 750_000_000,
		IssuanceDate:  "2024-03-15",
		NoteClasses: []models.NoteClass{
			{ClassLabel: "B", OriginalBalance: 100_000_000, SubordinationLevel: 2},
			{ClassLabel: "A", OriginalBalance: 650_000_000, SubordinationLevel: 1},
		},
	}

	if err := repo.InsertDeal(ctx, deal, 0.9); err != nil {
		t.Fatalf("InsertDeal: %v", err)
	}

	loaded, err := repo.LoadDeal(ctx, dealID)
	if err != nil {
		t.Fatalf("LoadDeal: %v", err)
	}
	if loaded.DealName != deal.DealName || loaded.TotalDealSize != deal.TotalDealSize {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
	if len(loaded.NoteClasses) != 2 || loaded.NoteClasses[0].ClassLabel != "A" {
		t.Errorf("expected classes loaded senior first, got %+v", loaded.NoteClasses)
	}
}
