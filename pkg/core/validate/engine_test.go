package validate

import (
	"strings"
	"testing"

	"abs_intel/pkg/models"
)

func completeDeal() *models.ExtractedDeal {
	return &models.ExtractedDeal{
		DealName:      "Apex Auto Receivables Trust 2024-A",
		Issuer:        "Apex Funding LLC",
		TotalDealSize: 750_000_000,
		IssuanceDate:  "2024-03-15",
		NoteClasses: []models.NoteClass{
			{ClassLabel: "A", OriginalBalance: 650_000_000, InterestRate: 5.25, SubordinationLevel: 1},
			{ClassLabel: "B", OriginalBalance: 100_000_000, InterestRate: 6.10, SubordinationLevel: 2},
		},
	}
}

func TestCheckDealCleanPassesThrough(t *testing.T) {
	e := NewEngine()

	issues, conf := e.CheckDeal(completeDeal(), 0.9)
	if len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}
	if conf != 0.9 {
		t.Errorf("expected confidence unchanged at 0.9, got %f", conf)
	}
}

func TestCheckDealMissingSizeIsNeverFatal(t *testing.T) {
	e := NewEngine()

	deal := completeDeal()
	deal.TotalDealSize = 0

	issues, conf := e.CheckDeal(deal, 0.9)
	if len(issues) != 1 {
		t.Fatalf("expected exactly 1 issue, got %v", issues)
	}
	if !strings.Contains(issues[0], "total deal size") {
		t.Errorf("issue should name the missing field, got %q", issues[0])
	}
	if diff := conf - 0.85; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected one-issue downgrade to 0.85, got %f", conf)
	}
	// The deal record itself is untouched; persistence stays possible.
	if deal.DealName == "" {
		t.Error("validation must not mutate the record")
	}
}

func TestCheckDealAccumulatesIssues(t *testing.T) {
	e := NewEngine()

	deal := &models.ExtractedDeal{
		NoteClasses: []models.NoteClass{
			{ClassLabel: "A", OriginalBalance: 0, InterestRate: 45},
		},
	}

	issues, conf := e.CheckDeal(deal, 0.6)
	// missing name, issuer, size, date + single class + no balance + bad rate.
	if len(issues) != 7 {
		t.Errorf("expected 7 issues, got %d: %v", len(issues), issues)
	}
	want := 0.6 - 7*0.05
	if diff := conf - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected confidence %f, got %f", want, conf)
	}
}

func TestCheckDealConfidenceFloorsAtZero(t *testing.T) {
	e := NewEngine()

	_, conf := e.CheckDeal(&models.ExtractedDeal{}, 0.1)
	if conf != 0 {
		t.Errorf("expected confidence floored at 0, got %f", conf)
	}
}

func TestCheckSnapshotPercentageRanges(t *testing.T) {
	e := NewEngine()

	snap := &models.SurveillanceSnapshot{
		ReportDate:      "2024-06-30",
		PoolBalance:     95_000_000,
		Delinquencies30: 1.85,
		LossRate:        150, // out of range
	}

	issues, conf := e.CheckSnapshot(snap, 0.8)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %v", issues)
	}
	if !strings.Contains(issues[0], "loss rate") {
		t.Errorf("issue should name the field, got %q", issues[0])
	}
	if diff := conf - 0.75; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected 0.75, got %f", conf)
	}
}

func TestCheckSnapshotEnhancementRange(t *testing.T) {
	e := NewEngine()

	snap := &models.SurveillanceSnapshot{
		ReportDate:        "2024-06-30",
		PoolBalance:       95_000_000,
		CreditEnhancement: 250, // percentage units, cannot exceed 100
	}

	issues, _ := e.CheckSnapshot(snap, 0.8)
	if len(issues) != 1 || !strings.Contains(issues[0], "credit enhancement") {
		t.Errorf("expected a credit enhancement range issue, got %v", issues)
	}
}

func TestCheckTransaction(t *testing.T) {
	e := NewEngine()

	tx := &models.SheetTransaction{
		EntityLabel: "Jun 2024",
		Metrics:     map[string]float64{"pool_balance": 95_000_000},
		PoolBalance: 95_000_000,
	}
	if issues, _ := e.CheckTransaction(tx, 0.9); len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}

	bad := &models.SheetTransaction{EntityLabel: "Jul 2024", PoolBalance: -5}
	issues, _ := e.CheckTransaction(bad, 0.9)
	if len(issues) != 2 {
		t.Errorf("expected 2 issues (no metrics, negative balance), got %v", issues)
	}
}
