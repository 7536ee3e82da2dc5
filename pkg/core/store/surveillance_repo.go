package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"abs_intel/pkg/core/extract"
	"abs_intel/pkg/models"
)

// SurveillanceRepo handles time-series pool-performance snapshots, unique
// on (deal_id, report_date, data_source).
type SurveillanceRepo struct{}

// NewSurveillanceRepo creates a repository instance.
func NewSurveillanceRepo() *SurveillanceRepo {
	return &SurveillanceRepo{}
}

// UpsertSnapshot writes one observation. Re-ingesting the same
// (deal, date, source) updates the existing row in place: new values
// overwrite old, no history is retained for this entity. The referenced
// deal is lazily created if this is the first sighting of its id.
//
// Snapshots arrive with percentage fields in percentage units (1.25 =
// 1.25%); every percentage column is converted to a 4-decimal fraction
// here, in one place, so stored credit_enhancement and loss_rate always
// share a unit.
func (r *SurveillanceRepo) UpsertSnapshot(ctx context.Context, snap models.SurveillanceSnapshot) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}
	if snap.DealID == "" {
		return fmt.Errorf("snapshot has no deal id")
	}
	if snap.ReportDate == "" {
		return fmt.Errorf("snapshot for deal %s has no report date", snap.DealID)
	}

	if err := r.ensureDeal(ctx, snap.DealID, snap.DealName); err != nil {
		return err
	}

	snap.Delinquencies30 = extract.FractionFromPercent(snap.Delinquencies30)
	snap.Delinquencies60 = extract.FractionFromPercent(snap.Delinquencies60)
	snap.Delinquencies90 = extract.FractionFromPercent(snap.Delinquencies90)
	snap.LossRate = extract.FractionFromPercent(snap.LossRate)
	snap.PrepaymentRate = extract.FractionFromPercent(snap.PrepaymentRate)
	snap.CreditEnhancement = extract.FractionFromPercent(snap.CreditEnhancement)

	metrics := snap.Metrics
	if metrics == nil {
		metrics = map[string]float64{}
	}
	metricsJSON, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot metrics: %w", err)
	}

	upsert := `
		INSERT INTO surveillance_snapshots
			(deal_id, report_date, data_source, pool_balance, collections,
			 charge_offs, delinq_30, delinq_60, delinq_90, loss_rate,
			 prepayment_rate, covenant_compliance, credit_enhancement,
			 metrics, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (deal_id, report_date, data_source)
		DO UPDATE SET
			pool_balance = EXCLUDED.pool_balance,
			collections = EXCLUDED.collections,
			charge_offs = EXCLUDED.charge_offs,
			delinq_30 = EXCLUDED.delinq_30,
			delinq_60 = EXCLUDED.delinq_60,
			delinq_90 = EXCLUDED.delinq_90,
			loss_rate = EXCLUDED.loss_rate,
			prepayment_rate = EXCLUDED.prepayment_rate,
			covenant_compliance = EXCLUDED.covenant_compliance,
			credit_enhancement = EXCLUDED.credit_enhancement,
			metrics = EXCLUDED.metrics,
			updated_at = EXCLUDED.updated_at;
	`
	_, err = pool.Exec(ctx, upsert,
		snap.DealID, snap.ReportDate, snap.DataSource, snap.PoolBalance,
		snap.Collections, snap.ChargeOffs, snap.Delinquencies30,
		snap.Delinquencies60, snap.Delinquencies90, snap.LossRate,
		snap.PrepaymentRate, snap.CovenantCompliance, snap.CreditEnhancement,
		metricsJSON, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot %s/%s/%s: %w",
			snap.DealID, snap.ReportDate, snap.DataSource, err)
	}
	return nil
}

// ensureDeal creates a stub deal row on first sight of a deal id and bumps
// last_updated on every subsequent sighting.
func (r *SurveillanceRepo) ensureDeal(ctx context.Context, dealID, dealName string) error {
	pool := GetPool()

	stmt := `
		INSERT INTO deals (deal_id, deal_name, first_seen, last_updated)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (deal_id)
		DO UPDATE SET last_updated = now();
	`
	if _, err := pool.Exec(ctx, stmt, dealID, dealName); err != nil {
		return fmt.Errorf("failed to ensure deal %s: %w", dealID, err)
	}
	return nil
}

// LoadSnapshots returns the time series for a deal, oldest report first.
// Percentage columns come back as the stored 4-decimal fractions.
func (r *SurveillanceRepo) LoadSnapshots(ctx context.Context, dealID string) ([]models.SurveillanceSnapshot, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT deal_id, report_date, data_source, pool_balance, collections,
		       charge_offs, delinq_30, delinq_60, delinq_90, loss_rate,
		       prepayment_rate, covenant_compliance, credit_enhancement, metrics
		FROM surveillance_snapshots
		WHERE deal_id = $1
		ORDER BY report_date ASC`

	rows, err := pool.Query(ctx, query, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots for %s: %w", dealID, err)
	}
	defer rows.Close()

	var snaps []models.SurveillanceSnapshot
	for rows.Next() {
		var s models.SurveillanceSnapshot
		var metricsJSON []byte
		if err := rows.Scan(&s.DealID, &s.ReportDate, &s.DataSource,
			&s.PoolBalance, &s.Collections, &s.ChargeOffs,
			&s.Delinquencies30, &s.Delinquencies60, &s.Delinquencies90,
			&s.LossRate, &s.PrepaymentRate, &s.CovenantCompliance,
			&s.CreditEnhancement, &metricsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		if err := json.Unmarshal(metricsJSON, &s.Metrics); err != nil {
			s.Metrics = map[string]float64{}
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// ResolveDealID finds an existing deal id by exact deal name. Empty string
// when the name has never been seen.
func (r *SurveillanceRepo) ResolveDealID(ctx context.Context, dealName string) (string, error) {
	pool := GetPool()
	if pool == nil {
		return "", fmt.Errorf("database pool not initialized")
	}
	if dealName == "" {
		return "", nil
	}

	var id string
	err := pool.QueryRow(ctx,
		`SELECT deal_id FROM deals WHERE deal_name = $1 ORDER BY first_seen ASC LIMIT 1`,
		dealName).Scan(&id)
	if err != nil {
		return "", nil // unseen name, caller generates a fresh id
	}
	return id, nil
}
