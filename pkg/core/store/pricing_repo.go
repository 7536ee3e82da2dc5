package store

import (
	"context"
	"fmt"
	"time"

	"abs_intel/pkg/core/extract"
	"abs_intel/pkg/models"
)

// PricingRepo handles Bloomberg-sourced securities and their append-only
// history trail.
type PricingRepo struct{}

// NewPricingRepo creates a repository instance.
func NewPricingRepo() *PricingRepo {
	return &PricingRepo{}
}

// UpsertSecurity writes one security keyed by ticker: an existing row has
// its mutable fields updated in place, a new ticker inserts a full row.
// Every call, new or update, also appends one PricingHistoryPoint — the
// audit trail is append-only and records every sighting.
//
// Percentage fields are re-canonicalized here so no caller can bypass the
// 4-decimal-fraction invariant.
func (r *PricingRepo) UpsertSecurity(ctx context.Context, sec models.PricingSecurity, hist models.PricingHistoryPoint) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}
	if sec.Ticker == "" {
		return fmt.Errorf("security has no ticker")
	}

	sec.Yield = extract.NormalizePercent(sec.Yield)
	sec.Coupon = extract.NormalizePercent(sec.Coupon)
	sec.CreditSupport = extract.NormalizePercent(sec.CreditSupport)
	sec.WAC = extract.NormalizePercent(sec.WAC)
	hist.Yield = extract.NormalizePercent(hist.Yield)
	hist.Spread = extract.NormalizePercent(hist.Spread)
	hist.CreditSupport = extract.NormalizePercent(hist.CreditSupport)
	hist.Coupon = extract.NormalizePercent(hist.Coupon)

	upsert := `
		INSERT INTO pricing_securities
			(ticker, issuer, deal_name, class_label, pricing_date,
			 original_amount, yield, coupon, credit_support, rating, cusip, wac, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (ticker)
		DO UPDATE SET
			issuer = EXCLUDED.issuer,
			deal_name = EXCLUDED.deal_name,
			class_label = EXCLUDED.class_label,
			pricing_date = EXCLUDED.pricing_date,
			original_amount = EXCLUDED.original_amount,
			yield = EXCLUDED.yield,
			coupon = EXCLUDED.coupon,
			credit_support = EXCLUDED.credit_support,
			rating = EXCLUDED.rating,
			cusip = EXCLUDED.cusip,
			wac = EXCLUDED.wac,
			updated_at = EXCLUDED.updated_at;
	`
	_, err := pool.Exec(ctx, upsert,
		sec.Ticker, sec.Issuer, sec.DealName, sec.ClassLabel, sec.PricingDate,
		sec.OriginalAmount, sec.Yield, sec.Coupon, sec.CreditSupport,
		sec.Rating, sec.CUSIP, sec.WAC, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert security %s: %w", sec.Ticker, err)
	}

	appendHist := `
		INSERT INTO pricing_history
			(ticker, observed_date, yield, price, spread, credit_support, coupon, recorded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8);
	`
	_, err = pool.Exec(ctx, appendHist,
		sec.Ticker, hist.ObservedDate, hist.Yield, hist.Price, hist.Spread,
		hist.CreditSupport, hist.Coupon, time.Now())
	if err != nil {
		return fmt.Errorf("failed to append pricing history for %s: %w", sec.Ticker, err)
	}
	return nil
}

// LoadSecurity retrieves one security by ticker.
func (r *PricingRepo) LoadSecurity(ctx context.Context, ticker string) (*models.PricingSecurity, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT ticker, issuer, deal_name, class_label, pricing_date,
		       original_amount, yield, coupon, credit_support, rating, cusip, wac
		FROM pricing_securities WHERE ticker = $1`

	var sec models.PricingSecurity
	err := pool.QueryRow(ctx, query, ticker).Scan(
		&sec.Ticker, &sec.Issuer, &sec.DealName, &sec.ClassLabel,
		&sec.PricingDate, &sec.OriginalAmount, &sec.Yield, &sec.Coupon,
		&sec.CreditSupport, &sec.Rating, &sec.CUSIP, &sec.WAC)
	if err != nil {
		return nil, fmt.Errorf("no security found for ticker %s: %w", ticker, err)
	}
	return &sec, nil
}

// LoadHistory retrieves the full audit trail for a ticker, oldest first.
func (r *PricingRepo) LoadHistory(ctx context.Context, ticker string) ([]models.PricingHistoryPoint, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT ticker, observed_date, yield, price, spread, credit_support, coupon, recorded_at
		FROM pricing_history WHERE ticker = $1 ORDER BY recorded_at ASC`

	rows, err := pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing history: %w", err)
	}
	defer rows.Close()

	var points []models.PricingHistoryPoint
	for rows.Next() {
		var p models.PricingHistoryPoint
		if err := rows.Scan(&p.Ticker, &p.ObservedDate, &p.Yield, &p.Price,
			&p.Spread, &p.CreditSupport, &p.Coupon, &p.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
