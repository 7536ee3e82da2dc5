package store

import (
	"context"
	"fmt"
	"time"

	"abs_intel/pkg/models"
)

// DealRepo handles extracted deals and their note classes. Deals are
// immutable once persisted: re-ingestion inserts a new row under a fresh
// generated id rather than updating in place.
type DealRepo struct{}

// NewDealRepo creates a repository instance.
func NewDealRepo() *DealRepo {
	return &DealRepo{}
}

// InsertDeal writes a deal and its note classes. Note classes are written
// inside the same transaction; a duplicate class label within the deal is a
// constraint violation surfaced to the caller.
func (r *DealRepo) InsertDeal(ctx context.Context, deal *models.ExtractedDeal, confidence float64) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin deal insert: %w", err)
	}
	defer tx.Rollback(ctx)

	insertDeal := `
		INSERT INTO deals
			(deal_id, deal_name, issuer, deal_type, asset_type, originator,
			 servicer, trustee, rating_agency, issuance_date,
			 legal_final_maturity, revolving_period, amortization_period,
			 total_deal_size, confidence, first_seen, last_updated)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$16);
	`
	now := time.Now()
	_, err = tx.Exec(ctx, insertDeal,
		deal.DealID, deal.DealName, deal.Issuer, deal.DealType,
		deal.AssetType, deal.Originator, deal.Servicer, deal.Trustee,
		deal.RatingAgency, deal.IssuanceDate, deal.LegalFinalMaturity,
		deal.RevolvingPeriod, deal.AmortizationPeriod, deal.TotalDealSize,
		confidence, now)
	if err != nil {
		return fmt.Errorf("failed to insert deal %s: %w", deal.DealID, err)
	}

	insertClass := `
		INSERT INTO note_classes
			(deal_id, class_label, original_balance, current_balance,
			 interest_rate, expected_maturity, legal_final_maturity, rating,
			 subordination_level, payment_priority, enhancement_level)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11);
	`
	for _, nc := range deal.NoteClasses {
		_, err = tx.Exec(ctx, insertClass,
			deal.DealID, nc.ClassLabel, nc.OriginalBalance, nc.CurrentBalance,
			nc.InterestRate, nc.ExpectedMaturity, nc.LegalFinalMaturity,
			nc.Rating, nc.SubordinationLevel, nc.PaymentPriority,
			nc.EnhancementLevel)
		if err != nil {
			return fmt.Errorf("failed to insert class %s of deal %s: %w",
				nc.ClassLabel, deal.DealID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit deal %s: %w", deal.DealID, err)
	}
	return nil
}

// LoadDeal retrieves a deal and its note classes, senior class first.
func (r *DealRepo) LoadDeal(ctx context.Context, dealID string) (*models.ExtractedDeal, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT deal_id, deal_name, issuer, deal_type, asset_type, originator,
		       servicer, trustee, rating_agency, issuance_date,
		       legal_final_maturity, revolving_period, amortization_period,
		       total_deal_size
		FROM deals WHERE deal_id = $1`

	var d models.ExtractedDeal
	err := pool.QueryRow(ctx, query, dealID).Scan(
		&d.DealID, &d.DealName, &d.Issuer, &d.DealType, &d.AssetType,
		&d.Originator, &d.Servicer, &d.Trustee, &d.RatingAgency,
		&d.IssuanceDate, &d.LegalFinalMaturity, &d.RevolvingPeriod,
		&d.AmortizationPeriod, &d.TotalDealSize)
	if err != nil {
		return nil, fmt.Errorf("no deal found for id %s: %w", dealID, err)
	}

	classQuery := `
		SELECT class_label, original_balance, current_balance, interest_rate,
		       expected_maturity, legal_final_maturity, rating,
		       subordination_level, payment_priority, enhancement_level
		FROM note_classes
		WHERE deal_id = $1
		ORDER BY subordination_level ASC, class_label ASC`

	rows, err := pool.Query(ctx, classQuery, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to load note classes for %s: %w", dealID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var nc models.NoteClass
		if err := rows.Scan(&nc.ClassLabel, &nc.OriginalBalance,
			&nc.CurrentBalance, &nc.InterestRate, &nc.ExpectedMaturity,
			&nc.LegalFinalMaturity, &nc.Rating, &nc.SubordinationLevel,
			&nc.PaymentPriority, &nc.EnhancementLevel); err != nil {
			return nil, fmt.Errorf("failed to scan note class row: %w", err)
		}
		d.NoteClasses = append(d.NoteClasses, nc)
	}
	return &d, rows.Err()
}
