package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements bootstrap the logical schema. Percentage columns hold
// 4-decimal fractions, dates are ISO YYYY-MM-DD strings, amounts are
// scale-normalized base currency units.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS deals (
		deal_id             TEXT PRIMARY KEY,
		deal_name           TEXT NOT NULL DEFAULT '',
		issuer              TEXT NOT NULL DEFAULT '',
		deal_type           TEXT NOT NULL DEFAULT '',
		asset_type          TEXT NOT NULL DEFAULT '',
		originator          TEXT NOT NULL DEFAULT '',
		servicer            TEXT NOT NULL DEFAULT '',
		trustee             TEXT NOT NULL DEFAULT '',
		rating_agency       TEXT NOT NULL DEFAULT '',
		issuance_date       TEXT NOT NULL DEFAULT '',
		legal_final_maturity TEXT NOT NULL DEFAULT '',
		revolving_period    TEXT NOT NULL DEFAULT '',
		amortization_period TEXT NOT NULL DEFAULT '',
		total_deal_size     DOUBLE PRECISION NOT NULL DEFAULT 0,
		confidence          DOUBLE PRECISION NOT NULL DEFAULT 0,
		first_seen          TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_updated        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS note_classes (
		id                  BIGSERIAL PRIMARY KEY,
		deal_id             TEXT NOT NULL REFERENCES deals(deal_id),
		class_label         TEXT NOT NULL,
		original_balance    DOUBLE PRECISION NOT NULL DEFAULT 0,
		current_balance     DOUBLE PRECISION NOT NULL DEFAULT 0,
		interest_rate       DOUBLE PRECISION NOT NULL DEFAULT 0,
		expected_maturity   TEXT NOT NULL DEFAULT '',
		legal_final_maturity TEXT NOT NULL DEFAULT '',
		rating              TEXT NOT NULL DEFAULT '',
		subordination_level INTEGER NOT NULL DEFAULT 5,
		payment_priority    INTEGER NOT NULL DEFAULT 5,
		enhancement_level   DOUBLE PRECISION NOT NULL DEFAULT 0,
		UNIQUE (deal_id, class_label)
	)`,
	`CREATE TABLE IF NOT EXISTS surveillance_snapshots (
		id                  BIGSERIAL PRIMARY KEY,
		deal_id             TEXT NOT NULL,
		report_date         TEXT NOT NULL,
		data_source         TEXT NOT NULL,
		pool_balance        DOUBLE PRECISION NOT NULL DEFAULT 0,
		collections         DOUBLE PRECISION NOT NULL DEFAULT 0,
		charge_offs         DOUBLE PRECISION NOT NULL DEFAULT 0,
		delinq_30           DOUBLE PRECISION NOT NULL DEFAULT 0,
		delinq_60           DOUBLE PRECISION NOT NULL DEFAULT 0,
		delinq_90           DOUBLE PRECISION NOT NULL DEFAULT 0,
		loss_rate           DOUBLE PRECISION NOT NULL DEFAULT 0,
		prepayment_rate     DOUBLE PRECISION NOT NULL DEFAULT 0,
		covenant_compliance TEXT NOT NULL DEFAULT '',
		credit_enhancement  DOUBLE PRECISION NOT NULL DEFAULT 0,
		metrics             JSONB NOT NULL DEFAULT '{}',
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (deal_id, report_date, data_source)
	)`,
	`CREATE TABLE IF NOT EXISTS pricing_securities (
		ticker          TEXT PRIMARY KEY,
		issuer          TEXT NOT NULL DEFAULT '',
		deal_name       TEXT NOT NULL DEFAULT '',
		class_label     TEXT NOT NULL DEFAULT '',
		pricing_date    TEXT NOT NULL DEFAULT '',
		original_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		yield           DOUBLE PRECISION NOT NULL DEFAULT 0,
		coupon          DOUBLE PRECISION NOT NULL DEFAULT 0,
		credit_support  DOUBLE PRECISION NOT NULL DEFAULT 0,
		rating          TEXT NOT NULL DEFAULT '',
		cusip           TEXT NOT NULL DEFAULT '',
		wac             DOUBLE PRECISION NOT NULL DEFAULT 0,
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS pricing_history (
		id              BIGSERIAL PRIMARY KEY,
		ticker          TEXT NOT NULL,
		observed_date   TEXT NOT NULL DEFAULT '',
		yield           DOUBLE PRECISION NOT NULL DEFAULT 0,
		price           DOUBLE PRECISION NOT NULL DEFAULT 0,
		spread          DOUBLE PRECISION NOT NULL DEFAULT 0,
		credit_support  DOUBLE PRECISION NOT NULL DEFAULT 0,
		coupon          DOUBLE PRECISION NOT NULL DEFAULT 0,
		recorded_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pricing_history_ticker ON pricing_history (ticker)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_deal ON surveillance_snapshots (deal_id)`,
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema bootstrap failed: %w", err)
		}
	}
	return nil
}
