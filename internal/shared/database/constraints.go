package database

import (
	"fmt"

	"venuecap/internal/waitlist"

	"gorm.io/gorm"
)

// ledgerBalanceSQL keeps the four counters summing to the total. Conditional
// updates already preserve it; the CHECK catches anything that bypasses them.
const ledgerBalanceSQL = `
	DO $$
	BEGIN
		IF NOT EXISTS (
			SELECT 1 FROM pg_constraint WHERE conname = 'chk_resources_balanced'
		) THEN
			ALTER TABLE resources ADD CONSTRAINT chk_resources_balanced
				CHECK (available + reserved + held + blocked = total_capacity);
		END IF;
	END $$;
`

// MigrateConstraints adds the constraints GORM tags cannot express
func MigrateConstraints(db *gorm.DB) error {
	if err := db.Exec(ledgerBalanceSQL).Error; err != nil {
		return fmt.Errorf("add ledger balance constraint: %w", err)
	}

	// One active waitlist entry per user and resource
	if err := db.Exec(waitlist.ActivePairIndexSQL).Error; err != nil {
		return fmt.Errorf("add waitlist active pair index: %w", err)
	}
	return nil
}
