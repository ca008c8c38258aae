package infra

import (
	"fmt"

	"github.com/Team-Techentia/veedra-sub001/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, migrates the tables
// and applies the idempotent SQL that AutoMigrate cannot express.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Unique violations surface as gorm.ErrDuplicatedKey so callers can
		// re-allocate a fresh code.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates every table and applies schema patches.
// Integration tests call it directly against a testcontainers database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.SequenceCounter{},
		&model.Product{},
		&model.Combo{},
		&model.Bill{},
		&model.BillLine{},
		&model.BillCombo{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL that GORM tags cannot describe
// (CHECK constraints, partial indexes). Each statement is guarded so
// re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"combo usage never exceeds its limit", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_combos_usage_within_limit') THEN
    ALTER TABLE combos
      ADD CONSTRAINT chk_combos_usage_within_limit
      CHECK (usage_limit = 0 OR usage_count <= usage_limit);
  END IF;
END $$`},
		{"sequence counters are positive", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_sequence_counters_positive') THEN
    ALTER TABLE sequence_counters
      ADD CONSTRAINT chk_sequence_counters_positive CHECK (last_value > 0);
  END IF;
END $$`},
		// receipt sweep query
		{"partial index on bills without receipt", `
CREATE INDEX IF NOT EXISTS idx_bills_missing_receipt
    ON bills (created_at)
    WHERE receipt_path IS NULL`},
		{"combo line lookup", `
CREATE INDEX IF NOT EXISTS idx_bill_lines_combo_code
    ON bill_lines (combo_code)
    WHERE combo_code IS NOT NULL`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
