package infra

import (
	"fmt"

	"ecosort/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the GORM connection, auto-migrates the schema and then
// applies the idempotent SQL patches GORM cannot express (CHECK constraints,
// partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Surface unique violations as gorm.ErrDuplicatedKey so services
		// can map them without sniffing pq error strings.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
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

// RunMigrations applies AutoMigrate plus the schema patches. Also used by
// integration tests against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.ResidentProfile{},
		&model.PickupRequest{},
		&model.RewardItem{},
		&model.RedemptionLog{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot emit.
// Each statement guards itself with an existence check, so re-running on
// an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// The ledger's floor: a debit may never take a balance below zero.
		// The guarded UPDATE already enforces this; the constraint catches
		// any future code path that forgets the guard.
		{"check resident_profiles.points non-negative", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_resident_profiles_points') THEN
    ALTER TABLE resident_profiles
      ADD CONSTRAINT chk_resident_profiles_points CHECK (points >= 0);
  END IF;
END $$`},

		// A completed pickup always carries the weight that earned its points.
		{"check pickup_requests completed weight positive", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_pickup_requests_weight') THEN
    ALTER TABLE pickup_requests
      ADD CONSTRAINT chk_pickup_requests_weight CHECK (status <> 'Completed' OR weight_kg > 0);
  END IF;
END $$`},

		{"check reward_items.stock_level non-negative", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_reward_items_stock') THEN
    ALTER TABLE reward_items
      ADD CONSTRAINT chk_reward_items_stock CHECK (stock_level >= 0);
  END IF;
END $$`},

		// Partial index for the collector queue query (Pending rows only).
		{"partial index on pending pickups", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_pickup_requests_pending') THEN
    CREATE INDEX idx_pickup_requests_pending
        ON pickup_requests (scheduled_date)
        WHERE status = 'Pending';
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
