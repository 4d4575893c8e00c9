package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes creates the indexes AutoMigrate struct tags cannot express.
// The two partial unique indexes are the storage-level source of truth for
// the slot invariants: at most one confirmed row per position per list and
// at most one confirmed row per user per list. Cancelled rows stay behind
// with their old position, so a plain unique index would not work.
func AddIndexes(db *gorm.DB) error {
	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_presences_unique_position
			ON presences (daily_list_id, position) WHERE status = 'confirmed'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_presences_unique_user
			ON presences (daily_list_id, user_id) WHERE status = 'confirmed'`,

		// Search indexes
		`CREATE INDEX IF NOT EXISTS idx_daily_lists_search
			ON daily_lists (date, list_type, status)`,
		`CREATE INDEX IF NOT EXISTS idx_presences_user_status
			ON presences (user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_presences_list_status
			ON presences (daily_list_id, status)`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
