package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate applies (idempotent) schema hardening beyond AutoMigrate:
// - Indexes for webhook redact lookups and state-token consumption
// - CHECK constraint on platform names
// - Unique idempotency key index
func Migrate() error {
	return DB.Transaction(func(tx *gorm.DB) error {
		indexes := []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_state_tokens_token ON state_tokens (token)`,
			`CREATE INDEX IF NOT EXISTS idx_state_tokens_expires_at ON state_tokens (expires_at)`,
			`CREATE INDEX IF NOT EXISTS idx_platform_connections_shop ON platform_connections (platform, shop_domain)`,
			`CREATE INDEX IF NOT EXISTS idx_platform_connections_account ON platform_connections (platform, provider_user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_webhook_logs_type_topic ON webhook_logs (webhook_type, topic)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_keys_key ON idempotency_keys (key)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Platform must be one of the supported sales channels ---
		check := `
DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint
		WHERE conrelid = 'platform_connections'::regclass
		  AND conname  = 'chk_platform_connections_platform'
	) THEN
		ALTER TABLE platform_connections
		ADD CONSTRAINT chk_platform_connections_platform
		CHECK (platform IN ('shopify', 'ebay'));
	END IF;
END $$;`
		if err := tx.Exec(check).Error; err != nil {
			return fmt.Errorf("check constraint migration failed: %w", err)
		}

		return nil
	})
}
