package store

import (
	"fmt"

	"tandril-backend/models"

	"gorm.io/gorm"
)

// Connections wraps the platform-connection table. The redact operations are
// idempotent: deleting rows that are already gone is success with a zero count,
// which is what makes provider webhook redelivery safe.
type Connections struct {
	db *gorm.DB
}

func NewConnections(db *gorm.DB) *Connections {
	return &Connections{db: db}
}

// RedactShop removes every connection for a shop domain on a platform.
func (s *Connections) RedactShop(platform, shopDomain string) (int64, error) {
	res := s.db.Where("platform = ? AND shop_domain = ?", platform, shopDomain).
		Delete(&models.PlatformConnection{})
	if res.Error != nil {
		return 0, fmt.Errorf("redact shop %s: %w", shopDomain, res.Error)
	}
	return res.RowsAffected, nil
}

// RedactAccount removes connections for a provider account. The provider user id
// is authoritative; the username is only consulted when the id matched nothing,
// so two identifiers pointing at different records can never both be deleted.
func (s *Connections) RedactAccount(platform, providerUserID, username string) (int64, error) {
	if providerUserID != "" {
		res := s.db.Where("platform = ? AND provider_user_id = ?", platform, providerUserID).
			Delete(&models.PlatformConnection{})
		if res.Error != nil {
			return 0, fmt.Errorf("redact account %s: %w", providerUserID, res.Error)
		}
		if res.RowsAffected > 0 {
			return res.RowsAffected, nil
		}
	}

	if username != "" {
		res := s.db.Where("platform = ? AND provider_username = ?", platform, username).
			Delete(&models.PlatformConnection{})
		if res.Error != nil {
			return 0, fmt.Errorf("redact account %s: %w", username, res.Error)
		}
		return res.RowsAffected, nil
	}

	return 0, nil
}

// ForUser lists a merchant's connections.
func (s *Connections) ForUser(userID string) ([]models.PlatformConnection, error) {
	var conns []models.PlatformConnection
	if err := s.db.Where("user_id = ?", userID).Order("created_at").Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}

// GetForUser fetches one connection, scoped to its owner.
func (s *Connections) GetForUser(userID, id string) (*models.PlatformConnection, error) {
	var conn models.PlatformConnection
	err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// DeleteForUser disconnects a platform, scoped to its owner. Idempotent.
func (s *Connections) DeleteForUser(userID, id string) (int64, error) {
	res := s.db.Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.PlatformConnection{})
	return res.RowsAffected, res.Error
}

// Upsert stores a fresh connection, replacing any previous row for the same
// (user, platform, shop/provider account) so repeating an OAuth flow never
// piles up duplicates.
func (s *Connections) Upsert(conn *models.PlatformConnection) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		q := tx.Where("user_id = ? AND platform = ?", conn.UserID, conn.Platform)
		if conn.ShopDomain != "" {
			q = q.Where("shop_domain = ?", conn.ShopDomain)
		} else {
			q = q.Where("provider_user_id = ?", conn.ProviderUserID)
		}
		if err := q.Delete(&models.PlatformConnection{}).Error; err != nil {
			return err
		}
		return tx.Create(conn).Error
	})
}
