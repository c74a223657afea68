package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlatformConnection links a Tandril merchant to one sales channel account.
// GDPR redact webhooks delete rows from this table by provider identity.
type PlatformConnection struct {
	Id               string    `json:"id" gorm:"primaryKey"`
	UserID           string    `json:"-" gorm:"size:128;not null;index"`
	Platform         string    `json:"platform" gorm:"size:32;not null"` // "shopify" | "ebay"
	ShopDomain       string    `json:"shop_domain" gorm:"size:255"`      // e.g. acme.myshopify.com
	ProviderUserID   string    `json:"provider_user_id" gorm:"size:128"`
	ProviderUsername string    `json:"provider_username" gorm:"size:128"`
	AccessToken      string    `json:"-" gorm:"size:512"`
	Scopes           string    `json:"scopes" gorm:"size:512"`
	Status           string    `json:"status" gorm:"size:16;default:active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (conn *PlatformConnection) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	if conn.Id == "" {
		conn.Id = uuid.NewString()
	}
	return
}
