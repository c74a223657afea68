package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookLog is the append-only audit record for every verified webhook delivery.
// Rows are never updated or deleted.
type WebhookLog struct {
	Id           uint           `json:"id" gorm:"primaryKey"`
	WebhookType  string         `json:"webhook_type" gorm:"size:32;not null"` // platform, e.g. "shopify"
	SourceDomain string         `json:"source_domain" gorm:"size:255"`
	Topic        string         `json:"topic" gorm:"size:128;not null"`
	RawPayload   datatypes.JSON `json:"raw_payload"`
	ProcessedAt  time.Time      `json:"processed_at" gorm:"index;not null"`
}
