package store

import (
	"encoding/json"
	"time"

	"tandril-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WebhookLogs appends to the audit table. The caller decides what an append
// failure means; for webhook acknowledgments it is downgraded to a warning,
// never a non-2xx (compliance acks must not depend on the audit trail).
type WebhookLogs struct {
	db *gorm.DB
}

func NewWebhookLogs(db *gorm.DB) *WebhookLogs {
	return &WebhookLogs{db: db}
}

// Append records one verified delivery. rawPayload must be the exact bytes the
// provider sent; non-JSON bodies never reach this point (the ingestor parses
// before dispatch).
func (s *WebhookLogs) Append(webhookType, sourceDomain, topic string, rawPayload []byte) error {
	if !json.Valid(rawPayload) {
		rawPayload, _ = json.Marshal(string(rawPayload))
	}
	entry := models.WebhookLog{
		WebhookType:  webhookType,
		SourceDomain: sourceDomain,
		Topic:        topic,
		RawPayload:   datatypes.JSON(rawPayload),
		ProcessedAt:  time.Now().UTC(),
	}
	return s.db.Create(&entry).Error
}

// Count reports how many deliveries were logged, optionally filtered by type.
func (s *WebhookLogs) Count(webhookType string) (int64, error) {
	q := s.db.Model(&models.WebhookLog{})
	if webhookType != "" {
		q = q.Where("webhook_type = ?", webhookType)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}
