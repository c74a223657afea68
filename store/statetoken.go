package store

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"tandril-backend/models"

	"gorm.io/gorm"
)

// StateTokenTTL is how long an issued OAuth state token stays consumable.
const StateTokenTTL = 10 * time.Minute

var (
	ErrStateTokenNotFound = errors.New("state token not found")
	ErrStateTokenExpired  = errors.New("state token expired")
)

// StateTokens issues and consumes the single-use CSRF tokens that bind an OAuth
// authorization request to its callback.
type StateTokens struct {
	db *gorm.DB
}

func NewStateTokens(db *gorm.DB) *StateTokens {
	return &StateTokens{db: db}
}

// Issue mints a 256-bit random token for (userID, provider) and persists it with
// a fixed expiry. A persistence failure here is fatal to the caller's flow:
// starting an OAuth dance without a stored state would disable CSRF validation
// at the callback.
func (s *StateTokens) Issue(userID, provider string) (*models.StateToken, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generate state token: %w", err)
	}

	now := time.Now().UTC()
	token := &models.StateToken{
		Token:     base64.RawURLEncoding.EncodeToString(raw),
		UserID:    userID,
		Provider:  provider,
		CreatedAt: now,
		ExpiresAt: now.Add(StateTokenTTL),
	}
	if err := s.db.Create(token).Error; err != nil {
		return nil, fmt.Errorf("persist state token: %w", err)
	}

	// Opportunistic housekeeping; stale rows are harmless either way.
	_ = s.CleanupExpired()

	return token, nil
}

// Consume atomically retires a token and returns its owner data. The delete is
// keyed by primary key and checked via RowsAffected, so of two concurrent
// callbacks exactly one wins; the loser gets ErrStateTokenNotFound, the same
// answer as for a token that never existed.
func (s *StateTokens) Consume(token string) (*models.StateToken, error) {
	var rec models.StateToken
	if err := s.db.Where("token = ?", token).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStateTokenNotFound
		}
		return nil, fmt.Errorf("lookup state token: %w", err)
	}

	res := s.db.Where("id = ?", rec.Id).Delete(&models.StateToken{})
	if res.Error != nil {
		return nil, fmt.Errorf("retire state token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrStateTokenNotFound
	}

	if rec.Expired(time.Now().UTC()) {
		return nil, ErrStateTokenExpired
	}
	return &rec, nil
}

// CleanupExpired drops every token past its expiry.
func (s *StateTokens) CleanupExpired() error {
	return s.db.Where("expires_at < ?", time.Now().UTC()).Delete(&models.StateToken{}).Error
}
