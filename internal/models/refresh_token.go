package models

import (
	"time"

	"gorm.io/gorm"
)

// RefreshToken is a server-side record of an issued refresh token. Rotation
// and logout revoke rows, so a token is only honoured while its row is live.
type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"size:36;index" json:"userId"`
	Token     string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index" json:"expiresAt"`
	IsRevoked bool      `gorm:"default:false" json:"isRevoked"`
}

// LiveRefreshTokens limits a query to userID's unrevoked, unexpired tokens.
func LiveRefreshTokens(userID string, now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ? AND is_revoked = ? AND expires_at > ?", userID, false, now)
	}
}

// RevokeRefreshTokens revokes the rows matched by q and expires them at now.
func RevokeRefreshTokens(q *gorm.DB, now time.Time) error {
	return q.Model(&RefreshToken{}).Updates(map[string]any{"is_revoked": true, "expires_at": now}).Error
}
