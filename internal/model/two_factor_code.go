package model

import "time"

// TwoFactorCodeTTL is how long an issued code stays valid.
const TwoFactorCodeTTL = 10 * time.Minute

// TwoFactorCode is one issued login code. Codes are consumed exactly once
// and expire by timestamp comparison; stale rows are ignored, not deleted.
type TwoFactorCode struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Code      string    `json:"code" gorm:"type:varchar(6)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	IsUsed    bool      `json:"is_used" gorm:"default:false"`
}

// IsValid reports whether the code can still be redeemed.
func (c *TwoFactorCode) IsValid() bool {
	return !c.IsUsed && time.Since(c.CreatedAt) < TwoFactorCodeTTL
}
