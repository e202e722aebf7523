package model

import "time"

// LoginSession is the audit record of one authenticated session on one
// device. Rows are append-only: a session is closed by setting LogoutTime
// and IsActive=false exactly once, never deleted.
type LoginSession struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	UserID     uint       `json:"user_id" gorm:"index;not null"`
	IPAddress  string     `json:"ip_address" gorm:"type:varchar(45)"`
	UserAgent  string     `json:"user_agent" gorm:"type:varchar(255)"`
	SessionKey string     `json:"session_key" gorm:"type:varchar(40);index"`
	LoginTime  time.Time  `json:"login_time" gorm:"autoCreateTime"`
	LogoutTime *time.Time `json:"logout_time,omitempty"`
	IsActive   bool       `json:"is_active" gorm:"default:true"`
}

// Duration returns how long the session lasted, or has lasted so far for
// sessions that are still open.
func (s *LoginSession) Duration() time.Duration {
	end := time.Now()
	if s.LogoutTime != nil {
		end = *s.LogoutTime
	}
	return end.Sub(s.LoginTime)
}
