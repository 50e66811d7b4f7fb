package auth

import "github.com/lib/pq"

// Session rows are append-only: one row per login, fixed 1 hour TTL set at
// issuance and never extended. ExpiryDate is a millisecond epoch timestamp.
type Session struct {
	SessionToken string `gorm:"primaryKey" json:"session_token"`
	UserID       int32  `gorm:"not null;index" json:"user_id"`
	ExpiryDate   int64  `gorm:"not null" json:"expiry_date"`
}

type User struct {
	UserID         int32          `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Username       string         `gorm:"uniqueIndex;not null" json:"username"`
	Password       string         `json:"password" gorm:"-"`
	HashedPassword string         `json:"-"`
	School         string         `json:"school"`
	Links          pq.StringArray `gorm:"type:text[]" json:"links,omitempty"`
}

func (Session) TableName() string { return "app_auth.sessions" }
func (User) TableName() string    { return "app_auth.users" }
