package models

import "time"

// Login providers carried in Account.LoginType and Device.LoginType.
const (
	LoginTypeApple  = 1
	LoginTypeGoogle = 2
)

// Account is an identity derived from an Auth0 principal, one per (auth0_sub, app_id).
// AppID 0 means the account was resolved without a tenant.
type Account struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Auth0Sub      string    `gorm:"size:255;not null;uniqueIndex:idx_accounts_sub_app,priority:1" json:"auth0_sub"`
	AppID         uint      `gorm:"not null;default:0;uniqueIndex:idx_accounts_sub_app,priority:2" json:"app_id"`
	UserID        *uint     `gorm:"index" json:"user_id"`
	Name          *string   `gorm:"size:255" json:"name"`
	Nickname      *string   `gorm:"size:255" json:"nickname"`
	Email         *string   `gorm:"size:255;index" json:"email"`
	EmailVerified bool      `gorm:"not null;default:false" json:"email_verified"`
	Picture       *string   `gorm:"type:text" json:"picture"`
	LoginType     int       `gorm:"not null;default:1" json:"login_type"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
