package models

import "time"

type Device struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	DeviceNumber string    `gorm:"size:255;not null;uniqueIndex" json:"device_number"`
	PhoneModel   *string   `gorm:"size:100" json:"phone_model"`
	CountryCode  *string   `gorm:"size:20" json:"country_code"`
	Version      *string   `gorm:"size:50" json:"version"`
	LoginType    *int      `json:"login_type"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DeviceAccount links an Account to a Device. Rows go away with either parent.
type DeviceAccount struct {
	AccountID uint      `gorm:"primaryKey;autoIncrement:false" json:"account_id"`
	DeviceID  uint      `gorm:"primaryKey;autoIncrement:false;index" json:"device_id"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	LastLogin time.Time `gorm:"not null" json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Account   Account   `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`
	Device    Device    `gorm:"foreignKey:DeviceID;constraint:OnDelete:CASCADE" json:"-"`
}
