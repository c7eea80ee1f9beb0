package models

import "time"

// Application is a tenant with its own Auth0 domain.
type Application struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AppName   string    `gorm:"size:100;not null;uniqueIndex" json:"app_name"`
	Domain    string    `gorm:"size:255;not null" json:"domain"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
