package database

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/models"
)

// DefaultApplications are the tenants known at first start.
var DefaultApplications = []models.Application{
	{AppName: "AlgeniusNext", Domain: "dev-ez5m18whai32urhj.us.auth0.com"},
	{AppName: "PicchatBox", Domain: "dev-l088mznni36phook.us.auth0.com"},
	{AppName: "AIMetaAid", Domain: "dev-aimetaaid.au.auth0.com"},
}

// SeedApplications inserts apps that are not present yet and returns how many were added.
func SeedApplications(db *gorm.DB, apps []models.Application) (int64, error) {
	if len(apps) == 0 {
		return 0, nil
	}
	rows := make([]models.Application, len(apps))
	copy(rows, apps)

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "app_name"}},
		DoNothing: true,
	}).Create(&rows)
	return result.RowsAffected, result.Error
}
