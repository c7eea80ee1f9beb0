package database

import (
	"path/filepath"
	"testing"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestSeedApplicationsIsRepeatable(t *testing.T) {
	db := setupTestDB(t)

	added, err := SeedApplications(db, DefaultApplications)
	require.NoError(t, err)
	assert.EqualValues(t, len(DefaultApplications), added)

	added, err = SeedApplications(db, DefaultApplications)
	require.NoError(t, err)
	assert.EqualValues(t, 0, added)

	var count int64
	require.NoError(t, db.Model(&models.Application{}).Count(&count).Error)
	assert.EqualValues(t, len(DefaultApplications), count)

	var app models.Application
	require.NoError(t, db.Where("app_name = ?", "PicchatBox").First(&app).Error)
	assert.Equal(t, "dev-l088mznni36phook.us.auth0.com", app.Domain)
}

func TestAccountUniqueIndexIsComposite(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&models.Account{Auth0Sub: "auth0|1", AppID: 1}).Error)
	require.NoError(t, db.Create(&models.Account{Auth0Sub: "auth0|1", AppID: 2}).Error)
	require.NoError(t, db.Create(&models.Account{Auth0Sub: "auth0|1"}).Error)

	err := db.Create(&models.Account{Auth0Sub: "auth0|1", AppID: 1}).Error
	assert.Error(t, err)
}
