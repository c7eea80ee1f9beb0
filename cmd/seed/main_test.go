package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/config"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/database"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func useTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "seed.db") + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	prev := openDB
	openDB = func(*config.Config) (*gorm.DB, error) { return db, nil }
	t.Cleanup(func() { openDB = prev })
	return db
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSeedApplications(t *testing.T) {
	db := useTestDB(t)

	out, err := run(t, "applications")
	require.NoError(t, err)
	assert.Contains(t, out, "applications inserted: 3")

	out, err = run(t, "applications")
	require.NoError(t, err)
	assert.Contains(t, out, "applications inserted: 0")

	var count int64
	require.NoError(t, db.Model(&models.Application{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestSeedUser(t *testing.T) {
	db := useTestDB(t)

	out, err := run(t, "user", "-u", "admin", "-p", "s3cret-pass", "-e", "admin@example.com", "-r", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "username=admin role=admin")

	var user models.User
	require.NoError(t, db.Where("username = ?", "admin").First(&user).Error)
	assert.NotEqual(t, "s3cret-pass", user.Password)
}

func TestSeedUserValidation(t *testing.T) {
	useTestDB(t)

	_, err := run(t, "user", "-u", "admin", "-e", "admin@example.com")
	assert.Error(t, err)

	_, err = run(t, "user", "-u", "admin", "-p", "short", "-e", "admin@example.com")
	assert.Error(t, err)
}
