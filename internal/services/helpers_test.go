package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/config"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/database"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key-with-enough-entropy"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:            testSecret,
		JWTExpiresIn:         24 * time.Hour,
		Auth0TokenExpiresIn:  720 * time.Hour,
		Auth0UserInfoTimeout: 2 * time.Second,
		UpstreamTimeout:      5 * time.Second,
		ResponseUTCOffset:    8,
		Environment:          "dev",
	}
}

// stubIdentityProvider returns a fixed profile and records the domains asked for.
type stubIdentityProvider struct {
	mu      sync.Mutex
	info    *UserInfo
	err     error
	domains []string
}

func (s *stubIdentityProvider) UserInfo(_ context.Context, domain, _ string) (*UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domains = append(s.domains, domain)
	if s.err != nil {
		return nil, s.err
	}
	info := *s.info
	return &info, nil
}

func (s *stubIdentityProvider) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.domains)
}

func strPtr(s string) *string { return &s }
