package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrUpdateMergesSuppliedFields(t *testing.T) {
	svc := NewDeviceService(setupTestDB(t))
	ctx := context.Background()

	created, err := svc.CreateOrUpdate(ctx, DeviceInfo{DeviceNumber: "dev-001", PhoneModel: "iPhone"})
	require.NoError(t, err)
	assert.Nil(t, created.CountryCode)

	updated, err := svc.CreateOrUpdate(ctx, DeviceInfo{DeviceNumber: "dev-001", CountryCode: "US"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	stored, err := svc.FindByNumber(ctx, "dev-001")
	require.NoError(t, err)
	require.NotNil(t, stored.PhoneModel)
	require.NotNil(t, stored.CountryCode)
	assert.Equal(t, "iPhone", *stored.PhoneModel)
	assert.Equal(t, "US", *stored.CountryCode)
	assert.Nil(t, stored.Version)
}

func TestCreateOrUpdateWithNothingSuppliedIsNoop(t *testing.T) {
	svc := NewDeviceService(setupTestDB(t))
	ctx := context.Background()

	_, err := svc.CreateOrUpdate(ctx, DeviceInfo{DeviceNumber: "dev-001", PhoneModel: "Pixel", Version: "2.1.0", LoginType: models.LoginTypeGoogle})
	require.NoError(t, err)
	_, err = svc.CreateOrUpdate(ctx, DeviceInfo{DeviceNumber: "dev-001"})
	require.NoError(t, err)

	stored, err := svc.FindByNumber(ctx, "dev-001")
	require.NoError(t, err)
	assert.Equal(t, "Pixel", *stored.PhoneModel)
	assert.Equal(t, "2.1.0", *stored.Version)
	assert.Equal(t, models.LoginTypeGoogle, *stored.LoginType)
}

func TestCreateOrUpdateRequiresNumber(t *testing.T) {
	svc := NewDeviceService(setupTestDB(t))
	_, err := svc.CreateOrUpdate(context.Background(), DeviceInfo{PhoneModel: "iPhone"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestLinkToAccountIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDeviceService(db)
	ctx := context.Background()

	account, _, err := NewAccountService(db).ResolveOrCreate(ctx, AccountProfile{Sub: "auth0|1"}, 1)
	require.NoError(t, err)
	device, err := svc.CreateOrUpdate(ctx, DeviceInfo{DeviceNumber: "dev-001"})
	require.NoError(t, err)

	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }
	first, err := svc.LinkToAccount(ctx, device.ID, account.ID)
	require.NoError(t, err)
	assert.True(t, first.IsActive)

	// Deactivate out of band; relinking must reactivate.
	require.NoError(t, db.Model(&models.DeviceAccount{}).
		Where("account_id = ? AND device_id = ?", account.ID, device.ID).
		Update("is_active", false).Error)

	svc.now = func() time.Time { return t0.Add(time.Hour) }
	second, err := svc.LinkToAccount(ctx, device.ID, account.ID)
	require.NoError(t, err)

	assert.True(t, second.IsActive)
	assert.True(t, second.LastLogin.After(first.LastLogin))

	var n int64
	require.NoError(t, db.Model(&models.DeviceAccount{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestJoinQueries(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDeviceService(db)
	accounts := NewAccountService(db)
	ctx := context.Background()

	a1, _, err := accounts.ResolveOrCreate(ctx, AccountProfile{Sub: "auth0|1", Email: "one@example.com"}, 1)
	require.NoError(t, err)
	a2, _, err := accounts.ResolveOrCreate(ctx, AccountProfile{Sub: "auth0|2"}, 1)
	require.NoError(t, err)
	d1, err := svc.CreateOrUpdate(ctx, DeviceInfo{DeviceNumber: "dev-001", PhoneModel: "iPhone"})
	require.NoError(t, err)
	d2, err := svc.CreateOrUpdate(ctx, DeviceInfo{DeviceNumber: "dev-002"})
	require.NoError(t, err)

	for _, pair := range [][2]uint{{d1.ID, a1.ID}, {d2.ID, a1.ID}, {d1.ID, a2.ID}} {
		_, err := svc.LinkToAccount(ctx, pair[0], pair[1])
		require.NoError(t, err)
	}

	devices, err := svc.DevicesForAccount(ctx, a1.ID)
	require.NoError(t, err)
	require.Len(t, devices, 2)
	numbers := []string{devices[0].DeviceNumber, devices[1].DeviceNumber}
	assert.ElementsMatch(t, []string{"dev-001", "dev-002"}, numbers)
	for _, d := range devices {
		assert.True(t, d.IsActive)
		assert.False(t, d.LastLogin.IsZero())
	}

	linked, err := svc.AccountsForDevice(ctx, "dev-001")
	require.NoError(t, err)
	require.Len(t, linked, 2)
	subs := []string{linked[0].Auth0Sub, linked[1].Auth0Sub}
	assert.ElementsMatch(t, []string{"auth0|1", "auth0|2"}, subs)

	none, err := svc.AccountsForDevice(ctx, "dev-unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}
