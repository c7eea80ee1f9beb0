package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceInfo carries device metadata from request headers. Empty fields are
// treated as absent.
type DeviceInfo struct {
	DeviceNumber string
	PhoneModel   string
	CountryCode  string
	Version      string
	LoginType    int
}

// DeviceLink is a device annotated with its link to one account.
type DeviceLink struct {
	models.Device `gorm:"embedded"`
	LastLogin     time.Time `json:"last_login"`
	IsActive      bool      `json:"is_active"`
}

// AccountLink is an account annotated with its link to one device.
type AccountLink struct {
	models.Account `gorm:"embedded"`
	LastLogin      time.Time `json:"last_login"`
	IsActive       bool      `json:"is_active"`
}

type DeviceService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDeviceService(db *gorm.DB) *DeviceService {
	return &DeviceService{db: db, now: time.Now}
}

func (s *DeviceService) FindByNumber(ctx context.Context, deviceNumber string) (*models.Device, error) {
	var device models.Device
	if err := s.db.WithContext(ctx).Where("device_number = ?", deviceNumber).First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("find device: %w", err)
	}
	return &device, nil
}

// CreateOrUpdate creates the device or merges the supplied fields into the
// existing row. Fields absent from info never clear stored values.
func (s *DeviceService) CreateOrUpdate(ctx context.Context, info DeviceInfo) (*models.Device, error) {
	if info.DeviceNumber == "" {
		return nil, apperr.Validation("deviceNumber is required")
	}

	device, err := s.FindByNumber(ctx, info.DeviceNumber)
	if errors.Is(err, ErrDeviceNotFound) {
		device = &models.Device{
			DeviceNumber: info.DeviceNumber,
			PhoneModel:   optional(info.PhoneModel),
			CountryCode:  optional(info.CountryCode),
			Version:      optional(info.Version),
		}
		if info.LoginType != 0 {
			lt := info.LoginType
			device.LoginType = &lt
		}
		err = s.db.WithContext(ctx).Create(device).Error
		if err == nil {
			return device, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) && !apperr.IsDuplicateKey(err) {
			return nil, fmt.Errorf("create device: %w", err)
		}
		// Another request created it first; merge into that row.
		device, err = s.FindByNumber(ctx, info.DeviceNumber)
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if info.PhoneModel != "" {
		updates["phone_model"] = info.PhoneModel
		device.PhoneModel = optional(info.PhoneModel)
	}
	if info.CountryCode != "" {
		updates["country_code"] = info.CountryCode
		device.CountryCode = optional(info.CountryCode)
	}
	if info.Version != "" {
		updates["version"] = info.Version
		device.Version = optional(info.Version)
	}
	if info.LoginType != 0 {
		lt := info.LoginType
		updates["login_type"] = lt
		device.LoginType = &lt
	}
	if len(updates) == 0 {
		return device, nil
	}

	if err := s.db.WithContext(ctx).Model(device).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update device %s: %w", info.DeviceNumber, err)
	}
	return device, nil
}

// LinkToAccount upserts the device/account link, marking it active and
// stamping last_login.
func (s *DeviceService) LinkToAccount(ctx context.Context, deviceID, accountID uint) (*models.DeviceAccount, error) {
	now := s.now()
	link := &models.DeviceAccount{
		AccountID: accountID,
		DeviceID:  deviceID,
		IsActive:  true,
		LastLogin: now,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "device_id"}},
		DoUpdates: clause.Assignments(map[string]any{"is_active": true, "last_login": now, "updated_at": now}),
	}).Omit(clause.Associations).Create(link).Error
	if err != nil {
		return nil, fmt.Errorf("link device %d to account %d: %w", deviceID, accountID, err)
	}

	var stored models.DeviceAccount
	if err := s.db.WithContext(ctx).
		Where("account_id = ? AND device_id = ?", accountID, deviceID).
		First(&stored).Error; err != nil {
		return nil, fmt.Errorf("reload device link: %w", err)
	}
	return &stored, nil
}

func (s *DeviceService) DevicesForAccount(ctx context.Context, accountID uint) ([]DeviceLink, error) {
	var rows []DeviceLink
	err := s.db.WithContext(ctx).
		Model(&models.Device{}).
		Select("devices.*, device_accounts.last_login, device_accounts.is_active").
		Joins("JOIN device_accounts ON device_accounts.device_id = devices.id").
		Where("device_accounts.account_id = ?", accountID).
		Order("device_accounts.last_login DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("devices for account %d: %w", accountID, err)
	}
	return rows, nil
}

func (s *DeviceService) AccountsForDevice(ctx context.Context, deviceNumber string) ([]AccountLink, error) {
	var rows []AccountLink
	err := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Select("accounts.*, device_accounts.last_login, device_accounts.is_active").
		Joins("JOIN device_accounts ON device_accounts.account_id = accounts.id").
		Joins("JOIN devices ON devices.id = device_accounts.device_id").
		Where("devices.device_number = ?", deviceNumber).
		Order("device_accounts.last_login DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("accounts for device %s: %w", deviceNumber, err)
	}
	return rows, nil
}
