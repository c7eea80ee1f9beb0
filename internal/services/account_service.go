package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/models"
	"gorm.io/gorm"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrDeviceNotFound  = errors.New("device not found")
	ErrNoRelation      = errors.New("no relation")
)

// accountProfileColumns are overwritten in full on every update.
var accountProfileColumns = []string{
	"user_id", "name", "nickname", "email", "email_verified",
	"picture", "login_type", "updated_at",
}

// AccountProfile is what the identity provider tells us about a subject.
// Empty strings and a nil EmailVerified mean "not supplied".
type AccountProfile struct {
	Sub           string
	Name          string
	Nickname      string
	Email         string
	EmailVerified *bool
	Picture       string
	LoginType     int
}

// UnbindResult reports what UnbindDeviceAndDeleteAccount did. Reason is set
// when Success is false.
type UnbindResult struct {
	Success            bool   `json:"success"`
	Reason             string `json:"reason,omitempty"`
	DeviceLinksDeleted int64  `json:"deviceLinksDeleted"`
	AccountsDeleted    int64  `json:"accountsDeleted"`
}

type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// FindByAuth0Sub returns every account of the subject across tenants.
func (s *AccountService) FindByAuth0Sub(ctx context.Context, sub string) ([]models.Account, error) {
	var accounts []models.Account
	if err := s.db.WithContext(ctx).
		Where("auth0_sub = ?", sub).
		Order("app_id, id").
		Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("find accounts by sub: %w", err)
	}
	return accounts, nil
}

func (s *AccountService) FindByID(ctx context.Context, id uint) (*models.Account, error) {
	return s.first(s.db.WithContext(ctx).Where("id = ?", id))
}

// FindByAuth0SubAndAppID is the canonical lookup. appID 0 addresses the
// account resolved without a tenant.
func (s *AccountService) FindByAuth0SubAndAppID(ctx context.Context, sub string, appID uint) (*models.Account, error) {
	return s.first(s.db.WithContext(ctx).Where("auth0_sub = ? AND app_id = ?", sub, appID))
}

func (s *AccountService) first(q *gorm.DB) (*models.Account, error) {
	var account models.Account
	if err := q.First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &account, nil
}

// CreateAccount inserts account. A uniqueness violation is returned as an
// apperr conflict wrapping ErrAccountExists.
func (s *AccountService) CreateAccount(ctx context.Context, account *models.Account) error {
	if account.Auth0Sub == "" {
		return apperr.Validation("auth0_sub is required")
	}
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || apperr.IsDuplicateKey(err) {
			return apperr.Conflict("account already exists", ErrAccountExists)
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// UpdateAccount overwrites every mutable profile column with the values in
// account. Callers merge with the stored row first.
func (s *AccountService) UpdateAccount(ctx context.Context, account *models.Account) error {
	if account.ID == 0 {
		return apperr.Validation("account id is required")
	}
	account.UpdatedAt = time.Now()

	result := s.db.WithContext(ctx).
		Model(account).
		Select(accountProfileColumns).
		Updates(account)
	if result.Error != nil {
		return fmt.Errorf("update account %d: %w", account.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ResolveOrCreate finds the account for (profile.Sub, appID) and refreshes its
// profile, or creates it. A lost creation race is recovered by re-reading the
// winner's row. created reports whether this call inserted the row.
func (s *AccountService) ResolveOrCreate(ctx context.Context, profile AccountProfile, appID uint) (account *models.Account, created bool, err error) {
	if profile.Sub == "" {
		return nil, false, apperr.Validation("subject is required")
	}

	existing, err := s.FindByAuth0SubAndAppID(ctx, profile.Sub, appID)
	switch {
	case err == nil:
		return s.refresh(ctx, existing, profile)
	case !errors.Is(err, ErrAccountNotFound):
		return nil, false, err
	}

	account = profile.newAccount(appID)
	if err := s.CreateAccount(ctx, account); err != nil {
		if !errors.Is(err, ErrAccountExists) {
			return nil, false, err
		}
		existing, err = s.FindByAuth0SubAndAppID(ctx, profile.Sub, appID)
		if err != nil {
			return nil, false, fmt.Errorf("re-read account after conflict: %w", err)
		}
		return s.refresh(ctx, existing, profile)
	}
	return account, true, nil
}

func (s *AccountService) refresh(ctx context.Context, existing *models.Account, profile AccountProfile) (*models.Account, bool, error) {
	profile.mergeInto(existing)
	if err := s.UpdateAccount(ctx, existing); err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// UnbindDeviceAndDeleteAccount removes the device links of the subject's
// account in appID and then the account itself, in one transaction. A missing
// account, device or link is reported in the result, not as an error.
func (s *AccountService) UnbindDeviceAndDeleteAccount(ctx context.Context, auth0Sub string, appID uint, deviceNumber string) (*UnbindResult, error) {
	result := &UnbindResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account models.Account
		if err := tx.Where("auth0_sub = ? AND app_id = ?", auth0Sub, appID).First(&account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.Reason = ErrAccountNotFound.Error()
				return nil
			}
			return err
		}

		var device models.Device
		if err := tx.Where("device_number = ?", deviceNumber).First(&device).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.Reason = ErrDeviceNotFound.Error()
				return nil
			}
			return err
		}

		var links int64
		if err := tx.Model(&models.DeviceAccount{}).
			Where("account_id = ? AND device_id = ?", account.ID, device.ID).
			Count(&links).Error; err != nil {
			return err
		}
		if links == 0 {
			result.Reason = ErrNoRelation.Error()
			return nil
		}

		deleted, err := deleteAccountTx(tx, account.ID)
		if err != nil {
			return err
		}
		result.DeviceLinksDeleted = deleted.DeviceLinksDeleted
		result.AccountsDeleted = deleted.AccountsDeleted
		result.Success = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unbind device %q from %s: %w", deviceNumber, auth0Sub, err)
	}
	return result, nil
}

// DeleteAccount removes the account and all of its device links atomically.
func (s *AccountService) DeleteAccount(ctx context.Context, id uint) (*UnbindResult, error) {
	var result *UnbindResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deleted, err := deleteAccountTx(tx, id)
		if err != nil {
			return err
		}
		if deleted.AccountsDeleted == 0 {
			return ErrAccountNotFound
		}
		result = deleted
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("delete account %d: %w", id, err)
	}
	return result, nil
}

func deleteAccountTx(tx *gorm.DB, accountID uint) (*UnbindResult, error) {
	links := tx.Where("account_id = ?", accountID).Delete(&models.DeviceAccount{})
	if links.Error != nil {
		return nil, links.Error
	}
	accounts := tx.Where("id = ?", accountID).Delete(&models.Account{})
	if accounts.Error != nil {
		return nil, accounts.Error
	}
	return &UnbindResult{
		Success:            accounts.RowsAffected > 0,
		DeviceLinksDeleted: links.RowsAffected,
		AccountsDeleted:    accounts.RowsAffected,
	}, nil
}

func (p AccountProfile) newAccount(appID uint) *models.Account {
	account := &models.Account{
		Auth0Sub:  p.Sub,
		AppID:     appID,
		Name:      optional(p.Name),
		Nickname:  optional(p.Nickname),
		Email:     optional(p.Email),
		Picture:   optional(p.Picture),
		LoginType: p.LoginType,
	}
	if account.LoginType == 0 {
		account.LoginType = models.LoginTypeApple
	}
	if p.EmailVerified != nil {
		account.EmailVerified = *p.EmailVerified
	}
	return account
}

// mergeInto copies supplied fields onto a, leaving the rest untouched.
func (p AccountProfile) mergeInto(a *models.Account) {
	if p.Name != "" {
		a.Name = optional(p.Name)
	}
	if p.Nickname != "" {
		a.Nickname = optional(p.Nickname)
	}
	if p.Email != "" {
		a.Email = optional(p.Email)
	}
	if p.Picture != "" {
		a.Picture = optional(p.Picture)
	}
	if p.EmailVerified != nil {
		a.EmailVerified = *p.EmailVerified
	}
	if p.LoginType != 0 {
		a.LoginType = p.LoginType
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
