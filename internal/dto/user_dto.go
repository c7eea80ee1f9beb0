package dto

import (
	"math"
	"time"
)

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DeviceLinkResponse struct {
	ID           uint   `json:"id"`
	DeviceNumber string `json:"device_number"`
	PhoneModel   string `json:"phone_model"`
	CountryCode  string `json:"country_code"`
	Version      string `json:"version"`
	LastLogin    string `json:"last_login"`
	IsActive     bool   `json:"is_active"`
}

type AccountLinkResponse struct {
	ID        uint   `json:"id"`
	Auth0Sub  string `json:"auth0_sub"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AppID     uint   `json:"app_id"`
	LastLogin string `json:"last_login"`
	IsActive  bool   `json:"is_active"`
}

// PageQuery accepts pageNum/pageSize and the page/limit aliases.
type PageQuery struct {
	PageNum  int `query:"pageNum"`
	PageSize int `query:"pageSize"`
	Page     int `query:"page"`
	Limit    int `query:"limit"`
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Normalize resolves aliases and clamps to pageNum >= 1, 1 <= pageSize <= 100.
func (q PageQuery) Normalize() (pageNum, pageSize int) {
	pageNum = q.PageNum
	if pageNum == 0 {
		pageNum = q.Page
	}
	pageSize = q.PageSize
	if pageSize == 0 {
		pageSize = q.Limit
	}

	if pageNum < 1 {
		pageNum = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return pageNum, pageSize
}

type Page[T any] struct {
	List       []T   `json:"list"`
	Total      int64 `json:"total"`
	PageNum    int   `json:"pageNum"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

func NewPage[T any](list []T, total int64, pageNum, pageSize int) Page[T] {
	if list == nil {
		list = []T{}
	}
	return Page[T]{
		List:       list,
		Total:      total,
		PageNum:    pageNum,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}
}

type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
}
