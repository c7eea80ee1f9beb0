package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

type LoginUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// VerifyRequest is the body of POST /api/auth/verify. Device metadata
// travels in headers and is filled in by the handler.
type VerifyRequest struct {
	AccessToken string      `json:"access_token" validate:"required"`
	LoginType   OptionalInt `json:"loginType"`
	AppID       OptionalInt `json:"appId"`
	AppIDAlias  OptionalInt `json:"app_id"`

	DeviceNumber string `json:"-"`
	PhoneModel   string `json:"-"`
	CountryCode  string `json:"-"`
	Version      string `json:"-"`
}

// ResolvedAppID returns appId, falling back to app_id.
func (r *VerifyRequest) ResolvedAppID() OptionalInt {
	if r.AppID.Set {
		return r.AppID
	}
	return r.AppIDAlias
}

type VerifyResponse struct {
	Token   string          `json:"token"`
	User    VerifyUser      `json:"user"`
	Account AccountResponse `json:"account"`
}

type VerifyUser struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// AccountResponse is the sanitized account: nullable fields render as ""
// and timestamps carry the configured response offset.
type AccountResponse struct {
	ID            uint   `json:"id"`
	Auth0Sub      string `json:"auth0_sub"`
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Nickname      string `json:"nickname"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Picture       string `json:"picture"`
	AppID         uint   `json:"app_id"`
	LoginType     int    `json:"login_type"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type CallbackResponse struct {
	AccessToken string         `json:"access_token"`
	IDToken     string         `json:"id_token,omitempty"`
	User        map[string]any `json:"user"`
}

type PrincipalResponse struct {
	ID                uint   `json:"id"`
	Role              string `json:"role"`
	Email             string `json:"email"`
	IsExternalUser    bool   `json:"isExternalUser"`
	ExternalSubjectID string `json:"externalSubjectId"`
	DeviceNumber      string `json:"deviceNumber"`
	AppID             uint   `json:"appId"`
}

// OptionalInt accepts a JSON number or a numeric string. Invalid is set when
// a value was present but could not be read as an integer.
type OptionalInt struct {
	Set     bool
	Invalid bool
	Value   int64
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = OptionalInt{}
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*o = OptionalInt{Set: true, Invalid: true}
			return nil
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*o = OptionalInt{}
			return nil
		}
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		*o = OptionalInt{Set: true, Invalid: true}
		return nil
	}
	*o = OptionalInt{Set: true, Value: n}
	return nil
}

func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Invalid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(o.Value, 10)), nil
}

type HealthResponse struct {
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp"`
	DB           string `json:"db"`
	Applications int64  `json:"applications"`
	Upstreams    int    `json:"upstreams"`
}
