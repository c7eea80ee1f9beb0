package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAuth0(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			http.Error(w, `{"error":"invalid_token"}`, http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"sub":            "auth0|123",
			"name":           "Ada Lovelace",
			"nickname":       "ada",
			"email":          "ada@example.com",
			"email_verified": true,
			"picture":        "https://cdn.example/ada.png",
		})
	})
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "good-code" || r.PostForm.Get("client_id") != "client" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"good-token","id_token":"id.jwt.sig","token_type":"Bearer","expires_in":3600}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAuth0UserInfo(t *testing.T) {
	srv := fakeAuth0(t)
	host := strings.TrimPrefix(srv.URL, "http://")
	client := NewAuth0Client(testConfig(), WithScheme("http"))

	info, err := client.UserInfo(context.Background(), host, "good-token")
	require.NoError(t, err)
	assert.Equal(t, "auth0|123", info.Sub)
	assert.Equal(t, "Ada Lovelace", info.Name)
	assert.Equal(t, "ada", info.Nickname)
	assert.Equal(t, "ada@example.com", info.Email)
	assert.True(t, info.EmailVerified)
	assert.Equal(t, "https://cdn.example/ada.png", info.Picture)
	assert.Equal(t, "auth0|123", info.Claims["sub"])

	_, err = client.UserInfo(context.Background(), host, "bad-token")
	assert.Error(t, err)

	_, err = client.UserInfo(context.Background(), "", "good-token")
	assert.ErrorIs(t, err, ErrAuth0NotConfigured)
}

func TestAuth0CodeFlow(t *testing.T) {
	srv := fakeAuth0(t)
	cfg := testConfig()
	cfg.Auth0Domain = srv.URL
	cfg.Auth0ClientID = "client"
	cfg.Auth0ClientSecret = "secret"
	cfg.Auth0RedirectURI = "http://localhost:3000/api/auth/callback"
	client := NewAuth0Client(cfg)

	raw, err := client.AuthCodeURL("state-1")
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/authorize", u.Path)
	assert.Equal(t, "state-1", u.Query().Get("state"))
	assert.Equal(t, "openid profile email", u.Query().Get("scope"))
	assert.Equal(t, "code", u.Query().Get("response_type"))

	token, err := client.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "good-token", token.AccessToken)
	assert.Equal(t, "id.jwt.sig", IDToken(token))

	_, err = client.Exchange(context.Background(), "bad-code")
	assert.Error(t, err)
}

func TestAuth0CodeFlowRequiresConfig(t *testing.T) {
	_, err := NewAuth0Client(testConfig()).AuthCodeURL("s")
	assert.ErrorIs(t, err, ErrAuth0NotConfigured)
}
