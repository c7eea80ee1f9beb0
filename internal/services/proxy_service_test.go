package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRegistry points PicchatBox at srv and keeps an unreachable default.
func testRegistry(srvURL string) *tenant.Registry {
	r := tenant.NewRegistry("AlgeniusNext")
	r.Register(&tenant.Upstream{
		AppName: "AlgeniusNext",
		Dev:     tenant.Endpoints{BaseURL: "http://127.0.0.1:1", FindSubscribeURL: "http://127.0.0.1:1/find", LogoffURL: "http://127.0.0.1:1/delete"},
	})
	r.Register(&tenant.Upstream{
		AppName: "PicchatBox",
		Dev: tenant.Endpoints{
			BaseURL:          srvURL,
			FindSubscribeURL: srvURL + "/system/image/subscribe/find",
			LogoffURL:        srvURL + "/system/image/subscribe/delete",
		},
		Prod: tenant.Endpoints{BaseURL: "https://prod.invalid"},
	})
	return r
}

func newProxyService(srvURL string, timeout time.Duration) *ProxyService {
	cfg := testConfig()
	cfg.UpstreamTimeout = timeout
	return NewProxyService(cfg, testRegistry(srvURL), nil)
}

func TestFindSubscribeForwardsHeadersAndRemaps(t *testing.T) {
	var got http.Header
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":200,"msg":"ok","data":{"vip":true}}`))
	}))
	defer srv.Close()

	svc := newProxyService(srv.URL, time.Second)
	reply, err := svc.FindSubscribe(context.Background(), "PicchatBox", ProxyHeaders{
		DeviceNumber: "dev-001", PhoneModel: "iPhone15", Version: "1.2.3",
	})
	require.NoError(t, err)

	assert.Equal(t, "/system/image/subscribe/find", path)
	assert.Equal(t, "dev-001", got.Get("deviceNumber"))
	assert.Equal(t, "iPhone15", got.Get("phoneModel"))
	assert.Equal(t, "1.2.3", got.Get("version"))

	assert.Equal(t, http.StatusOK, reply.Status)
	assert.Equal(t, 200, reply.Body.Code)
	assert.Equal(t, "ok", reply.Body.Message)
	assert.JSONEq(t, `{"vip":true}`, string(reply.Body.Data.(json.RawMessage)))
}

func TestFindSubscribeRelaysUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ios", r.Header.Get("phoneModel"))
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"forbidden"}`))
	}))
	defer srv.Close()

	reply, err := newProxyService(srv.URL, time.Second).FindSubscribe(context.Background(), "PicchatBox", ProxyHeaders{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, reply.Status)
	assert.Equal(t, http.StatusForbidden, reply.Body.Code)
	assert.Equal(t, "forbidden", reply.Body.Message)
	assert.JSONEq(t, `{"message":"forbidden"}`, string(reply.Body.Data.(json.RawMessage)))
}

func TestCommonGetUsesQueryString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "Bearer upstream", r.Header.Get("Auth"))
		w.Write([]byte(`{"code":0,"data":[1,2]}`))
	}))
	defer srv.Close()

	reply, err := newProxyService(srv.URL, time.Second).Common(context.Background(), "PicchatBox",
		&dto.CommonProxyRequest{Method: "get", URL: "/api/orders", ProxyData: map[string]any{"page": 2}},
		ProxyHeaders{DeviceNumber: "dev-001", Auth: "Bearer upstream"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, reply.Body.Code, "code 0 falls back to status")
	assert.Equal(t, "done", reply.Body.Message)
	assert.JSONEq(t, `[1,2]`, string(reply.Body.Data.(json.RawMessage)))
}

func TestCommonPostSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"x"}`, string(body))
		assert.Empty(t, r.Header.Get("Auth"))
		w.Write([]byte(`{"code":201,"message":"created"}`))
	}))
	defer srv.Close()

	reply, err := newProxyService(srv.URL, time.Second).Common(context.Background(), "PicchatBox",
		&dto.CommonProxyRequest{Method: "POST", URL: "items", ProxyData: map[string]any{"name": "x"}},
		ProxyHeaders{DeviceNumber: "dev-001"})
	require.NoError(t, err)
	assert.Equal(t, 201, reply.Body.Code)
	assert.Equal(t, "created", reply.Body.Message)
}

func TestCommonValidation(t *testing.T) {
	svc := newProxyService("http://127.0.0.1:1", time.Second)
	ctx := context.Background()

	tests := []struct {
		name string
		body dto.CommonProxyRequest
		h    ProxyHeaders
	}{
		{"missing device", dto.CommonProxyRequest{Method: "get", URL: "/x"}, ProxyHeaders{}},
		{"absolute url", dto.CommonProxyRequest{Method: "get", URL: "http://evil.example/x"}, ProxyHeaders{DeviceNumber: "d"}},
		{"scheme relative url", dto.CommonProxyRequest{Method: "get", URL: "//evil.example/x"}, ProxyHeaders{DeviceNumber: "d"}},
		{"bad method", dto.CommonProxyRequest{Method: "delete", URL: "/x"}, ProxyHeaders{DeviceNumber: "d"}},
		{"empty url", dto.CommonProxyRequest{Method: "get", URL: " "}, ProxyHeaders{DeviceNumber: "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Common(ctx, "PicchatBox", &tt.body, tt.h)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation), "got %v", err)
		})
	}
}

func TestUnknownAppUsesDefaultUpstream(t *testing.T) {
	_, err := newProxyService("http://127.0.0.1:1", time.Second).FindSubscribe(context.Background(), "Nope", ProxyHeaders{})
	require.Error(t, err, "default upstream is unreachable")
}

func TestLogoffTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
		w.Write([]byte(`{"code":200}`))
	}))
	defer srv.Close()

	_, err := newProxyService(srv.URL, 50*time.Millisecond).Logoff(context.Background(), "PicchatBox", ProxyHeaders{})
	assert.ErrorIs(t, err, ErrUpstreamTimeout)
}

func TestReshape(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    int
		message string
		data    string
	}{
		{"full envelope", 200, `{"code":200,"msg":"ok","data":{"a":1}}`, 200, "ok", `{"a":1}`},
		{"message alias", 200, `{"code":401,"message":"expired"}`, 401, "expired", `{"code":401,"message":"expired"}`},
		{"empty msg falls through", 200, `{"msg":"","message":"m"}`, 200, "m", `{"msg":"","message":"m"}`},
		{"null data uses body", 500, `{"data":null}`, 500, "done", `{"data":null}`},
		{"string code", 200, `{"code":"403"}`, 403, "done", `{"code":"403"}`},
		{"array body", 200, `[1]`, 200, "done", `[1]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Reshape(tt.status, []byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.code, out.Code)
			assert.Equal(t, tt.message, out.Message)
			assert.JSONEq(t, tt.data, string(out.Data.(json.RawMessage)))
		})
	}

	_, err := Reshape(200, []byte("<html>"))
	assert.ErrorIs(t, err, ErrUpstreamBadResponse)
}
