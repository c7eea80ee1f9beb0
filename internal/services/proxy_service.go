package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/config"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/observability"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/tenant"
	"github.com/tidwall/gjson"
)

var (
	ErrUpstreamTimeout     = errors.New("upstream timeout")
	ErrUpstreamBadResponse = errors.New("upstream returned a non-JSON body")
)

const (
	defaultPhoneModel  = "ios"
	defaultMessage     = "done"
	maxUpstreamBody    = 4 << 20
	proxyClientTimeout = 30 * time.Second
)

// ProxyHeaders are the client headers forwarded to tenant upstreams.
type ProxyHeaders struct {
	DeviceNumber string
	PhoneModel   string
	Version      string
	Auth         string
}

// UpstreamReply is an upstream response reshaped into the local envelope.
type UpstreamReply struct {
	Status int
	Body   dto.Response
}

type ProxyService struct {
	registry   *tenant.Registry
	client     *http.Client
	timeout    time.Duration
	production bool
	metrics    *observability.Metrics
}

func NewProxyService(cfg *config.Config, registry *tenant.Registry, metrics *observability.Metrics) *ProxyService {
	return &ProxyService{
		registry:   registry,
		client:     &http.Client{Timeout: proxyClientTimeout},
		timeout:    cfg.UpstreamTimeout,
		production: cfg.IsProduction(),
		metrics:    metrics,
	}
}

// FindSubscribe forwards a subscription lookup for appName.
func (s *ProxyService) FindSubscribe(ctx context.Context, appName string, h ProxyHeaders) (*UpstreamReply, error) {
	ep, ok := s.registry.Endpoints(appName, s.production)
	if !ok || ep.FindSubscribeURL == "" {
		return nil, apperr.Internal("no upstream configured for " + appName)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.FindSubscribeURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build find-subscribe request: %w", err)
	}
	req.Header.Set("deviceNumber", h.DeviceNumber)
	req.Header.Set("phoneModel", orDefault(h.PhoneModel, defaultPhoneModel))
	req.Header.Set("version", h.Version)

	return s.do(req, appName, "find_subscribe")
}

// Common forwards a generic call to path on appName's base URL. GET turns
// proxyData into query parameters, POST sends it as a JSON body.
func (s *ProxyService) Common(ctx context.Context, appName string, body *dto.CommonProxyRequest, h ProxyHeaders) (*UpstreamReply, error) {
	if h.DeviceNumber == "" {
		return nil, apperr.Validation("deviceNumber header is required")
	}
	path := strings.TrimSpace(body.URL)
	if path == "" {
		return nil, apperr.Validation("url is required")
	}
	if strings.Contains(path, "://") || strings.HasPrefix(path, "//") {
		return nil, apperr.Validation("url must be a relative path")
	}
	method := strings.ToUpper(body.Method)
	if method != http.MethodGet && method != http.MethodPost {
		return nil, apperr.Validation("method must be get or post")
	}

	ep, ok := s.registry.Endpoints(appName, s.production)
	if !ok || ep.BaseURL == "" {
		return nil, apperr.Internal("no upstream configured for " + appName)
	}
	target, err := url.Parse(strings.TrimSuffix(ep.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, apperr.Validation("url is invalid", err)
	}

	var reqBody io.Reader
	if method == http.MethodGet && len(body.ProxyData) > 0 {
		q := target.Query()
		for k, v := range body.ProxyData {
			q.Add(k, fmt.Sprint(v))
		}
		target.RawQuery = q.Encode()
	}
	if method == http.MethodPost && body.ProxyData != nil {
		raw, err := json.Marshal(body.ProxyData)
		if err != nil {
			return nil, apperr.Validation("proxyData is not serializable", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("build proxy request: %w", err)
	}
	req.Header.Set("deviceNumber", h.DeviceNumber)
	req.Header.Set("phoneModel", orDefault(h.PhoneModel, defaultPhoneModel))
	req.Header.Set("version", h.Version)
	if h.Auth != "" {
		req.Header.Set("Auth", h.Auth)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return s.do(req, appName, "common")
}

// Logoff calls appName's logoff endpoint with the configured deadline.
// ErrUpstreamTimeout is returned when the deadline elapses.
func (s *ProxyService) Logoff(ctx context.Context, appName string, h ProxyHeaders) (*UpstreamReply, error) {
	ep, ok := s.registry.Endpoints(appName, s.production)
	if !ok || ep.LogoffURL == "" {
		return nil, apperr.Internal("no upstream configured for " + appName)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.LogoffURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build logoff request: %w", err)
	}
	req.Header.Set("phoneModel", orDefault(h.PhoneModel, defaultPhoneModel))
	req.Header.Set("version", h.Version)
	if h.DeviceNumber != "" {
		req.Header.Set("deviceNumber", h.DeviceNumber)
	}

	reply, err := s.do(req, appName, "logoff")
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, ErrUpstreamTimeout
	}
	return reply, err
}

func (s *ProxyService) do(req *http.Request, appName, endpoint string) (*UpstreamReply, error) {
	start := time.Now()
	app := s.registry.Resolve(appName)
	label := appName
	if app != nil {
		label = app.AppName
	}

	resp, err := s.client.Do(req)
	if err != nil {
		outcome := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
		}
		s.metrics.RecordUpstream(label, endpoint, outcome, time.Since(start))
		return nil, fmt.Errorf("%s upstream %s: %w", endpoint, label, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		s.metrics.RecordUpstream(label, endpoint, "error", time.Since(start))
		return nil, fmt.Errorf("read %s upstream body: %w", endpoint, err)
	}
	s.metrics.RecordUpstream(label, endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

	status := resp.StatusCode
	if status < 200 || status >= 600 {
		status = http.StatusInternalServerError
	}
	envelope, err := Reshape(status, raw)
	if err != nil {
		return nil, err
	}
	return &UpstreamReply{Status: status, Body: envelope}, nil
}

// Reshape maps an upstream {code, msg|message, data} body onto the local
// envelope: code falls back to the HTTP status, message to "done", data to the
// whole body.
func Reshape(status int, raw []byte) (dto.Response, error) {
	if !gjson.ValidBytes(raw) {
		return dto.Response{}, ErrUpstreamBadResponse
	}
	doc := gjson.ParseBytes(raw)

	out := dto.Response{Code: status, Message: defaultMessage, Data: json.RawMessage(doc.Raw)}
	if code := doc.Get("code"); truthy(code) && code.Int() != 0 {
		out.Code = int(code.Int())
	}
	if msg := doc.Get("msg"); truthy(msg) {
		out.Message = msg.String()
	} else if msg := doc.Get("message"); truthy(msg) {
		out.Message = msg.String()
	}
	if data := doc.Get("data"); truthy(data) {
		out.Data = json.RawMessage(data.Raw)
	}
	return out, nil
}

func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	default:
		return r.Exists()
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
