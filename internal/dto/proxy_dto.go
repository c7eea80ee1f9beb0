package dto

// CommonProxyRequest is the body of POST /api/proxy/common.
type CommonProxyRequest struct {
	Method    string         `json:"method" validate:"required,oneof=get post GET POST"`
	URL       string         `json:"url" validate:"required"`
	ProxyData map[string]any `json:"proxyData"`
}
