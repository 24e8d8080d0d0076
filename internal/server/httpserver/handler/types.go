package handler

import "github.com/msjade/esriagol/internal/core/domain"

// ErrorResponse is the JSON error envelope for gateway-originated
// failures. Upstream rejection bodies bypass it and pass through
// verbatim.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ServicesResponse lists the aliases visible to the caller.
type ServicesResponse struct {
	Services []string `json:"services"`
}

// IdentifyResponse is the reduced identify result.
type IdentifyResponse struct {
	Count   int              `json:"count"`
	Results []IdentifyResult `json:"results"`
}

// IdentifyResult carries one identified feature's whitelisted
// attributes.
type IdentifyResult struct {
	Attributes map[string]any `json:"attributes"`
}

// RegisterServiceRequest registers or replaces a proxied service.
type RegisterServiceRequest struct {
	Alias            string   `json:"alias"`
	FeatureQueryURL  string   `json:"feature_query_url"`
	VectorTileBase   string   `json:"vector_tile_base,omitempty"`
	AllowedOutFields []string `json:"allowed_out_fields"`
}

// AdminServicesResponse lists all registered services with their
// definitions.
type AdminServicesResponse struct {
	Services map[string]*domain.ServiceDefinition `json:"services"`
}

// CreateClientRequest creates a client key.
type CreateClientRequest struct {
	Name      string            `json:"name"`
	Services  []string          `json:"services,omitempty"`
	WhereLock map[string]string `json:"where_lock,omitempty"`
	Disabled  bool              `json:"disabled,omitempty"`
}

// CreateClientResponse returns the newly minted key. This is the only
// place the full key ever appears in a response.
type CreateClientResponse struct {
	Key       string            `json:"key"`
	Name      string            `json:"name"`
	Services  []string          `json:"services,omitempty"`
	WhereLock map[string]string `json:"where_lock,omitempty"`
}

// ClientSummary is one entry in the admin client listing. The key is
// masked; the full value is returned only at creation.
type ClientSummary struct {
	Key       string            `json:"key"`
	Name      string            `json:"name"`
	Services  []string          `json:"services,omitempty"`
	Disabled  bool              `json:"disabled"`
	WhereLock map[string]string `json:"where_lock,omitempty"`
}

// ClientsResponse lists all registered clients.
type ClientsResponse struct {
	Clients []ClientSummary `json:"clients"`
}

// ClientStatusRequest enables or disables a client key.
type ClientStatusRequest struct {
	Disabled bool `json:"disabled"`
}

// StatusResponse acknowledges a state change.
type StatusResponse struct {
	Status string `json:"status"`
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
