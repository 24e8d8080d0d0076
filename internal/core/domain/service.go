package domain

import "strings"

// ServiceDefinition describes one upstream service exposed through the
// gateway under a public alias. The alias itself is the registry map key
// and is not repeated inside the persisted record.
type ServiceDefinition struct {
	// FeatureQueryURL is the upstream feature-layer query endpoint.
	// Must end in "/query".
	FeatureQueryURL string `json:"feature_query_url"`

	// VectorTileBase is the base URL of the upstream vector tile server.
	VectorTileBase string `json:"vector_tile_base"`

	// AllowedOutFields is the ordered whitelist of attribute names this
	// alias may expose. Never empty once registered.
	AllowedOutFields []string `json:"allowed_out_fields"`
}

// Validate checks the registration invariants for a service definition.
func (s *ServiceDefinition) Validate() error {
	if strings.TrimSpace(s.FeatureQueryURL) == "" {
		return ErrInvalidArgument.WithDetails("feature_query_url is required")
	}
	if !strings.HasSuffix(strings.TrimRight(s.FeatureQueryURL, "/"), "/query") {
		return ErrInvalidArgument.WithDetails("feature_query_url must end with /query")
	}
	if len(s.AllowedOutFields) == 0 {
		return ErrInvalidArgument.WithDetails("allowed_out_fields cannot be empty")
	}
	for _, f := range s.AllowedOutFields {
		if strings.TrimSpace(f) == "" {
			return ErrInvalidArgument.WithDetails("allowed_out_fields contains an empty field name")
		}
	}
	return nil
}

// Clone returns a deep copy of the service definition.
func (s *ServiceDefinition) Clone() *ServiceDefinition {
	c := *s
	c.AllowedOutFields = append([]string(nil), s.AllowedOutFields...)
	return &c
}
