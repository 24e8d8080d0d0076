package service

import (
	"context"
	"errors"
	"strings"

	"github.com/msjade/esriagol/internal/core/domain"
)

// ClientRepository defines the registry lookup the access service needs.
type ClientRepository interface {
	// Get retrieves a client record by key. Returns
	// domain.ErrUnknownClient if the key is not registered.
	Get(ctx context.Context, key string) (*domain.ClientRecord, error)
}

// AccessService validates client keys and checks alias permissions.
// It is read-only against the registry.
type AccessService struct {
	clients ClientRepository
}

// NewAccessService creates a new AccessService.
func NewAccessService(clients ClientRepository) *AccessService {
	return &AccessService{clients: clients}
}

// Authorize validates the client key and, when alias is non-empty, checks
// that the key may reach that alias. On success the client record is
// returned for downstream where-lock lookup.
func (s *AccessService) Authorize(ctx context.Context, clientKey, alias string) (*domain.ClientRecord, error) {
	clientKey = strings.TrimSpace(clientKey)
	if clientKey == "" {
		return nil, domain.ErrMissingKey
	}

	rec, err := s.clients.Get(ctx, clientKey)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownClient) {
			return nil, domain.ErrInvalidKey
		}
		return nil, err
	}

	if rec.Disabled {
		return nil, domain.ErrKeyDisabled
	}

	if alias != "" && !rec.Allows(alias) {
		return nil, domain.ErrServiceForbidden.WithDetails(alias)
	}

	return rec, nil
}

// VisibleAliases filters registered aliases down to the set the record
// may reach, preserving the input order.
func VisibleAliases(rec *domain.ClientRecord, registered []string) []string {
	if len(rec.AllowedServices) == 0 {
		return append([]string(nil), registered...)
	}
	visible := make([]string, 0, len(registered))
	for _, alias := range registered {
		if rec.Allows(alias) {
			visible = append(visible, alias)
		}
	}
	return visible
}
