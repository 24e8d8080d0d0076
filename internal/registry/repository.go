package registry

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/msjade/esriagol/internal/core/domain"
)

// serviceDocument is the persisted layout of the services registry.
type serviceDocument struct {
	Services map[string]*domain.ServiceDefinition `json:"services"`
}

// clientDocument is the persisted layout of the clients registry.
type clientDocument struct {
	Clients map[string]*domain.ClientRecord `json:"clients"`
}

// ServiceRepository provides typed access to the services registry.
// Writes are serialized internally so concurrent admin mutations cannot
// lose updates in the read-modify-write cycle.
type ServiceRepository struct {
	store DocumentStore
	mu    sync.Mutex // serializes Upsert read-modify-write
}

// NewServiceRepository creates a service repository over the given store.
func NewServiceRepository(store DocumentStore) *ServiceRepository {
	return &ServiceRepository{store: store}
}

func (r *ServiceRepository) load(ctx context.Context) (*serviceDocument, error) {
	raw, err := r.store.Load(ctx)
	if err != nil {
		return nil, domain.ErrServiceMisconfigured.WithDetails("cannot load services registry").WithCause(err)
	}
	var doc serviceDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, domain.ErrServiceMisconfigured.WithDetails("invalid services registry document").WithCause(err)
	}
	if doc.Services == nil {
		doc.Services = make(map[string]*domain.ServiceDefinition)
	}
	return &doc, nil
}

// Get returns the definition registered under alias. Entries that no
// longer satisfy the registration invariants (hand-edited registry
// files reload without going through Upsert) fail as misconfigured
// rather than flowing into request handling.
func (r *ServiceRepository) Get(ctx context.Context, alias string) (*domain.ServiceDefinition, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	def, ok := doc.Services[alias]
	if !ok || def == nil {
		return nil, domain.ErrUnknownService.WithDetails(alias)
	}
	if err := def.Validate(); err != nil {
		return nil, domain.ErrServiceMisconfigured.WithDetails("invalid registry entry for " + alias).WithCause(err)
	}
	return def.Clone(), nil
}

// All returns every registered service keyed by alias.
func (r *ServiceRepository) All(ctx context.Context) (map[string]*domain.ServiceDefinition, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*domain.ServiceDefinition, len(doc.Services))
	for alias, def := range doc.Services {
		if def == nil {
			continue
		}
		out[alias] = def.Clone()
	}
	return out, nil
}

// Aliases returns all registered aliases in sorted order.
func (r *ServiceRepository) Aliases(ctx context.Context) ([]string, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	aliases := make([]string, 0, len(doc.Services))
	for alias := range doc.Services {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases, nil
}

// Upsert validates and registers (or replaces) a service definition,
// then atomically persists the whole registry.
func (r *ServiceRepository) Upsert(ctx context.Context, alias string, def *domain.ServiceDefinition) error {
	if strings.TrimSpace(alias) == "" {
		return domain.ErrInvalidArgument.WithDetails("alias is required")
	}
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load(ctx)
	if err != nil {
		return err
	}
	doc.Services[alias] = def.Clone()
	return r.replace(ctx, doc)
}

func (r *ServiceRepository) replace(ctx context.Context, doc *serviceDocument) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return domain.ErrServiceMisconfigured.WithDetails("cannot encode services registry").WithCause(err)
	}
	if err := r.store.Replace(ctx, raw); err != nil {
		return domain.ErrServiceMisconfigured.WithDetails("cannot persist services registry").WithCause(err)
	}
	return nil
}

// ClientRepository provides typed access to the clients registry.
type ClientRepository struct {
	store DocumentStore
	mu    sync.Mutex // serializes mutation read-modify-write
}

// NewClientRepository creates a client repository over the given store.
func NewClientRepository(store DocumentStore) *ClientRepository {
	return &ClientRepository{store: store}
}

func (r *ClientRepository) load(ctx context.Context) (*clientDocument, error) {
	raw, err := r.store.Load(ctx)
	if err != nil {
		return nil, domain.ErrServiceMisconfigured.WithDetails("cannot load clients registry").WithCause(err)
	}
	var doc clientDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, domain.ErrServiceMisconfigured.WithDetails("invalid clients registry document").WithCause(err)
	}
	if doc.Clients == nil {
		doc.Clients = make(map[string]*domain.ClientRecord)
	}
	return &doc, nil
}

// Get returns the record stored under the given client key.
func (r *ClientRepository) Get(ctx context.Context, key string) (*domain.ClientRecord, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := doc.Clients[key]
	if !ok || rec == nil {
		return nil, domain.ErrUnknownClient
	}
	return rec.Clone(), nil
}

// All returns every client record keyed by client key.
func (r *ClientRepository) All(ctx context.Context) (map[string]*domain.ClientRecord, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*domain.ClientRecord, len(doc.Clients))
	for key, rec := range doc.Clients {
		if rec == nil {
			continue
		}
		out[key] = rec.Clone()
	}
	return out, nil
}

// Create stores a new client record under the given key and atomically
// persists the registry.
func (r *ClientRepository) Create(ctx context.Context, key string, rec *domain.ClientRecord) error {
	if strings.TrimSpace(key) == "" {
		return domain.ErrInvalidArgument.WithDetails("client key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load(ctx)
	if err != nil {
		return err
	}
	doc.Clients[key] = rec.Clone()
	return r.replace(ctx, doc)
}

// SetDisabled flips the disabled flag on an existing client record.
func (r *ClientRepository) SetDisabled(ctx context.Context, key string, disabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load(ctx)
	if err != nil {
		return err
	}
	rec, ok := doc.Clients[key]
	if !ok || rec == nil {
		return domain.ErrUnknownClient
	}
	rec.Disabled = disabled
	return r.replace(ctx, doc)
}

func (r *ClientRepository) replace(ctx context.Context, doc *clientDocument) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return domain.ErrServiceMisconfigured.WithDetails("cannot encode clients registry").WithCause(err)
	}
	if err := r.store.Replace(ctx, raw); err != nil {
		return domain.ErrServiceMisconfigured.WithDetails("cannot persist clients registry").WithCause(err)
	}
	return nil
}
