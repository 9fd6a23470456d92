package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/jumo/backend/internal/domain"
)

// Failure reasons surfaced to callers on a tagged failed resolution.
const (
	ReasonNotFound        = "food not found"
	ReasonProviderFailure = "provider unavailable"
)

// ResolverConfig holds injected resolver settings so tests can vary the
// freshness window without process-wide state.
type ResolverConfig struct {
	// TTL is the freshness window for cached provider foods.
	TTL time.Duration
	// FetchTimeout bounds a single external provider fetch.
	FetchTimeout time.Duration
}

// ResolveOptions modifies a single resolution request.
type ResolveOptions struct {
	// ForceRefresh treats any cached row as stale.
	ForceRefresh bool
}

// ResolveResult is the tagged outcome of a resolution. Expected provider
// failures (not found, transport) are reported here, never as errors;
// only persistence failures propagate as errors.
type ResolveResult struct {
	Success bool                 `json:"success"`
	Data    *domain.ProviderFood `json:"data,omitempty"`
	Reason  string               `json:"reason,omitempty"`
}

// Resolver turns a (provider, providerId) key into a canonical,
// unit-normalized provider food: cache check, freshness gate, external
// fetch, normalization, atomic upsert.
type Resolver struct {
	foods        domain.ProviderFoodRepository
	adapters     map[domain.Provider]domain.ProviderAdapter
	catalog      domain.Catalog
	ttl          time.Duration
	fetchTimeout time.Duration
	log          zerolog.Logger
	now          func() time.Time
}

// NewResolver creates a resolver with the given adapters and config.
func NewResolver(
	foods domain.ProviderFoodRepository,
	adapters map[domain.Provider]domain.ProviderAdapter,
	catalog domain.Catalog,
	cfg ResolverConfig,
	log zerolog.Logger,
) *Resolver {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 720 * time.Hour // 30 days
	}
	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout == 0 {
		fetchTimeout = 30 * time.Second
	}

	return &Resolver{
		foods:        foods,
		adapters:     adapters,
		catalog:      catalog,
		ttl:          ttl,
		fetchTimeout: fetchTimeout,
		log:          log,
		now:          time.Now,
	}
}

// Resolve runs one resolution for (provider, providerID). Steps execute
// strictly in sequence; the only blocking calls are the store lookups and
// the bounded external fetch.
func (r *Resolver) Resolve(ctx context.Context, provider domain.Provider, providerID string, opts ResolveOptions) (ResolveResult, error) {
	if !provider.Valid() {
		return ResolveResult{}, domain.ErrUnknownProvider
	}

	cached, err := r.foods.FindByKey(ctx, provider, providerID)
	if err != nil && !errors.Is(err, domain.ErrProviderFoodMissing) {
		return ResolveResult{}, err
	}

	if cached != nil && !opts.ForceRefresh && r.now().Sub(cached.UpdatedAt) < r.ttl {
		return ResolveResult{Success: true, Data: cached}, nil
	}

	adapter, ok := r.adapters[provider]
	if !ok {
		return ResolveResult{}, domain.ErrUnknownProvider
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	result, err := adapter.Fetch(fetchCtx, providerID)
	if err != nil {
		r.log.Warn().
			Err(err).
			Str("provider", string(provider)).
			Str("provider_id", providerID).
			Msg("provider fetch failed")
		if errors.Is(err, domain.ErrProviderNotFound) {
			return ResolveResult{Reason: ReasonNotFound}, nil
		}
		return ResolveResult{Reason: ReasonProviderFailure}, nil
	}
	if !result.Found {
		return ResolveResult{Reason: ReasonNotFound}, nil
	}

	food, err := r.Ingest(ctx, provider, providerID, result.Payload)
	if err != nil {
		return ResolveResult{}, err
	}

	return ResolveResult{Success: true, Data: food}, nil
}

// Ingest normalizes a provider payload and upserts the canonical record.
// It is the shared tail of Resolve and of the photo estimation flow,
// which produces its payload without a keyed fetch.
func (r *Resolver) Ingest(ctx context.Context, provider domain.Provider, providerID string, payload *domain.ProviderPayload) (*domain.ProviderFood, error) {
	foodData := domain.ProviderFoodData{
		Name:            payload.Name,
		Description:     payload.Description,
		Notes:           payload.Notes,
		ServingSize:     payload.ServingSize,
		ServingSizeUnit: payload.ServingSizeUnit,
		Nutrients:       NormalizeNutrients(provider, r.catalog, payload.Nutriments),
		Image:           payload.Image,
	}

	food, err := r.foods.Upsert(ctx, &domain.ProviderFood{
		Provider:   provider,
		ProviderID: providerID,
		RawData:    payload.Raw,
		FoodData:   foodData,
	})
	if err != nil {
		return nil, err
	}

	r.log.Debug().
		Str("provider", string(provider)).
		Str("provider_id", providerID).
		Str("food_id", food.ID).
		Msg("provider food resolved")

	return food, nil
}
