package aivision

import (
	"context"

	"github.com/jumo/backend/internal/domain"
)

// Adapter is the resolver-side face of the AI provider. Estimations are
// one-shot: there is no photo to re-run for a stored provider id, so a
// keyed fetch always answers not-found and forced refreshes of AI foods
// surface as a tagged failure instead of silently stale data. New AI
// provider foods are only created through the photo estimation flow.
type Adapter struct{}

// NewAdapter creates the AI vision resolver adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Fetch reports not-found for every key.
func (a *Adapter) Fetch(ctx context.Context, providerID string) (domain.FetchResult, error) {
	return domain.FetchResult{Found: false}, nil
}
