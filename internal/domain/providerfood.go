package domain

import (
	"encoding/json"
	"time"
)

// Provider identifies an external source of food data.
type Provider string

const (
	// ProviderBarcodeDB is the OpenFoodFacts barcode product database.
	ProviderBarcodeDB Provider = "openfoodfacts"
	// ProviderAIVision is the AI photo estimation provider. Estimations
	// are not naturally deduplicable, so each one gets a synthesized
	// provider id at creation time.
	ProviderAIVision Provider = "ai_vision"
)

// Valid reports whether p is a known provider tag.
func (p Provider) Valid() bool {
	switch p {
	case ProviderBarcodeDB, ProviderAIVision:
		return true
	}
	return false
}

// ImageRef points at the image associated with a provider food, either an
// object in our storage bucket or a URL hosted by the provider.
type ImageRef struct {
	Type   string `json:"type,omitempty"` // "storage" or "url"
	Bucket string `json:"bucket,omitempty"`
	Path   string `json:"path,omitempty"`
	URL    string `json:"url,omitempty"`
}

// NutrientAmount is one normalized nutrient entry on a provider food.
// Amount is always expressed in the canonical unit of the nutrient id.
// ProviderNutrientID is the provider's native field name, nil when the
// provider has no mapping for this nutrient (amount is then zero).
type NutrientAmount struct {
	NutrientID         string  `json:"nutrientId"`
	ProviderNutrientID *string `json:"providerNutrientId"`
	Unit               string  `json:"unit"`
	Amount             float64 `json:"amount"`
}

// ProviderFoodData is the normalized payload derived from one provider
// lookup. Nutrients contains exactly one entry per catalog definition;
// amounts are per 100 units of the provider's serving basis.
type ProviderFoodData struct {
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	ServingSize     float64          `json:"servingSize"`
	ServingSizeUnit string           `json:"servingSizeUnit"`
	Nutrients       []NutrientAmount `json:"nutrients"`
	Image           ImageRef         `json:"image"`
}

// ProviderFood is the canonical cached record for one (provider,
// providerId) key. RawData keeps the provider payload verbatim for audit;
// all typed logic operates on FoodData only.
type ProviderFood struct {
	ID         string           `json:"id"`
	Provider   Provider         `json:"provider"`
	ProviderID string           `json:"providerId"`
	RawData    json.RawMessage  `json:"rawData,omitempty"`
	FoodData   ProviderFoodData `json:"foodData"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// ProviderPayload is the provider-native data handed from an adapter to
// the normalizer. Raw is stored verbatim; Nutriments is the field map the
// per-provider nutrient mapping tables are applied to.
type ProviderPayload struct {
	Raw             json.RawMessage
	Name            string
	Description     string
	Notes           string
	ServingSize     float64
	ServingSizeUnit string
	Nutriments      map[string]any
	Image           ImageRef
}

// FetchResult is the outcome of one external provider lookup. Found is
// false when the provider answered but has no item for the key.
type FetchResult struct {
	Found   bool
	Payload *ProviderPayload
}
