package domain

import (
	"context"
	"encoding/json"
	"time"
)

// ProviderFoodRepository persists canonical provider food records.
type ProviderFoodRepository interface {
	// FindByKey looks up the cached record for (provider, providerId).
	// Returns ErrProviderFoodMissing when none exists.
	FindByKey(ctx context.Context, provider Provider, providerID string) (*ProviderFood, error)

	// GetByID looks up a record by its internal id. Returns
	// ErrProviderFoodMissing when none exists.
	GetByID(ctx context.Context, id string) (*ProviderFood, error)

	// Upsert inserts the record or, if (provider, providerId) already
	// exists, overwrites raw data, food data and updated_at while
	// preserving id and created_at. The write is a single conditional
	// statement so concurrent resolvers racing on the same key cannot
	// produce duplicate rows.
	Upsert(ctx context.Context, food *ProviderFood) (*ProviderFood, error)
}

// MealRepository persists meals. Soft-deleted meals are excluded unless
// includeDeleted is set.
type MealRepository interface {
	Create(ctx context.Context, meal *Meal) (*Meal, error)
	GetByID(ctx context.Context, userID, mealID string) (*Meal, error)
	List(ctx context.Context, userID string, from, to *time.Time, includeDeleted bool) ([]Meal, error)
	Update(ctx context.Context, meal *Meal) (*Meal, error)
	SoftDelete(ctx context.Context, userID, mealID string) error
}

// MealItemRepository persists meal items and their nutrient snapshots.
type MealItemRepository interface {
	// Create inserts the item together with its snapshot rows in one
	// transaction.
	Create(ctx context.Context, item *MealItem) (*MealItem, error)

	GetByID(ctx context.Context, userID, itemID string) (*MealItem, error)
	ListByMeal(ctx context.Context, mealID string, includeDeleted bool) ([]MealItem, error)

	// ReplaceNutrients updates quantity/unit and swaps the full snapshot
	// set in one transaction, so a reader never observes an item with
	// zero nutrient rows mid-update.
	ReplaceNutrients(ctx context.Context, itemID string, quantity float64, unit string, nutrients []MealItemNutrient) error

	SoftDelete(ctx context.Context, userID, itemID string) error
}

// NutrientRepository loads the canonical nutrient catalog.
type NutrientRepository interface {
	ListNutrients(ctx context.Context) (Catalog, error)
}

// ProviderAdapter fetches provider-native data for one key. A not-found
// answer is reported through FetchResult.Found, not an error; errors are
// reserved for transport and provider-side failures.
type ProviderAdapter interface {
	Fetch(ctx context.Context, providerID string) (FetchResult, error)
}

// VisionEstimate is the structured output of one AI photo estimation.
type VisionEstimate struct {
	Success          bool
	Reason           string
	Name             string
	Description      string
	Notes            string
	PortionSize      float64
	PortionSizeUnit  string
	NutritionPer100g map[string]any
	Raw              json.RawMessage
}

// VisionEstimator estimates the nutritional breakdown of a food photo.
type VisionEstimator interface {
	Estimate(ctx context.Context, image []byte, contentType string) (*VisionEstimate, error)
}

// ChatMessage is one turn of a nutritionist chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NutritionAssistant answers nutritionist chat conversations and returns
// the assistant's reply.
type NutritionAssistant interface {
	Chat(ctx context.Context, messages []ChatMessage) (string, error)
}

// ImageStore stores uploaded meal photos and produces short-lived read
// URLs for them.
type ImageStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
