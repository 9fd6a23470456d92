package domain

import "time"

// MealItemNutrient is one snapshot row on a meal item: the absolute
// amount of a nutrient for the item's quantity, computed once at
// creation (or explicit quantity update) and never recomputed when the
// underlying provider food changes later.
type MealItemNutrient struct {
	NutrientID string             `json:"nutrientId"`
	Nutrient   NutrientDefinition `json:"nutrient"`
	Amount     float64            `json:"amount"`
}

// MealItem is one logged food within a meal, referencing the provider
// food it was resolved from and carrying its own nutrient snapshot.
type MealItem struct {
	ID             string             `json:"id"`
	UserID         string             `json:"userId"`
	MealID         string             `json:"mealId"`
	ProviderFoodID string             `json:"providerFoodId"`
	Quantity       float64            `json:"quantity"`
	Unit           string             `json:"unit"`
	Nutrients      []MealItemNutrient `json:"nutrients"`
	DeletedAt      *time.Time         `json:"deletedAt,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// Meal owns zero or more items. Meals are soft-deleted only, so day
// aggregates stay reconstructable for audit.
type Meal struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Name       string     `json:"name,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	ConsumedAt time.Time  `json:"consumedAt"`
	Items      []MealItem `json:"items"`
	DeletedAt  *time.Time `json:"deletedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}
