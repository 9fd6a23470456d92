package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jumo/backend/internal/domain"
)

// defaultCatalog is the canonical nutrient set seeded at provisioning
// time. Amounts everywhere in the system are stored in these units.
var defaultCatalog = domain.Catalog{
	{ID: "energy", Name: "Energy", Unit: "kcal", TranslationKey: "nutrients.energy"},
	{ID: "carbohydrate", Name: "Carbohydrate", Unit: "g", TranslationKey: "nutrients.carbohydrate"},
	{ID: "protein", Name: "Protein", Unit: "g", TranslationKey: "nutrients.protein"},
	{ID: "fat", Name: "Fat", Unit: "g", TranslationKey: "nutrients.fat"},
	{ID: "saturated_fat", Name: "Saturated fat", Unit: "g", TranslationKey: "nutrients.saturated_fat"},
	{ID: "sugar", Name: "Sugar", Unit: "g", TranslationKey: "nutrients.sugar"},
	{ID: "fiber", Name: "Fiber", Unit: "g", TranslationKey: "nutrients.fiber"},
	{ID: "salt", Name: "Salt", Unit: "g", TranslationKey: "nutrients.salt"},
	{ID: "sodium", Name: "Sodium", Unit: "mg", TranslationKey: "nutrients.sodium"},
	{ID: "alcohol", Name: "Alcohol", Unit: "g", TranslationKey: "nutrients.alcohol"},
}

type nutrientRow struct {
	ID             string `gorm:"primaryKey"`
	Name           string `gorm:"not null"`
	Unit           string `gorm:"not null"`
	TranslationKey string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (nutrientRow) TableName() string { return "nutrients" }

func (r nutrientRow) toDomain() domain.NutrientDefinition {
	return domain.NutrientDefinition{
		ID:             r.ID,
		Name:           r.Name,
		Unit:           r.Unit,
		TranslationKey: r.TranslationKey,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type providerFoodRow struct {
	ID         string `gorm:"primaryKey"`
	Provider   string `gorm:"not null;uniqueIndex:idx_provider_foods_key"`
	ProviderID string `gorm:"not null;uniqueIndex:idx_provider_foods_key"`
	RawData    []byte `gorm:"type:jsonb"`
	Data       []byte `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (providerFoodRow) TableName() string { return "provider_foods" }

func (r *providerFoodRow) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (r providerFoodRow) toDomain() (*domain.ProviderFood, error) {
	var foodData domain.ProviderFoodData
	if err := json.Unmarshal(r.Data, &foodData); err != nil {
		return nil, fmt.Errorf("decode provider food %s: %w", r.ID, err)
	}
	return &domain.ProviderFood{
		ID:         r.ID,
		Provider:   domain.Provider(r.Provider),
		ProviderID: r.ProviderID,
		RawData:    json.RawMessage(r.RawData),
		FoodData:   foodData,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}, nil
}

type mealRow struct {
	ID         string         `gorm:"primaryKey"`
	UserID     string         `gorm:"not null;index"`
	Name       string
	Notes      string
	ConsumedAt time.Time      `gorm:"not null;index"`
	Items      []mealItemRow  `gorm:"foreignKey:MealID"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (mealRow) TableName() string { return "meals" }

func (r *mealRow) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (r mealRow) toDomain() domain.Meal {
	meal := domain.Meal{
		ID:         r.ID,
		UserID:     r.UserID,
		Name:       r.Name,
		Notes:      r.Notes,
		ConsumedAt: r.ConsumedAt,
		DeletedAt:  deletedAt(r.DeletedAt),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	for _, item := range r.Items {
		meal.Items = append(meal.Items, item.toDomain())
	}
	return meal
}

type mealItemRow struct {
	ID             string                `gorm:"primaryKey"`
	UserID         string                `gorm:"not null;index"`
	MealID         string                `gorm:"not null;index"`
	ProviderFoodID string                `gorm:"not null"`
	Quantity       float64               `gorm:"not null"`
	Unit           string                `gorm:"not null"`
	Nutrients      []mealItemNutrientRow `gorm:"foreignKey:MealItemID"`
	DeletedAt      gorm.DeletedAt        `gorm:"index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (mealItemRow) TableName() string { return "meal_items" }

func (r *mealItemRow) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (r mealItemRow) toDomain() domain.MealItem {
	item := domain.MealItem{
		ID:             r.ID,
		UserID:         r.UserID,
		MealID:         r.MealID,
		ProviderFoodID: r.ProviderFoodID,
		Quantity:       r.Quantity,
		Unit:           r.Unit,
		DeletedAt:      deletedAt(r.DeletedAt),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	for _, nutrient := range r.Nutrients {
		item.Nutrients = append(item.Nutrients, domain.MealItemNutrient{
			NutrientID: nutrient.NutrientID,
			Nutrient:   nutrient.Nutrient.toDomain(),
			Amount:     nutrient.Amount,
		})
	}
	return item
}

type mealItemNutrientRow struct {
	MealItemID string      `gorm:"primaryKey"`
	NutrientID string      `gorm:"primaryKey"`
	Amount     float64     `gorm:"not null"`
	Nutrient   nutrientRow `gorm:"foreignKey:NutrientID"`
}

func (mealItemNutrientRow) TableName() string { return "meal_items_nutrients" }

func deletedAt(value gorm.DeletedAt) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time
	return &t
}
