package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jumo/backend/internal/domain"
)

// MealItemRepository is the gorm-backed meal item store.
type MealItemRepository struct {
	db *gorm.DB
}

// NewMealItemRepository creates a meal item repository.
func NewMealItemRepository(db *gorm.DB) *MealItemRepository {
	return &MealItemRepository{db: db}
}

// Create inserts the item and its snapshot rows in one transaction.
func (r *MealItemRepository) Create(ctx context.Context, item *domain.MealItem) (*domain.MealItem, error) {
	row := mealItemRow{
		UserID:         item.UserID,
		MealID:         item.MealID,
		ProviderFoodID: item.ProviderFoodID,
		Quantity:       item.Quantity,
		Unit:           item.Unit,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if len(item.Nutrients) == 0 {
			return nil
		}
		nutrients := make([]mealItemNutrientRow, 0, len(item.Nutrients))
		for _, nutrient := range item.Nutrients {
			nutrients = append(nutrients, mealItemNutrientRow{
				MealItemID: row.ID,
				NutrientID: nutrient.NutrientID,
				Amount:     nutrient.Amount,
			})
		}
		return tx.Create(&nutrients).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create meal item: %w", err)
	}

	return r.GetByID(ctx, item.UserID, row.ID)
}

// GetByID returns one of the user's items with its snapshot preloaded.
func (r *MealItemRepository) GetByID(ctx context.Context, userID, itemID string) (*domain.MealItem, error) {
	var row mealItemRow
	err := r.db.WithContext(ctx).
		Preload("Nutrients").
		Preload("Nutrients.Nutrient").
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMealItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get meal item: %w", err)
	}
	item := row.toDomain()
	return &item, nil
}

// ListByMeal returns a meal's items with snapshots preloaded.
func (r *MealItemRepository) ListByMeal(ctx context.Context, mealID string, includeDeleted bool) ([]domain.MealItem, error) {
	query := r.db.WithContext(ctx)
	if includeDeleted {
		query = query.Unscoped()
	}

	var rows []mealItemRow
	err := query.
		Preload("Nutrients").
		Preload("Nutrients.Nutrient").
		Where("meal_id = ?", mealID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list meal items: %w", err)
	}

	items := make([]domain.MealItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

// ReplaceNutrients swaps the item's full snapshot set and updates
// quantity/unit inside one transaction, so no reader sees the item with
// its snapshot half-written.
func (r *MealItemRepository) ReplaceNutrients(ctx context.Context, itemID string, quantity float64, unit string, nutrients []domain.MealItemNutrient) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meal_item_id = ?", itemID).Delete(&mealItemNutrientRow{}).Error; err != nil {
			return err
		}

		if len(nutrients) > 0 {
			rows := make([]mealItemNutrientRow, 0, len(nutrients))
			for _, nutrient := range nutrients {
				rows = append(rows, mealItemNutrientRow{
					MealItemID: itemID,
					NutrientID: nutrient.NutrientID,
					Amount:     nutrient.Amount,
				})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		result := tx.Model(&mealItemRow{}).
			Where("id = ?", itemID).
			Updates(map[string]any{"quantity": quantity, "unit": unit})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrMealItemNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrMealItemNotFound) {
			return err
		}
		return fmt.Errorf("replace meal item nutrients: %w", err)
	}
	return nil
}

// SoftDelete tombstones one item.
func (r *MealItemRepository) SoftDelete(ctx context.Context, userID, itemID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&mealItemRow{})
	if result.Error != nil {
		return fmt.Errorf("delete meal item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrMealItemNotFound
	}
	return nil
}
