package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jumo/backend/internal/domain"
)

// MealRepository is the gorm-backed meal store.
type MealRepository struct {
	db *gorm.DB
}

// NewMealRepository creates a meal repository.
func NewMealRepository(db *gorm.DB) *MealRepository {
	return &MealRepository{db: db}
}

// itemPreloads attaches items with their snapshot rows and nutrient
// definitions. Soft-deleted items are excluded unless includeDeleted.
func itemPreloads(db *gorm.DB, includeDeleted bool) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			if includeDeleted {
				return db.Unscoped()
			}
			return db
		}).
		Preload("Items.Nutrients").
		Preload("Items.Nutrients.Nutrient")
}

// Create persists a new meal.
func (r *MealRepository) Create(ctx context.Context, meal *domain.Meal) (*domain.Meal, error) {
	row := mealRow{
		UserID:     meal.UserID,
		Name:       meal.Name,
		Notes:      meal.Notes,
		ConsumedAt: meal.ConsumedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create meal: %w", err)
	}
	created := row.toDomain()
	return &created, nil
}

// GetByID returns one of the user's meals with items preloaded.
func (r *MealRepository) GetByID(ctx context.Context, userID, mealID string) (*domain.Meal, error) {
	var row mealRow
	err := itemPreloads(r.db.WithContext(ctx), false).
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMealNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get meal: %w", err)
	}
	meal := row.toDomain()
	return &meal, nil
}

// List returns the user's meals in the optional consumedAt range,
// ordered by consumedAt ascending, items preloaded.
func (r *MealRepository) List(ctx context.Context, userID string, from, to *time.Time, includeDeleted bool) ([]domain.Meal, error) {
	query := r.db.WithContext(ctx)
	if includeDeleted {
		query = query.Unscoped()
	}
	query = itemPreloads(query, includeDeleted).Where("user_id = ?", userID)
	if from != nil {
		query = query.Where("consumed_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("consumed_at <= ?", *to)
	}

	var rows []mealRow
	if err := query.Order("consumed_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}

	meals := make([]domain.Meal, 0, len(rows))
	for _, row := range rows {
		meals = append(meals, row.toDomain())
	}
	return meals, nil
}

// Update persists the meal's mutable fields.
func (r *MealRepository) Update(ctx context.Context, meal *domain.Meal) (*domain.Meal, error) {
	result := r.db.WithContext(ctx).
		Model(&mealRow{}).
		Where("id = ? AND user_id = ?", meal.ID, meal.UserID).
		Updates(map[string]any{
			"name":        meal.Name,
			"notes":       meal.Notes,
			"consumed_at": meal.ConsumedAt,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("update meal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrMealNotFound
	}
	return r.GetByID(ctx, meal.UserID, meal.ID)
}

// SoftDelete tombstones a meal; the row and its items stay in place for
// audit.
func (r *MealRepository) SoftDelete(ctx context.Context, userID, mealID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", mealID, userID).
		Delete(&mealRow{})
	if result.Error != nil {
		return fmt.Errorf("delete meal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrMealNotFound
	}
	return nil
}
