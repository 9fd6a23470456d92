package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jumo/backend/internal/domain"
)

// MealService handles meal lifecycle and read-side aggregation.
type MealService struct {
	meals domain.MealRepository
	items domain.MealItemRepository
	log   zerolog.Logger
}

// NewMealService creates a meal service.
func NewMealService(meals domain.MealRepository, items domain.MealItemRepository, log zerolog.Logger) *MealService {
	return &MealService{meals: meals, items: items, log: log}
}

// CreateMealInput describes a new meal.
type CreateMealInput struct {
	UserID     string
	Name       string
	Notes      string
	ConsumedAt time.Time
}

// CreateMeal persists a meal. Items are logged separately through the
// snapshot service.
func (s *MealService) CreateMeal(ctx context.Context, input CreateMealInput) (*domain.Meal, error) {
	consumedAt := input.ConsumedAt
	if consumedAt.IsZero() {
		consumedAt = time.Now().UTC()
	}

	return s.meals.Create(ctx, &domain.Meal{
		UserID:     input.UserID,
		Name:       input.Name,
		Notes:      input.Notes,
		ConsumedAt: consumedAt,
	})
}

// GetMeal returns one meal with its items and snapshots preloaded.
func (s *MealService) GetMeal(ctx context.Context, userID, mealID string) (*domain.Meal, error) {
	return s.meals.GetByID(ctx, userID, mealID)
}

// ListMeals returns a user's meals in a date range, newest first per the
// repository's ordering, soft-deleted meals excluded.
func (s *MealService) ListMeals(ctx context.Context, userID string, from, to *time.Time) ([]domain.Meal, error) {
	return s.meals.List(ctx, userID, from, to, false)
}

// UpdateMealInput carries the patchable meal fields. Nil pointers leave
// the current value in place.
type UpdateMealInput struct {
	Name       *string
	Notes      *string
	ConsumedAt *time.Time
}

// UpdateMeal patches name, notes or consumedAt on a meal.
func (s *MealService) UpdateMeal(ctx context.Context, userID, mealID string, input UpdateMealInput) (*domain.Meal, error) {
	meal, err := s.meals.GetByID(ctx, userID, mealID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		meal.Name = *input.Name
	}
	if input.Notes != nil {
		meal.Notes = *input.Notes
	}
	if input.ConsumedAt != nil {
		meal.ConsumedAt = *input.ConsumedAt
	}

	return s.meals.Update(ctx, meal)
}

// DeleteMeal soft-deletes a meal; its rows stay reconstructable for
// audit and are excluded from aggregates by default.
func (s *MealService) DeleteMeal(ctx context.Context, userID, mealID string) error {
	return s.meals.SoftDelete(ctx, userID, mealID)
}

// DeleteItem soft-deletes one meal item.
func (s *MealService) DeleteItem(ctx context.Context, userID, itemID string) error {
	return s.items.SoftDelete(ctx, userID, itemID)
}

// MealTotals returns the nutrient totals of one meal from its persisted
// snapshots.
func (s *MealService) MealTotals(ctx context.Context, userID, mealID string) ([]NutrientTotal, error) {
	meal, err := s.meals.GetByID(ctx, userID, mealID)
	if err != nil {
		return nil, err
	}
	return AggregateMeal(meal.Items, AggregateOptions{}), nil
}

// DaySummaries returns per-day aggregates for a user's meals in a date
// range, bucketed by calendar date in the given IANA timezone.
func (s *MealService) DaySummaries(ctx context.Context, userID string, from, to *time.Time, timezone string) (map[string]DayAggregate, error) {
	meals, err := s.meals.List(ctx, userID, from, to, false)
	if err != nil {
		return nil, err
	}
	return AggregateByDay(meals, timezone, AggregateOptions{})
}
