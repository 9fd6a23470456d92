package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jumo/backend/internal/domain"
)

// ComputeSnapshot scales a provider food's per-100 nutrient amounts to
// absolute amounts for the given quantity. No rounding is applied here;
// rounding for display is a presentation concern.
func ComputeSnapshot(food *domain.ProviderFood, quantity float64) []domain.MealItemNutrient {
	multiplier := quantity / 100

	snapshot := make([]domain.MealItemNutrient, 0, len(food.FoodData.Nutrients))
	for _, nutrient := range food.FoodData.Nutrients {
		snapshot = append(snapshot, domain.MealItemNutrient{
			NutrientID: nutrient.NutrientID,
			Amount:     nutrient.Amount * multiplier,
		})
	}
	return snapshot
}

// SnapshotService creates meal items with persisted nutrient snapshots
// and replaces snapshots on explicit quantity updates. A snapshot is
// never recomputed for any other reason: cache refreshes of the source
// provider food must not retroactively change historical meal logs.
type SnapshotService struct {
	foods domain.ProviderFoodRepository
	items domain.MealItemRepository
	log   zerolog.Logger
}

// NewSnapshotService creates a snapshot service.
func NewSnapshotService(foods domain.ProviderFoodRepository, items domain.MealItemRepository, log zerolog.Logger) *SnapshotService {
	return &SnapshotService{foods: foods, items: items, log: log}
}

// CreateItemInput describes a new meal item to log.
type CreateItemInput struct {
	UserID         string
	MealID         string
	ProviderFoodID string
	Quantity       float64
	Unit           string
}

// CreateItem persists a meal item together with its nutrient snapshot,
// scaled from the referenced provider food's current stored data.
func (s *SnapshotService) CreateItem(ctx context.Context, input CreateItemInput) (*domain.MealItem, error) {
	if input.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	food, err := s.foods.GetByID(ctx, input.ProviderFoodID)
	if err != nil {
		return nil, err
	}

	item := &domain.MealItem{
		UserID:         input.UserID,
		MealID:         input.MealID,
		ProviderFoodID: input.ProviderFoodID,
		Quantity:       input.Quantity,
		Unit:           input.Unit,
		Nutrients:      ComputeSnapshot(food, input.Quantity),
	}

	created, err := s.items.Create(ctx, item)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("meal_id", input.MealID).
		Str("item_id", created.ID).
		Float64("quantity", input.Quantity).
		Msg("meal item snapshot created")

	return created, nil
}

// UpdateQuantity recomputes an item's snapshot for a new quantity. The
// snapshot is replaced wholesale inside one transaction, scaled against
// the referenced provider food's current stored data. This is the one
// trigger allowed to pull fresh provider data into an existing item.
func (s *SnapshotService) UpdateQuantity(ctx context.Context, userID, itemID string, quantity float64, unit string) (*domain.MealItem, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	item, err := s.items.GetByID(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	food, err := s.foods.GetByID(ctx, item.ProviderFoodID)
	if err != nil {
		return nil, err
	}

	if unit == "" {
		unit = item.Unit
	}

	snapshot := ComputeSnapshot(food, quantity)
	if err := s.items.ReplaceNutrients(ctx, item.ID, quantity, unit, snapshot); err != nil {
		return nil, err
	}

	return s.items.GetByID(ctx, userID, itemID)
}
