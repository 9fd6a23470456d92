package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jumo/backend/internal/domain"
)

// ProviderFoodRepository is the gorm-backed provider food store.
type ProviderFoodRepository struct {
	db *gorm.DB
}

// NewProviderFoodRepository creates a provider food repository.
func NewProviderFoodRepository(db *gorm.DB) *ProviderFoodRepository {
	return &ProviderFoodRepository{db: db}
}

// FindByKey looks up the cached record for (provider, providerId).
func (r *ProviderFoodRepository) FindByKey(ctx context.Context, provider domain.Provider, providerID string) (*domain.ProviderFood, error) {
	var row providerFoodRow
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_id = ?", string(provider), providerID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProviderFoodMissing
	}
	if err != nil {
		return nil, fmt.Errorf("find provider food: %w", err)
	}
	return row.toDomain()
}

// GetByID looks up a record by internal id.
func (r *ProviderFoodRepository) GetByID(ctx context.Context, id string) (*domain.ProviderFood, error) {
	var row providerFoodRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProviderFoodMissing
	}
	if err != nil {
		return nil, fmt.Errorf("get provider food: %w", err)
	}
	return row.toDomain()
}

// Upsert writes the record with a single ON CONFLICT statement keyed on
// (provider, provider_id), so two resolvers racing on the same barcode
// cannot create duplicate rows. On conflict only raw_data, data and
// updated_at are overwritten; id and created_at stay stable.
func (r *ProviderFoodRepository) Upsert(ctx context.Context, food *domain.ProviderFood) (*domain.ProviderFood, error) {
	data, err := json.Marshal(food.FoodData)
	if err != nil {
		return nil, fmt.Errorf("encode provider food data: %w", err)
	}

	row := providerFoodRow{
		Provider:   string(food.Provider),
		ProviderID: food.ProviderID,
		RawData:    []byte(food.RawData),
		Data:       data,
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}, {Name: "provider_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"raw_data", "data", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("upsert provider food: %w", err)
	}

	// Re-read by key: on a conflicting insert the in-memory row carries
	// the losing id, not the persisted one.
	return r.FindByKey(ctx, food.Provider, food.ProviderID)
}
