package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/jumo/backend/internal/domain"
)

// NutrientRepository loads the canonical nutrient catalog.
type NutrientRepository struct {
	db *gorm.DB
}

// NewNutrientRepository creates a nutrient repository.
func NewNutrientRepository(db *gorm.DB) *NutrientRepository {
	return &NutrientRepository{db: db}
}

// ListNutrients returns the full catalog in id order. Called once at
// startup; the result is shared read-only afterwards.
func (r *NutrientRepository) ListNutrients(ctx context.Context) (domain.Catalog, error) {
	var rows []nutrientRow
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list nutrients: %w", err)
	}

	catalog := make(domain.Catalog, 0, len(rows))
	for _, row := range rows {
		catalog = append(catalog, row.toDomain())
	}
	return catalog, nil
}
