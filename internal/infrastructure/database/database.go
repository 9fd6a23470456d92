package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the postgres datastore.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// Migrate creates the schema and seeds the nutrient catalog. The catalog
// is reference data; seeding is idempotent and existing rows are left
// untouched (unit changes require an explicit migration).
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&nutrientRow{},
		&providerFoodRow{},
		&mealRow{},
		&mealItemRow{},
		&mealItemNutrientRow{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	for _, def := range defaultCatalog {
		row := nutrientRow{
			ID:             def.ID,
			Name:           def.Name,
			Unit:           def.Unit,
			TranslationKey: def.TranslationKey,
		}
		if err := db.Where(nutrientRow{ID: def.ID}).FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("seed nutrient %s: %w", def.ID, err)
		}
	}

	return nil
}
