package database

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jumo/backend/internal/domain"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func sampleFood(providerID string, energy float64) *domain.ProviderFood {
	return &domain.ProviderFood{
		Provider:   domain.ProviderBarcodeDB,
		ProviderID: providerID,
		RawData:    json.RawMessage(`{"product":{}}`),
		FoodData: domain.ProviderFoodData{
			Name:            "Oat Bar",
			ServingSize:     100,
			ServingSizeUnit: "g",
			Nutrients: []domain.NutrientAmount{
				{NutrientID: "energy", Unit: "kcal", Amount: energy},
				{NutrientID: "protein", Unit: "g", Amount: 8},
			},
		},
	}
}

func TestMigrateSeedsCatalog(t *testing.T) {
	db := openTestDB(t)

	catalog, err := NewNutrientRepository(db).ListNutrients(context.Background())
	require.NoError(t, err)
	assert.Len(t, catalog, len(defaultCatalog))

	sodium, ok := catalog.ByID("sodium")
	require.True(t, ok)
	assert.Equal(t, "mg", sodium.Unit)

	// Re-running the migration must not duplicate or reset rows.
	require.NoError(t, Migrate(db))
	again, err := NewNutrientRepository(db).ListNutrients(context.Background())
	require.NoError(t, err)
	assert.Len(t, again, len(defaultCatalog))
}

func TestProviderFoodRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key returns sentinel", func(t *testing.T) {
		repo := NewProviderFoodRepository(openTestDB(t))
		_, err := repo.FindByKey(ctx, domain.ProviderBarcodeDB, "nope")
		assert.ErrorIs(t, err, domain.ErrProviderFoodMissing)
	})

	t.Run("upsert inserts then refreshes in place", func(t *testing.T) {
		repo := NewProviderFoodRepository(openTestDB(t))

		first, err := repo.Upsert(ctx, sampleFood("4001234", 200))
		require.NoError(t, err)
		require.NotEmpty(t, first.ID)
		assert.Equal(t, 200.0, first.FoodData.Nutrients[0].Amount)

		time.Sleep(10 * time.Millisecond)

		second, err := repo.Upsert(ctx, sampleFood("4001234", 250))
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID, "id must survive a refresh")
		assert.Equal(t, first.CreatedAt.UTC(), second.CreatedAt.UTC(), "createdAt must survive a refresh")
		assert.True(t, second.UpdatedAt.After(first.UpdatedAt), "updatedAt must advance")
		assert.Equal(t, 250.0, second.FoodData.Nutrients[0].Amount)

		var count int64
		require.NoError(t, repo.db.Model(&providerFoodRow{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("same barcode under different providers stays distinct", func(t *testing.T) {
		repo := NewProviderFoodRepository(openTestDB(t))

		_, err := repo.Upsert(ctx, sampleFood("shared", 100))
		require.NoError(t, err)

		ai := sampleFood("shared", 300)
		ai.Provider = domain.ProviderAIVision
		_, err = repo.Upsert(ctx, ai)
		require.NoError(t, err)

		var count int64
		require.NoError(t, repo.db.Model(&providerFoodRow{}).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})

	t.Run("get by id round-trips the normalized payload", func(t *testing.T) {
		repo := NewProviderFoodRepository(openTestDB(t))

		created, err := repo.Upsert(ctx, sampleFood("4001234", 200))
		require.NoError(t, err)

		loaded, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Oat Bar", loaded.FoodData.Name)
		assert.Len(t, loaded.FoodData.Nutrients, 2)
		assert.JSONEq(t, `{"product":{}}`, string(loaded.RawData))
	})
}

func TestMealRepositories(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*MealRepository, *MealItemRepository, *domain.ProviderFood) {
		db := openTestDB(t)
		foods := NewProviderFoodRepository(db)
		food, err := foods.Upsert(ctx, sampleFood("4001234", 200))
		require.NoError(t, err)
		return NewMealRepository(db), NewMealItemRepository(db), food
	}

	newItem := func(t *testing.T, items *MealItemRepository, mealID, foodID string) *domain.MealItem {
		item, err := items.Create(ctx, &domain.MealItem{
			UserID:         "u1",
			MealID:         mealID,
			ProviderFoodID: foodID,
			Quantity:       150,
			Unit:           "g",
			Nutrients: []domain.MealItemNutrient{
				{NutrientID: "energy", Amount: 300},
				{NutrientID: "protein", Amount: 12},
			},
		})
		require.NoError(t, err)
		return item
	}

	t.Run("meal create and get preload snapshot rows", func(t *testing.T) {
		meals, items, food := setup(t)

		meal, err := meals.Create(ctx, &domain.Meal{UserID: "u1", Name: "Lunch", ConsumedAt: time.Now().UTC()})
		require.NoError(t, err)

		newItem(t, items, meal.ID, food.ID)

		loaded, err := meals.GetByID(ctx, "u1", meal.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Items, 1)
		require.Len(t, loaded.Items[0].Nutrients, 2)
		assert.Equal(t, 300.0, loaded.Items[0].Nutrients[0].Amount)
		assert.Equal(t, "kcal", loaded.Items[0].Nutrients[0].Nutrient.Unit)
	})

	t.Run("meals are scoped to their owner", func(t *testing.T) {
		meals, _, _ := setup(t)

		meal, err := meals.Create(ctx, &domain.Meal{UserID: "u1", ConsumedAt: time.Now().UTC()})
		require.NoError(t, err)

		_, err = meals.GetByID(ctx, "someone-else", meal.ID)
		assert.ErrorIs(t, err, domain.ErrMealNotFound)
	})

	t.Run("list filters by consumedAt range", func(t *testing.T) {
		meals, _, _ := setup(t)

		jan := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
		feb := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)
		_, err := meals.Create(ctx, &domain.Meal{UserID: "u1", Name: "january", ConsumedAt: jan})
		require.NoError(t, err)
		_, err = meals.Create(ctx, &domain.Meal{UserID: "u1", Name: "february", ConsumedAt: feb})
		require.NoError(t, err)

		from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		listed, err := meals.List(ctx, "u1", &from, nil, false)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, "february", listed[0].Name)
	})

	t.Run("soft-deleted meal disappears from default reads but not unscoped", func(t *testing.T) {
		meals, _, _ := setup(t)

		meal, err := meals.Create(ctx, &domain.Meal{UserID: "u1", ConsumedAt: time.Now().UTC()})
		require.NoError(t, err)
		require.NoError(t, meals.SoftDelete(ctx, "u1", meal.ID))

		_, err = meals.GetByID(ctx, "u1", meal.ID)
		assert.ErrorIs(t, err, domain.ErrMealNotFound)

		listed, err := meals.List(ctx, "u1", nil, nil, true)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.NotNil(t, listed[0].DeletedAt)
	})

	t.Run("replace nutrients swaps the snapshot atomically", func(t *testing.T) {
		meals, items, food := setup(t)

		meal, err := meals.Create(ctx, &domain.Meal{UserID: "u1", ConsumedAt: time.Now().UTC()})
		require.NoError(t, err)
		item := newItem(t, items, meal.ID, food.ID)

		err = items.ReplaceNutrients(ctx, item.ID, 50, "g", []domain.MealItemNutrient{
			{NutrientID: "energy", Amount: 100},
			{NutrientID: "protein", Amount: 4},
		})
		require.NoError(t, err)

		updated, err := items.GetByID(ctx, "u1", item.ID)
		require.NoError(t, err)
		assert.Equal(t, 50.0, updated.Quantity)
		require.Len(t, updated.Nutrients, 2)
		assert.Equal(t, 100.0, updated.Nutrients[0].Amount)

		var count int64
		require.NoError(t, items.db.Model(&mealItemNutrientRow{}).Where("meal_item_id = ?", item.ID).Count(&count).Error)
		assert.Equal(t, int64(2), count, "old snapshot rows must be gone")
	})

	t.Run("replace nutrients on unknown item fails without writes", func(t *testing.T) {
		_, items, _ := setup(t)

		err := items.ReplaceNutrients(ctx, "missing", 50, "g", []domain.MealItemNutrient{
			{NutrientID: "energy", Amount: 100},
		})
		assert.ErrorIs(t, err, domain.ErrMealItemNotFound)

		var count int64
		require.NoError(t, items.db.Model(&mealItemNutrientRow{}).Count(&count).Error)
		assert.Equal(t, int64(0), count, "rolled-back transaction must leave no rows")
	})

	t.Run("soft-deleted item is excluded from meal reads", func(t *testing.T) {
		meals, items, food := setup(t)

		meal, err := meals.Create(ctx, &domain.Meal{UserID: "u1", ConsumedAt: time.Now().UTC()})
		require.NoError(t, err)
		item := newItem(t, items, meal.ID, food.ID)

		require.NoError(t, items.SoftDelete(ctx, "u1", item.ID))

		loaded, err := meals.GetByID(ctx, "u1", meal.ID)
		require.NoError(t, err)
		assert.Empty(t, loaded.Items)

		all, err := items.ListByMeal(ctx, meal.ID, true)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}
