package usecase

import "github.com/jumo/backend/internal/domain"

// FieldMapping names the provider fields carrying a nutrient's value and
// unit in the provider's native payload.
type FieldMapping struct {
	ValueField string
	UnitField  string
}

// offNutrientMapping maps canonical nutrient ids to OpenFoodFacts
// nutriment fields.
var offNutrientMapping = map[string]FieldMapping{
	"energy":        {ValueField: "energy-kcal_value", UnitField: "energy-kcal_unit"},
	"carbohydrate":  {ValueField: "carbohydrates_value", UnitField: "carbohydrates_unit"},
	"protein":       {ValueField: "proteins_value", UnitField: "proteins_unit"},
	"fat":           {ValueField: "fat_value", UnitField: "fat_unit"},
	"salt":          {ValueField: "salt_value", UnitField: "salt_unit"},
	"sugar":         {ValueField: "sugars_value", UnitField: "sugars_unit"},
	"fiber":         {ValueField: "fiber_value", UnitField: "fiber_unit"},
	"saturated_fat": {ValueField: "saturated-fat_value", UnitField: "saturated-fat_unit"},
	"sodium":        {ValueField: "sodium_value", UnitField: "sodium_unit"},
	"alcohol":       {ValueField: "alcohol_value", UnitField: "alcohol_unit"},
}

// aiNutrientMapping maps canonical nutrient ids to the fields of the AI
// estimation's nutritionPer100g object.
var aiNutrientMapping = map[string]FieldMapping{
	"energy":        {ValueField: "energy", UnitField: "energyUnit"},
	"carbohydrate":  {ValueField: "carbohydrates", UnitField: "carbohydratesUnit"},
	"protein":       {ValueField: "proteins", UnitField: "proteinsUnit"},
	"fat":           {ValueField: "fats", UnitField: "fatsUnit"},
	"salt":          {ValueField: "salt", UnitField: "saltUnit"},
	"sugar":         {ValueField: "sugar", UnitField: "sugarUnit"},
	"fiber":         {ValueField: "fiber", UnitField: "fiberUnit"},
	"saturated_fat": {ValueField: "saturatedFat", UnitField: "saturatedFatUnit"},
	"sodium":        {ValueField: "sodium", UnitField: "sodiumUnit"},
	"alcohol":       {ValueField: "alcohol", UnitField: "alcoholUnit"},
}

// NutrientMapping returns the provider field mapping for a canonical
// nutrient id. ok is false when the provider has no known field for that
// nutrient; the caller must treat that as amount zero, not an error.
func NutrientMapping(provider domain.Provider, nutrientID string) (FieldMapping, bool) {
	switch provider {
	case domain.ProviderBarcodeDB:
		m, ok := offNutrientMapping[nutrientID]
		return m, ok
	case domain.ProviderAIVision:
		m, ok := aiNutrientMapping[nutrientID]
		return m, ok
	default:
		return FieldMapping{}, false
	}
}
