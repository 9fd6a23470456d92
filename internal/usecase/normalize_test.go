package usecase

import (
	"testing"

	"github.com/jumo/backend/internal/domain"
)

// testCatalog is a reduced catalog covering the interesting cases: a
// plain gram nutrient, the kcal energy nutrient, the mg sodium nutrient
// (unit conversion) and one nutrient no provider maps.
func testCatalog() domain.Catalog {
	return domain.Catalog{
		{ID: "energy", Name: "Energy", Unit: "kcal"},
		{ID: "protein", Name: "Protein", Unit: "g"},
		{ID: "sodium", Name: "Sodium", Unit: "mg"},
		{ID: "obscurium", Name: "Obscurium", Unit: "g"},
	}
}

func TestNormalizeNutrients(t *testing.T) {
	catalog := testCatalog()

	t.Run("maps openfoodfacts fields into canonical units", func(t *testing.T) {
		fields := map[string]any{
			"energy-kcal_value": 250.0,
			"energy-kcal_unit":  "kcal",
			"proteins_value":    8.2,
			"proteins_unit":     "g",
			"sodium_value":      0.4, // grams on the label
			"sodium_unit":       "g",
		}

		nutrients := NormalizeNutrients(domain.ProviderBarcodeDB, catalog, fields)

		if len(nutrients) != len(catalog) {
			t.Fatalf("got %d nutrients, want %d", len(nutrients), len(catalog))
		}

		byID := map[string]domain.NutrientAmount{}
		for _, n := range nutrients {
			byID[n.NutrientID] = n
		}

		if byID["energy"].Amount != 250 {
			t.Errorf("energy = %v, want 250", byID["energy"].Amount)
		}
		if byID["protein"].Amount != 8.2 {
			t.Errorf("protein = %v, want 8.2", byID["protein"].Amount)
		}
		// 0.4 g on the label becomes 400 mg canonically.
		if byID["sodium"].Amount != 400 {
			t.Errorf("sodium = %v, want 400", byID["sodium"].Amount)
		}
		if byID["sodium"].Unit != "mg" {
			t.Errorf("sodium unit = %q, want mg", byID["sodium"].Unit)
		}
	})

	t.Run("missing mapping yields explicit zero entry with nil provider id", func(t *testing.T) {
		nutrients := NormalizeNutrients(domain.ProviderBarcodeDB, catalog, map[string]any{})

		var found bool
		for _, n := range nutrients {
			if n.NutrientID == "obscurium" {
				found = true
				if n.Amount != 0 {
					t.Errorf("obscurium amount = %v, want 0", n.Amount)
				}
				if n.ProviderNutrientID != nil {
					t.Errorf("obscurium providerNutrientId = %v, want nil", *n.ProviderNutrientID)
				}
			}
		}
		if !found {
			t.Fatal("unmapped nutrient missing from normalized list, want explicit zero entry")
		}
	})

	t.Run("mapped but absent value defaults to zero and keeps provider field", func(t *testing.T) {
		nutrients := NormalizeNutrients(domain.ProviderAIVision, catalog, map[string]any{})

		for _, n := range nutrients {
			if n.NutrientID != "energy" {
				continue
			}
			if n.Amount != 0 {
				t.Errorf("energy amount = %v, want 0", n.Amount)
			}
			if n.ProviderNutrientID == nil || *n.ProviderNutrientID != "energy" {
				t.Errorf("energy providerNutrientId = %v, want \"energy\"", n.ProviderNutrientID)
			}
		}
	})

	t.Run("ai mapping uses camel-case estimation fields", func(t *testing.T) {
		fields := map[string]any{
			"sodium":     120.0,
			"sodiumUnit": "mg",
			"proteins":   4.0,
		}

		nutrients := NormalizeNutrients(domain.ProviderAIVision, catalog, fields)

		byID := map[string]domain.NutrientAmount{}
		for _, n := range nutrients {
			byID[n.NutrientID] = n
		}

		if byID["sodium"].Amount != 120 {
			t.Errorf("sodium = %v, want 120", byID["sodium"].Amount)
		}
		// Value without a unit field is taken as already canonical.
		if byID["protein"].Amount != 4 {
			t.Errorf("protein = %v, want 4", byID["protein"].Amount)
		}
	})

	t.Run("non-numeric values are ignored", func(t *testing.T) {
		fields := map[string]any{
			"proteins_value": "lots",
			"proteins_unit":  "g",
		}

		nutrients := NormalizeNutrients(domain.ProviderBarcodeDB, catalog, fields)
		for _, n := range nutrients {
			if n.NutrientID == "protein" && n.Amount != 0 {
				t.Errorf("protein = %v, want 0 for non-numeric value", n.Amount)
			}
		}
	})
}

func TestNutrientMapping(t *testing.T) {
	t.Run("unknown provider has no mappings", func(t *testing.T) {
		if _, ok := NutrientMapping(domain.Provider("bogus"), "energy"); ok {
			t.Error("expected no mapping for unknown provider")
		}
	})

	t.Run("every catalog id is mapped identically across providers", func(t *testing.T) {
		// Both tables cover the same canonical ids; a drift here means a
		// nutrient silently zeroes out for one provider only.
		for id := range offNutrientMapping {
			if _, ok := aiNutrientMapping[id]; !ok {
				t.Errorf("nutrient %q mapped for openfoodfacts but not ai_vision", id)
			}
		}
		for id := range aiNutrientMapping {
			if _, ok := offNutrientMapping[id]; !ok {
				t.Errorf("nutrient %q mapped for ai_vision but not openfoodfacts", id)
			}
		}
	})
}
