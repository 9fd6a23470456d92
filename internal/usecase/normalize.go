package usecase

import (
	"encoding/json"

	"github.com/jumo/backend/internal/domain"
)

// NormalizeNutrients builds the full canonical nutrient list for one
// provider payload: exactly one entry per catalog definition, amounts
// converted into the definition's canonical unit. Nutrients the provider
// has no mapping or value for are recorded explicitly with amount zero
// and a nil provider field, never omitted.
func NormalizeNutrients(provider domain.Provider, catalog domain.Catalog, fields map[string]any) []domain.NutrientAmount {
	nutrients := make([]domain.NutrientAmount, 0, len(catalog))

	for _, def := range catalog {
		amount := 0.0
		var providerNutrientID *string

		if mapping, ok := NutrientMapping(provider, def.ID); ok {
			if value, ok := numericField(fields, mapping.ValueField); ok {
				amount = value
				if unit, ok := fields[mapping.UnitField].(string); ok {
					amount = Convert(amount, unit, def.Unit)
				}
			}
			field := mapping.ValueField
			providerNutrientID = &field
		}

		nutrients = append(nutrients, domain.NutrientAmount{
			NutrientID:         def.ID,
			ProviderNutrientID: providerNutrientID,
			Unit:               def.Unit,
			Amount:             amount,
		})
	}

	return nutrients
}

// numericField reads a numeric value from a decoded JSON field map.
func numericField(fields map[string]any, key string) (float64, bool) {
	switch v := fields[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
