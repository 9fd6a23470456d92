package domain

import "time"

// NutrientDefinition is one entry in the canonical nutrient catalog.
// The catalog is reference data: it is seeded at provisioning time and
// read-only for the lifetime of the process. Unit is the canonical unit
// every provider amount is converted into before persistence.
type NutrientDefinition struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Unit           string    `json:"unit"`
	TranslationKey string    `json:"translationKey,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Catalog is the full set of nutrient definitions, loaded once at startup.
type Catalog []NutrientDefinition

// ByID returns the definition for the given nutrient id.
func (c Catalog) ByID(id string) (NutrientDefinition, bool) {
	for _, def := range c {
		if def.ID == id {
			return def, true
		}
	}
	return NutrientDefinition{}, false
}

// IDs returns the nutrient ids in catalog order.
func (c Catalog) IDs() []string {
	ids := make([]string, len(c))
	for i, def := range c {
		ids[i] = def.ID
	}
	return ids
}
