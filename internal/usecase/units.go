package usecase

// Convert converts an amount between two units of the same physical
// quantity. Supported pairs are identity and g<->mg; any other pair
// returns the amount unchanged rather than failing the whole resolution
// over one unit mismatch.
func Convert(amount float64, from, to string) float64 {
	if from == to {
		return amount
	}

	if from == "g" && to == "mg" {
		return amount * 1000
	}

	if from == "mg" && to == "g" {
		return amount / 1000
	}

	// No conversion available, return original amount.
	return amount
}
