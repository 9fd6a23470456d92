package domain

import "errors"

var (
	// ErrProviderNotFound is returned when the external provider has no
	// item for the requested key (bad barcode, expired product page).
	ErrProviderNotFound = errors.New("provider item not found")

	// ErrProviderTransport is returned on network or provider-side
	// failures while fetching external data.
	ErrProviderTransport = errors.New("provider request failed")

	// ErrProviderFoodMissing is returned by the store when no cached
	// provider food exists for a key or id.
	ErrProviderFoodMissing = errors.New("provider food not found")

	// ErrMealNotFound is returned when a meal does not exist or belongs
	// to another user.
	ErrMealNotFound = errors.New("meal not found")

	// ErrMealItemNotFound is returned when a meal item does not exist or
	// belongs to another user.
	ErrMealItemNotFound = errors.New("meal item not found")

	// ErrInvalidQuantity is returned for non-positive item quantities.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrUnknownProvider is returned when a resolution names a provider
	// with no registered adapter.
	ErrUnknownProvider = errors.New("unknown provider")
)
