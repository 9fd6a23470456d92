package openfoodfacts

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumo/backend/internal/domain"
)

const baseURL = "https://world.openfoodfacts.org"

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client := NewClient(baseURL, "jumo-test/1.0", zerolog.Nop())
	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func TestFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("parses a found product into a provider payload", func(t *testing.T) {
		client := newTestClient(t)
		httpmock.RegisterResponder(http.MethodGet, baseURL+"/api/v3/product/4001234",
			httpmock.NewStringResponder(http.StatusOK, `{
				"status": "success",
				"product": {
					"product_name": "Dark Chocolate",
					"generic_name": "Chocolate bar",
					"image_url": "https://images.openfoodfacts.org/choc.jpg",
					"serving_quantity": "25",
					"serving_quantity_unit": "g",
					"nutriments": {
						"energy-kcal_value": 540,
						"energy-kcal_unit": "kcal",
						"sodium_value": 0.02,
						"sodium_unit": "g"
					}
				}
			}`))

		result, err := client.Fetch(ctx, "4001234")
		require.NoError(t, err)
		require.True(t, result.Found)

		payload := result.Payload
		assert.Equal(t, "Dark Chocolate", payload.Name)
		assert.Equal(t, "Chocolate bar", payload.Description)
		assert.Equal(t, 25.0, payload.ServingSize)
		assert.Equal(t, "g", payload.ServingSizeUnit)
		assert.Equal(t, 540.0, payload.Nutriments["energy-kcal_value"])
		assert.Equal(t, "url", payload.Image.Type)
		assert.NotEmpty(t, payload.Raw)
	})

	t.Run("defaults serving size to the 100g basis", func(t *testing.T) {
		client := newTestClient(t)
		httpmock.RegisterResponder(http.MethodGet, baseURL+"/api/v3/product/555",
			httpmock.NewStringResponder(http.StatusOK, `{
				"status": "success",
				"product": {"product_name": "Mystery Snack", "nutriments": {}}
			}`))

		result, err := client.Fetch(ctx, "555")
		require.NoError(t, err)
		require.True(t, result.Found)
		assert.Equal(t, 100.0, result.Payload.ServingSize)
		assert.Equal(t, "g", result.Payload.ServingSizeUnit)
	})

	t.Run("404 is a not-found answer, not an error", func(t *testing.T) {
		client := newTestClient(t)
		httpmock.RegisterResponder(http.MethodGet, baseURL+"/api/v3/product/000",
			httpmock.NewStringResponder(http.StatusNotFound, `{"status":"failure"}`))

		result, err := client.Fetch(ctx, "000")
		require.NoError(t, err)
		assert.False(t, result.Found)
		assert.Equal(t, 1, httpmock.GetTotalCallCount(), "not-found must not be retried")
	})

	t.Run("failure status with 200 is a not-found answer", func(t *testing.T) {
		client := newTestClient(t)
		httpmock.RegisterResponder(http.MethodGet, baseURL+"/api/v3/product/001",
			httpmock.NewStringResponder(http.StatusOK, `{"status":"failure"}`))

		result, err := client.Fetch(ctx, "001")
		require.NoError(t, err)
		assert.False(t, result.Found)
	})

	t.Run("server errors are retried then surfaced as transport errors", func(t *testing.T) {
		client := newTestClient(t)
		httpmock.RegisterResponder(http.MethodGet, baseURL+"/api/v3/product/4001234",
			httpmock.NewStringResponder(http.StatusBadGateway, "bad gateway"))

		_, err := client.Fetch(ctx, "4001234")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrProviderTransport)
		assert.Equal(t, 3, httpmock.GetTotalCallCount())
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes a result page and caches it", func(t *testing.T) {
		client := newTestClient(t)
		httpmock.RegisterResponder(http.MethodGet, baseURL+"/cgi/search.pl",
			httpmock.NewStringResponder(http.StatusOK, `{
				"count": 1,
				"page": 1,
				"page_size": 10,
				"products": [{"product_name": "Oat Milk", "code": "737628"}]
			}`))

		first, err := client.Search(ctx, "oat milk", 1, 10)
		require.NoError(t, err)
		require.Len(t, first.Products, 1)
		assert.Equal(t, "Oat Milk", first.Products[0]["product_name"])

		second, err := client.Search(ctx, "oat milk", 1, 10)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, httpmock.GetTotalCallCount(), "second search must be served from cache")
	})

	t.Run("server error surfaces as transport error", func(t *testing.T) {
		client := newTestClient(t)
		httpmock.RegisterResponder(http.MethodGet, baseURL+"/cgi/search.pl",
			httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

		_, err := client.Search(ctx, "oat milk", 1, 10)
		assert.ErrorIs(t, err, domain.ErrProviderTransport)
	})
}
