package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jumo/backend/internal/domain"
)

// productFields is the canonical field request list for barcode lookups.
const productFields = "product_name,generic_name,nutriments,image_url,serving_quantity,serving_quantity_unit"

const (
	searchCacheTTL     = 15 * time.Minute
	searchCacheCleanup = 30 * time.Minute
)

// Client talks to the OpenFoodFacts API. It implements
// domain.ProviderAdapter for barcode resolution and carries a short-lived
// in-process cache for text searches, which have no persistent cache.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
	searchCache *gocache.Cache
	log         zerolog.Logger
}

// NewClient creates an OpenFoodFacts client.
func NewClient(baseURL, userAgent string, log zerolog.Logger) *Client {
	// OFF asks unauthenticated clients to stay under 100 req/min on
	// product endpoints; 1 req/s with a small burst keeps us well clear.
	limiter := rate.NewLimiter(rate.Limit(1), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     baseURL,
		userAgent:   userAgent,
		rateLimiter: limiter,
		searchCache: gocache.New(searchCacheTTL, searchCacheCleanup),
		log:         log,
	}
}

// productResponse is the v3 product endpoint envelope.
type productResponse struct {
	Status  string         `json:"status"`
	Product map[string]any `json:"product"`
}

// SearchResult is one page of a text search.
type SearchResult struct {
	Count    int              `json:"count"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Products []map[string]any `json:"products"`
}

func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderTransport, err)
	}

	return resp, nil
}

// Fetch looks up one product by barcode. A 404 or failure status is a
// not-found answer, not an error.
func (c *Client) Fetch(ctx context.Context, barcode string) (domain.FetchResult, error) {
	endpoint := fmt.Sprintf("%s/api/v3/product/%s", c.baseURL, url.PathEscape(barcode))
	params := url.Values{}
	params.Set("fields", productFields)
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	// Retry transient failures; not-found answers return immediately.
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return domain.FetchResult{}, fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			c.log.Warn().Err(err).Str("barcode", barcode).Int("attempt", attempt).Msg("openfoodfacts request failed")
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return domain.FetchResult{Found: false}, nil
		}
		if resp.StatusCode != http.StatusOK {
			c.log.Warn().Int("status", resp.StatusCode).Str("barcode", barcode).Int("attempt", attempt).Msg("openfoodfacts error response")
			lastErr = fmt.Errorf("%w: status %d", domain.ErrProviderTransport, resp.StatusCode)
			continue
		}

		var productResp productResponse
		if err := json.Unmarshal(body, &productResp); err != nil {
			return domain.FetchResult{}, fmt.Errorf("%w: decode: %v", domain.ErrProviderTransport, err)
		}

		if productResp.Status != "success" || productResp.Product == nil {
			return domain.FetchResult{Found: false}, nil
		}

		return domain.FetchResult{
			Found:   true,
			Payload: payloadFromProduct(body, productResp.Product),
		}, nil
	}

	return domain.FetchResult{}, lastErr
}

// Search runs a text search against the classic search endpoint, sorted
// by scan popularity. Results are cached in-process for 15 minutes.
func (c *Client) Search(ctx context.Context, query string, page, pageSize int) (*SearchResult, error) {
	if pageSize == 0 {
		pageSize = 10
	}

	cacheKey := fmt.Sprintf("%s|%d|%d", query, page, pageSize)
	if cached, ok := c.searchCache.Get(cacheKey); ok {
		return cached.(*SearchResult), nil
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/cgi/search.pl", c.baseURL)
	params := url.Values{}
	params.Set("search_terms2", query)
	params.Set("search_simple", "1")
	params.Set("action", "process")
	params.Set("json", "1")
	params.Set("sort_by", "unique_scans_n")
	params.Set("page_size", strconv.Itoa(pageSize))
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	resp, err := c.doRequest(ctx, fmt.Sprintf("%s?%s", endpoint, params.Encode()))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrProviderTransport, resp.StatusCode)
	}

	var result SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrProviderTransport, err)
	}

	c.searchCache.Set(cacheKey, &result, gocache.DefaultExpiration)
	return &result, nil
}

// payloadFromProduct reshapes a raw product object into the provider
// payload the normalizer consumes. Nutriment amounts on OFF are per 100g,
// so a missing serving size defaults to the 100g basis.
func payloadFromProduct(raw []byte, product map[string]any) *domain.ProviderPayload {
	name, _ := product["product_name"].(string)
	if name == "" {
		name, _ = product["generic_name"].(string)
	}
	description, _ := product["generic_name"].(string)

	nutriments, _ := product["nutriments"].(map[string]any)
	if nutriments == nil {
		nutriments = map[string]any{}
	}

	servingSize := 100.0
	if quantity, ok := numeric(product["serving_quantity"]); ok && quantity > 0 {
		servingSize = quantity
	}
	servingUnit, _ := product["serving_quantity_unit"].(string)
	if servingUnit == "" {
		servingUnit = "g"
	}

	var image domain.ImageRef
	if imageURL, ok := product["image_url"].(string); ok && imageURL != "" {
		image = domain.ImageRef{Type: "url", URL: imageURL}
	}

	return &domain.ProviderPayload{
		Raw:             json.RawMessage(raw),
		Name:            name,
		Description:     description,
		ServingSize:     servingSize,
		ServingSizeUnit: servingUnit,
		Nutriments:      nutriments,
		Image:           image,
	}
}

// numeric reads an OFF numeric field, which may arrive as a JSON number
// or a numeric string.
func numeric(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case string:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
