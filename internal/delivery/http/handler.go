package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jumo/backend/internal/domain"
	"github.com/jumo/backend/internal/infrastructure/openfoodfacts"
	"github.com/jumo/backend/internal/usecase"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// FoodSearcher is the text-search face of the barcode database client.
type FoodSearcher interface {
	Search(ctx context.Context, query string, page, pageSize int) (*openfoodfacts.SearchResult, error)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	resolver   *usecase.Resolver
	snapshots  *usecase.SnapshotService
	meals      *usecase.MealService
	estimation *usecase.EstimationService
	searcher   FoodSearcher
	assistant  domain.NutritionAssistant
	foods      domain.ProviderFoodRepository
	images     domain.ImageStore
	log        zerolog.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(
	resolver *usecase.Resolver,
	snapshots *usecase.SnapshotService,
	meals *usecase.MealService,
	estimation *usecase.EstimationService,
	searcher FoodSearcher,
	assistant domain.NutritionAssistant,
	foods domain.ProviderFoodRepository,
	images domain.ImageStore,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		resolver:   resolver,
		snapshots:  snapshots,
		meals:      meals,
		estimation: estimation,
		searcher:   searcher,
		assistant:  assistant,
		foods:      foods,
		images:     images,
		log:        log,
	}
}

// HealthCheck returns the health status of the API.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "jumo-backend",
	})
}

// SearchFoods handles branded food text search.
func (h *Handler) SearchFoods(c *gin.Context) {
	search := c.Query("search")
	if search == "" || c.Query("type") != "branded" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": "type=branded and search are required"})
		return
	}

	result, err := h.searcher.Search(c.Request.Context(), search, 1, 10)
	if err != nil {
		h.log.Warn().Err(err).Str("search", search).Msg("food search failed")
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "reason": usecase.ReasonProviderFailure})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// GetFoodByBarcode resolves a barcode into a provider food.
func (h *Handler) GetFoodByBarcode(c *gin.Context) {
	barcode := c.Param("barcode")

	result, err := h.resolver.Resolve(c.Request.Context(), domain.ProviderBarcodeDB, barcode, usecase.ResolveOptions{
		ForceRefresh: c.Query("refresh") == "true",
	})
	if err != nil {
		h.abortInternal(c, err)
		return
	}

	writeResolveResult(c, result)
}

// UploadPhoto runs an AI estimation on an uploaded food photo.
func (h *Handler) UploadPhoto(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": "no file uploaded"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "reason": "file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.abortInternal(c, err)
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		h.abortInternal(c, err)
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	result, err := h.estimation.EstimateFromPhoto(c.Request.Context(), usecase.EstimateInput{
		UserID:      userID(c),
		Image:       image,
		ContentType: contentType,
	})
	if err != nil {
		h.abortInternal(c, err)
		return
	}

	writeResolveResult(c, result)
}

type chatRequest struct {
	Messages []domain.ChatMessage `json:"messages" binding:"required,min=1"`
}

// Chat proxies a nutritionist conversation to the AI assistant.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": err.Error()})
		return
	}

	reply, err := h.assistant.Chat(c.Request.Context(), req.Messages)
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", userID(c)).Msg("assistant chat failed")
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "reason": usecase.ReasonProviderFailure})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    domain.ChatMessage{Role: "assistant", Content: reply},
	})
}

type createMealRequest struct {
	Name       string    `json:"name"`
	Notes      string    `json:"notes"`
	ConsumedAt time.Time `json:"consumedAt"`
}

// CreateMeal creates a new meal.
func (h *Handler) CreateMeal(c *gin.Context) {
	var req createMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": err.Error()})
		return
	}

	meal, err := h.meals.CreateMeal(c.Request.Context(), usecase.CreateMealInput{
		UserID:     userID(c),
		Name:       req.Name,
		Notes:      req.Notes,
		ConsumedAt: req.ConsumedAt,
	})
	if err != nil {
		h.abortInternal(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": meal})
}

// GetMeal returns one meal with items and snapshot totals.
func (h *Handler) GetMeal(c *gin.Context) {
	meal, err := h.meals.GetMeal(c.Request.Context(), userID(c), c.Param("mealId"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      meal,
		"nutrients": usecase.AggregateMeal(meal.Items, usecase.AggregateOptions{}),
	})
}

// ListMeals returns the user's meals in an optional date range.
func (h *Handler) ListMeals(c *gin.Context) {
	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}

	meals, err := h.meals.ListMeals(c.Request.Context(), userID(c), from, to)
	if err != nil {
		h.abortInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": meals})
}

type updateMealRequest struct {
	Name       *string    `json:"name"`
	Notes      *string    `json:"notes"`
	ConsumedAt *time.Time `json:"consumedAt"`
}

// UpdateMeal patches a meal's fields.
func (h *Handler) UpdateMeal(c *gin.Context) {
	var req updateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": err.Error()})
		return
	}

	meal, err := h.meals.UpdateMeal(c.Request.Context(), userID(c), c.Param("mealId"), usecase.UpdateMealInput{
		Name:       req.Name,
		Notes:      req.Notes,
		ConsumedAt: req.ConsumedAt,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": meal})
}

// DeleteMeal soft-deletes a meal.
func (h *Handler) DeleteMeal(c *gin.Context) {
	if err := h.meals.DeleteMeal(c.Request.Context(), userID(c), c.Param("mealId")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type createItemRequest struct {
	ProviderFoodID string  `json:"providerFoodId" binding:"required"`
	Quantity       float64 `json:"quantity" binding:"required,gt=0"`
	Unit           string  `json:"unit" binding:"required"`
}

// CreateMealItem logs a food on a meal, snapshotting its nutrients.
func (h *Handler) CreateMealItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": err.Error()})
		return
	}

	item, err := h.snapshots.CreateItem(c.Request.Context(), usecase.CreateItemInput{
		UserID:         userID(c),
		MealID:         c.Param("mealId"),
		ProviderFoodID: req.ProviderFoodID,
		Quantity:       req.Quantity,
		Unit:           req.Unit,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": item})
}

type updateItemRequest struct {
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Unit     string  `json:"unit"`
}

// UpdateMealItem updates an item's quantity and recomputes its snapshot.
func (h *Handler) UpdateMealItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": err.Error()})
		return
	}

	item, err := h.snapshots.UpdateQuantity(c.Request.Context(), userID(c), c.Param("itemId"), req.Quantity, req.Unit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": item})
}

// DeleteMealItem soft-deletes one item.
func (h *Handler) DeleteMealItem(c *gin.Context) {
	if err := h.meals.DeleteItem(c.Request.Context(), userID(c), c.Param("itemId")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetMealImage returns a presigned URL for a meal item's stored photo.
func (h *Handler) GetMealImage(c *gin.Context) {
	meal, err := h.meals.GetMeal(c.Request.Context(), userID(c), c.Param("mealId"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	for _, item := range meal.Items {
		food, err := h.foods.GetByID(c.Request.Context(), item.ProviderFoodID)
		if err != nil {
			if errors.Is(err, domain.ErrProviderFoodMissing) {
				continue
			}
			h.abortInternal(c, err)
			return
		}
		image := food.FoodData.Image
		switch image.Type {
		case "storage":
			url, err := h.images.PresignGet(c.Request.Context(), image.Path, 15*time.Minute)
			if err != nil {
				h.abortInternal(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"url": url}})
			return
		case "url":
			c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"url": image.URL}})
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"success": false, "reason": "no image for this meal"})
}

// ListDays returns per-day nutrient aggregates in the caller's timezone.
func (h *Handler) ListDays(c *gin.Context) {
	timezone := c.DefaultQuery("tz", "UTC")
	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}

	days, err := h.meals.DaySummaries(c.Request.Context(), userID(c), from, to, timezone)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": days})
}

// dateRange parses optional RFC3339 from/to query params.
func (h *Handler) dateRange(c *gin.Context) (*time.Time, *time.Time, bool) {
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": "invalid from timestamp"})
			return nil, nil, false
		}
		from = &parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": "invalid to timestamp"})
			return nil, nil, false
		}
		to = &parsed
	}
	return from, to, true
}

func writeResolveResult(c *gin.Context, result usecase.ResolveResult) {
	if result.Success {
		c.JSON(http.StatusOK, result)
		return
	}
	status := http.StatusNotFound
	if result.Reason == usecase.ReasonProviderFailure {
		status = http.StatusBadGateway
	}
	c.JSON(status, result)
}

// writeError maps domain errors onto HTTP statuses.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrMealNotFound),
		errors.Is(err, domain.ErrMealItemNotFound),
		errors.Is(err, domain.ErrProviderFoodMissing):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "reason": err.Error()})
	case errors.Is(err, domain.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": err.Error()})
	default:
		h.abortInternal(c, err)
	}
}

func (h *Handler) abortInternal(c *gin.Context, err error) {
	h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "reason": "internal error"})
}
